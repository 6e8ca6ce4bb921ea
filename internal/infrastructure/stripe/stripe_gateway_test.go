package stripe

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"pagos-service/internal/application/command"
	"pagos-service/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStripe answers a fixed set of API routes and records form posts.
type fakeStripe struct {
	mu     sync.Mutex
	routes map[string]fakeResponse
	forms  map[string]url.Values
	calls  []string
}

type fakeResponse struct {
	status int
	body   string
}

func newFakeStripe(t *testing.T, routes map[string]fakeResponse) (*fakeStripe, *Gateway) {
	t.Helper()
	f := &fakeStripe{routes: routes, forms: map[string]url.Values{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	gw := NewGateway(StripeConfig{SecretKey: "sk_test_123", Currency: "usd", BaseURL: srv.URL, HTTPClient: srv.Client()},
		slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f, gw
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	_ = r.ParseForm()

	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.forms[key] = r.PostForm
	resp, ok := f.routes[key]
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","code":"resource_missing","message":"No such route"}}`)
		return
	}
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func TestEnsureCustomer_ReusesAttachedCustomer(t *testing.T) {
	f, gw := newFakeStripe(t, map[string]fakeResponse{
		"GET /v1/payment_methods/pm_abc": {200, `{"id":"pm_abc","object":"payment_method","customer":"cus_1"}`},
		"GET /v1/customers/cus_1":        {200, `{"id":"cus_1","object":"customer"}`},
	})

	id, err := gw.EnsureCustomer(context.Background(), "u1@example.com", "pm_abc")
	require.NoError(t, err)
	assert.Equal(t, "cus_1", id)
	assert.NotContains(t, f.calls, "POST /v1/customers")
}

func TestEnsureCustomer_CreatesCustomerWithDefaultMethod(t *testing.T) {
	f, gw := newFakeStripe(t, map[string]fakeResponse{
		"GET /v1/payment_methods/pm_abc": {200, `{"id":"pm_abc","object":"payment_method","customer":null}`},
		"POST /v1/customers":             {200, `{"id":"cus_new","object":"customer"}`},
	})

	id, err := gw.EnsureCustomer(context.Background(), "u1@example.com", "pm_abc")
	require.NoError(t, err)
	assert.Equal(t, "cus_new", id)

	form := f.forms["POST /v1/customers"]
	assert.Equal(t, "u1@example.com", form.Get("email"))
	assert.Equal(t, "pm_abc", form.Get("payment_method"))
	assert.Equal(t, "pm_abc", form.Get("invoice_settings[default_payment_method]"))
}

func TestEnsureCustomer_UnknownTokenIsGatewayError(t *testing.T) {
	_, gw := newFakeStripe(t, map[string]fakeResponse{})

	_, err := gw.EnsureCustomer(context.Background(), "u1@example.com", "pm_missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeGateway))
}

func TestFetchPaymentMethod(t *testing.T) {
	_, gw := newFakeStripe(t, map[string]fakeResponse{
		"GET /v1/payment_methods/pm_abc": {200, `{"id":"pm_abc","object":"payment_method","type":"card",` +
			`"card":{"brand":"visa","last4":"4242","exp_month":12,"exp_year":2030}}`},
	})

	card, err := gw.FetchPaymentMethod(context.Background(), "pm_abc")
	require.NoError(t, err)
	assert.Equal(t, "visa", card.Brand)
	assert.Equal(t, "4242", card.Last4)
	assert.Equal(t, 12, card.ExpMonth)
	assert.Equal(t, 2030, card.ExpYear)
}

func TestDetachPaymentMethod(t *testing.T) {
	f, gw := newFakeStripe(t, map[string]fakeResponse{
		"POST /v1/payment_methods/pm_abc/detach": {200, `{"id":"pm_abc","object":"payment_method"}`},
	})

	require.NoError(t, gw.DetachPaymentMethod(context.Background(), "pm_abc"))
	assert.Contains(t, f.calls, "POST /v1/payment_methods/pm_abc/detach")

	err := gw.DetachPaymentMethod(context.Background(), "pm_other")
	assert.True(t, errors.HasCode(err, errors.CodeGateway))
}

func TestChargeOffSession_Succeeded(t *testing.T) {
	f, gw := newFakeStripe(t, map[string]fakeResponse{
		"POST /v1/payment_intents": {200, `{"id":"pi_1","object":"payment_intent","status":"succeeded"}`},
	})

	res, err := gw.ChargeOffSession(context.Background(), 9999, "cus_1", "pm_abc")
	require.NoError(t, err)
	assert.Equal(t, &command.ChargeResult{ID: "pi_1", Status: command.ChargeStatusSucceeded}, res)

	form := f.forms["POST /v1/payment_intents"]
	assert.Equal(t, "9999", form.Get("amount"))
	assert.Equal(t, "usd", form.Get("currency"))
	assert.Equal(t, "cus_1", form.Get("customer"))
	assert.Equal(t, "pm_abc", form.Get("payment_method"))
	assert.Equal(t, "true", form.Get("off_session"))
	assert.Equal(t, "true", form.Get("confirm"))
}

func TestChargeOffSession_RequiresActionIsResult(t *testing.T) {
	_, gw := newFakeStripe(t, map[string]fakeResponse{
		"POST /v1/payment_intents": {200, `{"id":"pi_2","object":"payment_intent","status":"requires_action"}`},
	})

	res, err := gw.ChargeOffSession(context.Background(), 100, "cus_1", "pm_abc")
	require.NoError(t, err)
	assert.Equal(t, "requires_action", res.Status)
}

func TestChargeOffSession_CardErrorIsResult(t *testing.T) {
	_, gw := newFakeStripe(t, map[string]fakeResponse{
		"POST /v1/payment_intents": {402, `{"error":{"type":"card_error","code":"card_declined","decline_code":"insufficient_funds",` +
			`"message":"Your card has insufficient funds.","payment_intent":{"id":"pi_3","object":"payment_intent","status":"requires_payment_method"}}}`},
	})

	res, err := gw.ChargeOffSession(context.Background(), 100, "cus_1", "pm_abc")
	require.NoError(t, err)
	assert.Equal(t, "pi_3", res.ID)
	assert.Equal(t, "requires_payment_method", res.Status)
}

func TestChargeOffSession_APIErrorIsGatewayError(t *testing.T) {
	_, gw := newFakeStripe(t, map[string]fakeResponse{
		"POST /v1/payment_intents": {400, `{"error":{"type":"invalid_request_error","message":"No such customer"}}`},
	})

	_, err := gw.ChargeOffSession(context.Background(), 100, "cus_gone", "pm_abc")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeGateway))
}
