package stripe

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"pagos-service/internal/application/command"
	"pagos-service/internal/domain/aggregate"
	"pagos-service/pkg/errors"

	stripesdk "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// StripeConfig holds the configuration for the Stripe integration
type StripeConfig struct {
	SecretKey string
	Currency  string
	// BaseURL overrides the API endpoint, for tests and local mocks.
	BaseURL    string
	HTTPClient *http.Client
}

// Gateway implements the card gateway on top of the Stripe API
type Gateway struct {
	api      *client.API
	currency string
	logger   *slog.Logger
}

func NewGateway(config StripeConfig, logger *slog.Logger) *Gateway {
	if config.Currency == "" {
		config.Currency = string(stripesdk.CurrencyUSD)
	}

	var backends *stripesdk.Backends
	if config.BaseURL != "" || config.HTTPClient != nil {
		backendConfig := &stripesdk.BackendConfig{
			HTTPClient:        config.HTTPClient,
			MaxNetworkRetries: stripesdk.Int64(0),
		}
		if config.BaseURL != "" {
			backendConfig.URL = stripesdk.String(config.BaseURL)
		}
		backend := stripesdk.GetBackendWithConfig(stripesdk.APIBackend, backendConfig)
		backends = &stripesdk.Backends{API: backend, Connect: backend, Uploads: backend}
	}

	return &Gateway{
		api:      client.New(config.SecretKey, backends),
		currency: config.Currency,
		logger:   logger,
	}
}

// EnsureCustomer reuses the customer already holding token, or creates one
// with token as its invoice default.
func (g *Gateway) EnsureCustomer(ctx context.Context, email, token string) (string, error) {
	pmParams := &stripesdk.PaymentMethodParams{}
	pmParams.Context = ctx
	pm, err := g.api.PaymentMethods.Get(token, pmParams)
	if err != nil {
		return "", errors.NewGatewayError("get payment method", err)
	}

	if pm.Customer != nil && pm.Customer.ID != "" {
		custParams := &stripesdk.CustomerParams{}
		custParams.Context = ctx
		customer, err := g.api.Customers.Get(pm.Customer.ID, custParams)
		if err != nil {
			return "", errors.NewGatewayError("get customer", err)
		}
		g.logger.Debug("reusing gateway customer", "customer_id", customer.ID)
		return customer.ID, nil
	}

	params := &stripesdk.CustomerParams{
		Email:         stripesdk.String(email),
		PaymentMethod: stripesdk.String(token),
		InvoiceSettings: &stripesdk.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripesdk.String(token),
		},
	}
	params.Context = ctx
	customer, err := g.api.Customers.New(params)
	if err != nil {
		return "", errors.NewGatewayError("create customer", err)
	}
	g.logger.Info("created gateway customer", "customer_id", customer.ID)
	return customer.ID, nil
}

func (g *Gateway) FetchPaymentMethod(ctx context.Context, token string) (*aggregate.Card, error) {
	params := &stripesdk.PaymentMethodParams{}
	params.Context = ctx
	pm, err := g.api.PaymentMethods.Get(token, params)
	if err != nil {
		return nil, errors.NewGatewayError("get payment method", err)
	}
	if pm.Card == nil {
		return nil, errors.NewGatewayError("get payment method", stderrors.New("payment method is not a card"))
	}

	return &aggregate.Card{
		Brand:    string(pm.Card.Brand),
		Last4:    pm.Card.Last4,
		ExpMonth: int(pm.Card.ExpMonth),
		ExpYear:  int(pm.Card.ExpYear),
	}, nil
}

func (g *Gateway) DetachPaymentMethod(ctx context.Context, token string) error {
	params := &stripesdk.PaymentMethodDetachParams{}
	params.Context = ctx
	if _, err := g.api.PaymentMethods.Detach(token, params); err != nil {
		return errors.NewGatewayError("detach payment method", err)
	}
	return nil
}

// ChargeOffSession creates and confirms a payment intent. Card errors come
// back as a result carrying the intent status.
func (g *Gateway) ChargeOffSession(ctx context.Context, amountMinor int64, customerID, methodID string) (*command.ChargeResult, error) {
	params := &stripesdk.PaymentIntentParams{
		Amount:        stripesdk.Int64(amountMinor),
		Currency:      stripesdk.String(g.currency),
		Customer:      stripesdk.String(customerID),
		PaymentMethod: stripesdk.String(methodID),
		OffSession:    stripesdk.Bool(true),
		Confirm:       stripesdk.Bool(true),
	}
	params.Context = ctx

	intent, err := g.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripesdk.Error
		if stderrors.As(err, &stripeErr) && stripeErr.Type == stripesdk.ErrorTypeCard {
			g.logger.Warn("card declined", "code", stripeErr.Code, "decline_code", stripeErr.DeclineCode)
			result := &command.ChargeResult{Status: string(stripeErr.Code)}
			if stripeErr.PaymentIntent != nil {
				result.ID = stripeErr.PaymentIntent.ID
				result.Status = string(stripeErr.PaymentIntent.Status)
			}
			if result.Status == "" {
				result.Status = string(stripesdk.ErrorCodeCardDeclined)
			}
			return result, nil
		}
		return nil, errors.NewGatewayError("create payment intent", err)
	}

	return &command.ChargeResult{ID: intent.ID, Status: string(intent.Status)}, nil
}
