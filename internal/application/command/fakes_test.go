package command

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/internal/domain/event"
	"pagos-service/internal/domain/repository"
)

// MockGateway records calls and answers with canned results.
type MockGateway struct {
	mu sync.Mutex

	CustomerID string
	Card       *aggregate.Card
	Charges    []*ChargeResult // consumed in order; the last one repeats

	EnsureErr error
	FetchErr  error
	DetachErr error
	ChargeErr error

	EnsureCalls int
	FetchCalls  int
	DetachCalls []string
	ChargeCalls []chargeCall
}

type chargeCall struct {
	AmountMinor int64
	CustomerID  string
	MethodID    string
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		CustomerID: "cus_1",
		Card:       &aggregate.Card{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030},
		Charges:    []*ChargeResult{{ID: "ch_1", Status: ChargeStatusSucceeded}},
	}
}

func (g *MockGateway) EnsureCustomer(ctx context.Context, email, token string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.EnsureCalls++
	if g.EnsureErr != nil {
		return "", g.EnsureErr
	}
	return g.CustomerID, nil
}

func (g *MockGateway) FetchPaymentMethod(ctx context.Context, token string) (*aggregate.Card, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.FetchCalls++
	if g.FetchErr != nil {
		return nil, g.FetchErr
	}
	return g.Card, nil
}

func (g *MockGateway) DetachPaymentMethod(ctx context.Context, token string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.DetachCalls = append(g.DetachCalls, token)
	return g.DetachErr
}

func (g *MockGateway) ChargeOffSession(ctx context.Context, amountMinor int64, customerID, methodID string) (*ChargeResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ChargeCalls = append(g.ChargeCalls, chargeCall{amountMinor, customerID, methodID})
	if g.ChargeErr != nil {
		return nil, g.ChargeErr
	}
	if len(g.Charges) == 0 {
		return nil, nil
	}
	res := g.Charges[0]
	if len(g.Charges) > 1 {
		g.Charges = g.Charges[1:]
	}
	return res, nil
}

// failingMethods wraps a repository and fails selected operations.
type failingMethods struct {
	repository.PaymentMethodRepository
	saveErr   error
	deleteErr error
}

func (f *failingMethods) Save(ctx context.Context, m *aggregate.PaymentMethod) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.PaymentMethodRepository.Save(ctx, m)
}

func (f *failingMethods) Delete(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	return f.PaymentMethodRepository.Delete(ctx, id)
}

type failingAudit struct{ err error }

func (f failingAudit) Record(context.Context, event.DomainEvent) error { return f.err }

// recordingLocker counts lock acquisitions and releases.
type recordingLocker struct {
	mu       sync.Mutex
	locked   []string
	released int
}

func (l *recordingLocker) Lock(ctx context.Context, ownerID string) (func(context.Context) error, error) {
	l.mu.Lock()
	l.locked = append(l.locked, ownerID)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
