package command

import (
	"context"

	"pagos-service/internal/domain/aggregate"
)

// ChargeStatusSucceeded is the only charge status that confirms a payment.
const ChargeStatusSucceeded = "succeeded"

// ChargeResult is the gateway's answer to an off-session charge.
type ChargeResult struct {
	ID     string
	Status string
}

// Gateway is the card gateway as used by the sagas.
type Gateway interface {
	// EnsureCustomer returns the customer already attached to token, or
	// creates one with token as its default method.
	EnsureCustomer(ctx context.Context, email, token string) (string, error)
	FetchPaymentMethod(ctx context.Context, token string) (*aggregate.Card, error)
	DetachPaymentMethod(ctx context.Context, token string) error
	// ChargeOffSession creates and confirms a charge. A declined card is a
	// result with a non-succeeded status, not an error.
	ChargeOffSession(ctx context.Context, amountMinor int64, customerID, methodID string) (*ChargeResult, error)
}

// OwnerLocker serialises default-flag updates for one owner.
type OwnerLocker interface {
	Lock(ctx context.Context, ownerID string) (unlock func(context.Context) error, err error)
}
