package repository

import (
	"context"

	"pagos-service/internal/domain/aggregate"
)

// PaymentMethodRepository persists payment methods. GetByID returns
// (nil, nil) when no document matches.
type PaymentMethodRepository interface {
	Save(ctx context.Context, method *aggregate.PaymentMethod) error
	GetByID(ctx context.Context, id string) (*aggregate.PaymentMethod, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*aggregate.PaymentMethod, error)
	ListAll(ctx context.Context) ([]*aggregate.PaymentMethod, error)
	// SetDefault writes the flag; a write matching no document is a
	// record-absent error.
	SetDefault(ctx context.Context, id string, isDefault bool) error
	// Delete reports whether a document was removed.
	Delete(ctx context.Context, id string) (bool, error)
}

// PaymentRepository persists payments. Payments are never deleted.
type PaymentRepository interface {
	Save(ctx context.Context, payment *aggregate.Payment) error
	GetByID(ctx context.Context, id string) (*aggregate.Payment, error)
	UpdateExternalPaymentID(ctx context.Context, id, externalPaymentID string) error
	ListByOwner(ctx context.Context, ownerID string) ([]*aggregate.Payment, error)
	ListByEvent(ctx context.Context, eventID string) ([]*aggregate.Payment, error)
	// ListPending returns payments whose charge never produced an external id.
	ListPending(ctx context.Context) ([]*aggregate.Payment, error)
}
