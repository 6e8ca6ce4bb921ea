package memory

import (
	"context"
	"sync"
	"time"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/pkg/errors"
)

type methodRecord struct {
	id, ownerID, gatewayMethodID, gatewayCustomerID, brand, last4 string
	expMonth, expYear                                             int
	registeredAt                                                  time.Time
	isDefault                                                     bool
}

// PaymentMethodRepository keeps payment methods in insertion order.
type PaymentMethodRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]methodRecord
}

func NewPaymentMethodRepository() *PaymentMethodRepository {
	return &PaymentMethodRepository{records: make(map[string]methodRecord)}
}

func (r *PaymentMethodRepository) Save(ctx context.Context, m *aggregate.PaymentMethod) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreConnectionError("save payment method", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[m.ID()]; !exists {
		r.order = append(r.order, m.ID())
	}
	r.records[m.ID()] = methodRecord{
		id:                m.ID(),
		ownerID:           m.OwnerID(),
		gatewayMethodID:   m.GatewayMethodID(),
		gatewayCustomerID: m.GatewayCustomerID(),
		brand:             m.Brand(),
		last4:             m.Last4(),
		expMonth:          m.ExpiryMonth(),
		expYear:           m.ExpiryYear(),
		registeredAt:      m.RegisteredAt(),
		isDefault:         m.IsDefault(),
	}
	return nil
}

func (r *PaymentMethodRepository) GetByID(ctx context.Context, id string) (*aggregate.PaymentMethod, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreConnectionError("get payment method", err)
	}
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return rec.toAggregate()
}

func (r *PaymentMethodRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregate.PaymentMethod, error) {
	return r.list(ctx, func(rec methodRecord) bool { return rec.ownerID == ownerID })
}

func (r *PaymentMethodRepository) ListAll(ctx context.Context) ([]*aggregate.PaymentMethod, error) {
	return r.list(ctx, func(methodRecord) bool { return true })
}

func (r *PaymentMethodRepository) SetDefault(ctx context.Context, id string, isDefault bool) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreConnectionError("update default flag", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return errors.NewStoreRecordAbsentError("payment method", id)
	}
	rec.isDefault = isDefault
	r.records[id] = rec
	return nil
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, id string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, errors.NewStoreConnectionError("delete payment method", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[id]; !ok {
		return false, nil
	}
	delete(r.records, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (r *PaymentMethodRepository) list(ctx context.Context, keep func(methodRecord) bool) ([]*aggregate.PaymentMethod, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreConnectionError("list payment methods", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	methods := make([]*aggregate.PaymentMethod, 0)
	for _, id := range r.order {
		rec := r.records[id]
		if !keep(rec) {
			continue
		}
		m, err := rec.toAggregate()
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func (rec methodRecord) toAggregate() (*aggregate.PaymentMethod, error) {
	m, err := aggregate.ReconstructPaymentMethod(
		rec.id, rec.ownerID, rec.gatewayMethodID, rec.gatewayCustomerID, rec.brand,
		rec.expMonth, rec.expYear, rec.last4, rec.registeredAt, rec.isDefault,
	)
	if err != nil {
		return nil, errors.NewStoreCommandError("decode payment method", err)
	}
	return m, nil
}
