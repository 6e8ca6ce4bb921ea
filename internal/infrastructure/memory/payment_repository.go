package memory

import (
	"context"
	"sync"
	"time"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/pkg/errors"

	"github.com/shopspring/decimal"
)

type paymentRecord struct {
	id, paymentMethodID, ownerID, reservationID, eventID, externalPaymentID string
	amount                                                                  decimal.Decimal
	paidAt, createdAt                                                       time.Time
}

// PaymentRepository keeps payments in insertion order.
type PaymentRepository struct {
	mu      sync.RWMutex
	order   []string
	records map[string]paymentRecord
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{records: make(map[string]paymentRecord)}
}

func (r *PaymentRepository) Save(ctx context.Context, p *aggregate.Payment) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreConnectionError("save payment", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.records[p.ID()]; !exists {
		r.order = append(r.order, p.ID())
	}
	r.records[p.ID()] = paymentRecord{
		id:                p.ID(),
		paymentMethodID:   p.PaymentMethodID(),
		ownerID:           p.OwnerID(),
		reservationID:     p.ReservationID(),
		eventID:           p.EventID(),
		externalPaymentID: p.ExternalPaymentID(),
		amount:            p.Amount(),
		paidAt:            p.PaidAt(),
		createdAt:         p.CreatedAt(),
	}
	return nil
}

func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*aggregate.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreConnectionError("get payment", err)
	}
	r.mu.RLock()
	rec, ok := r.records[id]
	r.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return rec.toAggregate()
}

func (r *PaymentRepository) UpdateExternalPaymentID(ctx context.Context, id, externalPaymentID string) error {
	if err := ctx.Err(); err != nil {
		return errors.NewStoreConnectionError("update external payment id", err)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return errors.NewStoreRecordAbsentError("payment", id)
	}
	rec.externalPaymentID = externalPaymentID
	r.records[id] = rec
	return nil
}

func (r *PaymentRepository) ListByOwner(ctx context.Context, ownerID string) ([]*aggregate.Payment, error) {
	return r.list(ctx, func(rec paymentRecord) bool { return rec.ownerID == ownerID })
}

func (r *PaymentRepository) ListByEvent(ctx context.Context, eventID string) ([]*aggregate.Payment, error) {
	return r.list(ctx, func(rec paymentRecord) bool { return rec.eventID == eventID })
}

func (r *PaymentRepository) ListPending(ctx context.Context) ([]*aggregate.Payment, error) {
	return r.list(ctx, func(rec paymentRecord) bool { return rec.externalPaymentID == "" })
}

// Len returns the number of stored payments.
func (r *PaymentRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *PaymentRepository) list(ctx context.Context, keep func(paymentRecord) bool) ([]*aggregate.Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewStoreConnectionError("list payments", err)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	payments := make([]*aggregate.Payment, 0)
	for _, id := range r.order {
		rec := r.records[id]
		if !keep(rec) {
			continue
		}
		p, err := rec.toAggregate()
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, nil
}

func (rec paymentRecord) toAggregate() (*aggregate.Payment, error) {
	p, err := aggregate.ReconstructPayment(
		rec.id, rec.paymentMethodID, rec.ownerID, rec.reservationID, rec.eventID,
		rec.amount, rec.paidAt, rec.createdAt, rec.externalPaymentID,
	)
	if err != nil {
		return nil, errors.NewStoreCommandError("decode payment", err)
	}
	return p, nil
}
