package aggregate

import (
	"fmt"
	"time"

	"pagos-service/internal/domain/event"
	"pagos-service/internal/domain/valueobject"

	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from the stored fields and never persisted.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusConfirmed PaymentStatus = "confirmed"
)

// Payment represents one charge attempt tied to a reservation and event
type Payment struct {
	id                valueobject.PaymentID
	paymentMethodID   valueobject.PaymentMethodID
	ownerID           valueobject.OwnerID
	reservationID     valueobject.ReservationID
	eventID           valueobject.EventID
	amount            valueobject.Amount
	paidAt            valueobject.PaidAt
	createdAt         time.Time
	externalPaymentID string
	uncommittedEvents []event.DomainEvent
}

// NewPayment creates the preliminary record, without an external charge id.
func NewPayment(paymentMethodID, ownerID, reservationID, eventID string, amount decimal.Decimal, paidAt, now time.Time) (*Payment, error) {
	pmID, err := valueobject.NewPaymentMethodID(paymentMethodID)
	if err != nil {
		return nil, err
	}
	owner, err := valueobject.NewOwnerID(ownerID)
	if err != nil {
		return nil, err
	}
	reservation, err := valueobject.NewReservationID(reservationID)
	if err != nil {
		return nil, err
	}
	evID, err := valueobject.NewEventID(eventID)
	if err != nil {
		return nil, err
	}
	amt, err := valueobject.NewAmount(amount)
	if err != nil {
		return nil, err
	}

	p := &Payment{
		id:              valueobject.GeneratePaymentID(),
		paymentMethodID: pmID,
		ownerID:         owner,
		reservationID:   reservation,
		eventID:         evID,
		amount:          amt,
		paidAt:          valueobject.NewPaidAt(paidAt),
		createdAt:       now,
	}

	p.raiseEvent(&event.PaymentRegistered{
		PaymentID:       p.id.String(),
		PaymentMethodID: pmID.String(),
		OwnerID:         owner.String(),
		ReservationID:   reservation.String(),
		Amount:          amt.Decimal(),
		Timestamp:       now,
	})

	return p, nil
}

// ReconstructPayment rebuilds a stored payment. Records written without a
// creation time fall back to paidAt.
func ReconstructPayment(
	id, paymentMethodID, ownerID, reservationID, eventID string,
	amount decimal.Decimal,
	paidAt, createdAt time.Time,
	externalPaymentID string,
) (*Payment, error) {
	pID, err := valueobject.NewPaymentID(id)
	if err != nil {
		return nil, err
	}
	pmID, err := valueobject.NewPaymentMethodID(paymentMethodID)
	if err != nil {
		return nil, err
	}
	owner, err := valueobject.NewOwnerID(ownerID)
	if err != nil {
		return nil, err
	}
	reservation, err := valueobject.NewReservationID(reservationID)
	if err != nil {
		return nil, err
	}
	evID, err := valueobject.NewEventID(eventID)
	if err != nil {
		return nil, err
	}
	amt, err := valueobject.NewAmount(amount)
	if err != nil {
		return nil, err
	}

	if createdAt.IsZero() {
		createdAt = paidAt
	}

	return &Payment{
		id:                pID,
		paymentMethodID:   pmID,
		ownerID:           owner,
		reservationID:     reservation,
		eventID:           evID,
		amount:            amt,
		paidAt:            valueobject.NewPaidAt(paidAt),
		createdAt:         createdAt,
		externalPaymentID: externalPaymentID,
	}, nil
}

// Confirm records the gateway charge id once the charge succeeded
func (p *Payment) Confirm(externalPaymentID string) error {
	if externalPaymentID == "" {
		return fmt.Errorf("external payment id cannot be empty")
	}
	if p.externalPaymentID != "" {
		return fmt.Errorf("payment %s already confirmed", p.id)
	}
	p.externalPaymentID = externalPaymentID
	return nil
}

// Status reports pending until the external charge id is set.
func (p *Payment) Status() PaymentStatus {
	if p.externalPaymentID == "" {
		return PaymentStatusPending
	}
	return PaymentStatusConfirmed
}

func (p *Payment) raiseEvent(evt event.DomainEvent) {
	p.uncommittedEvents = append(p.uncommittedEvents, evt)
}

// Getters
func (p *Payment) ID() string                { return p.id.String() }
func (p *Payment) PaymentMethodID() string   { return p.paymentMethodID.String() }
func (p *Payment) OwnerID() string           { return p.ownerID.String() }
func (p *Payment) ReservationID() string     { return p.reservationID.String() }
func (p *Payment) EventID() string           { return p.eventID.String() }
func (p *Payment) Amount() decimal.Decimal   { return p.amount.Decimal() }
func (p *Payment) AmountMinorUnits() int64   { return p.amount.MinorUnits() }
func (p *Payment) PaidAt() time.Time         { return p.paidAt.Time() }
func (p *Payment) CreatedAt() time.Time      { return p.createdAt }
func (p *Payment) ExternalPaymentID() string { return p.externalPaymentID }

// AggregateRoot interface implementation
func (p *Payment) GetUncommittedEvents() []event.DomainEvent {
	return p.uncommittedEvents
}

func (p *Payment) MarkEventsAsCommitted() {
	p.uncommittedEvents = nil
}
