package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// DomainEvent is what an aggregate raises and the audit sink records.
type DomainEvent interface {
	EventType() string
	AggregateID() string
	OccurredAt() time.Time
	Version() int
}

// Audit types as stored in the tipo field.
const (
	TypePaymentMethodRegistered    = "MPAGO_REGISTRADO"
	TypePaymentMethodDeleted       = "MPAGO_ELIMINADO"
	TypePaymentMethodDefaultChange = "MPAGO_PREDETERMINADO"
	TypePaymentRegistered          = "PAGO_REGISTRADO"
)

// PaymentMethodRegistered event
type PaymentMethodRegistered struct {
	PaymentMethodID string    `json:"payment_method_id"`
	OwnerID         string    `json:"owner_id"`
	Brand           string    `json:"brand"`
	Last4           string    `json:"last4"`
	Timestamp       time.Time `json:"timestamp"`
}

func (e *PaymentMethodRegistered) EventType() string     { return TypePaymentMethodRegistered }
func (e *PaymentMethodRegistered) AggregateID() string   { return e.PaymentMethodID }
func (e *PaymentMethodRegistered) OccurredAt() time.Time { return e.Timestamp }
func (e *PaymentMethodRegistered) Version() int          { return 1 }

// PaymentMethodDeleted event
type PaymentMethodDeleted struct {
	PaymentMethodID string    `json:"payment_method_id"`
	OwnerID         string    `json:"owner_id"`
	Timestamp       time.Time `json:"timestamp"`
}

func (e *PaymentMethodDeleted) EventType() string     { return TypePaymentMethodDeleted }
func (e *PaymentMethodDeleted) AggregateID() string   { return e.PaymentMethodID }
func (e *PaymentMethodDeleted) OccurredAt() time.Time { return e.Timestamp }
func (e *PaymentMethodDeleted) Version() int          { return 1 }

// PaymentMethodDefaultChanged is raised for each set/unset write that hit a record.
type PaymentMethodDefaultChanged struct {
	PaymentMethodID string    `json:"payment_method_id"`
	OwnerID         string    `json:"owner_id"`
	IsDefault       bool      `json:"is_default"`
	Timestamp       time.Time `json:"timestamp"`
}

func (e *PaymentMethodDefaultChanged) EventType() string     { return TypePaymentMethodDefaultChange }
func (e *PaymentMethodDefaultChanged) AggregateID() string   { return e.PaymentMethodID }
func (e *PaymentMethodDefaultChanged) OccurredAt() time.Time { return e.Timestamp }
func (e *PaymentMethodDefaultChanged) Version() int          { return 1 }

// PaymentRegistered event, raised when the preliminary record is written
type PaymentRegistered struct {
	PaymentID       string          `json:"payment_id"`
	PaymentMethodID string          `json:"payment_method_id"`
	OwnerID         string          `json:"owner_id"`
	ReservationID   string          `json:"reservation_id"`
	Amount          decimal.Decimal `json:"amount"`
	Timestamp       time.Time       `json:"timestamp"`
}

func (e *PaymentRegistered) EventType() string     { return TypePaymentRegistered }
func (e *PaymentRegistered) AggregateID() string   { return e.PaymentID }
func (e *PaymentRegistered) OccurredAt() time.Time { return e.Timestamp }
func (e *PaymentRegistered) Version() int          { return 1 }
