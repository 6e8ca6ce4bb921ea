package aggregate

import (
	"time"

	"pagos-service/internal/domain/event"
	"pagos-service/internal/domain/valueobject"
)

// Card is the card metadata reported by the gateway for a token.
type Card struct {
	Brand    string
	Last4    string
	ExpMonth int
	ExpYear  int
}

// PaymentMethod represents a stored, tokenized card of an owner
type PaymentMethod struct {
	id                valueobject.PaymentMethodID
	ownerID           valueobject.OwnerID
	gatewayMethodID   valueobject.GatewayMethodID
	gatewayCustomerID valueobject.GatewayCustomerID
	brand             valueobject.Brand
	expiryMonth       valueobject.ExpiryMonth
	expiryYear        valueobject.ExpiryYear
	last4             valueobject.Last4
	registeredAt      valueobject.RegisteredAt
	isDefault         bool
	uncommittedEvents []event.DomainEvent
}

// NewPaymentMethod builds a non-default payment method registered at now.
func NewPaymentMethod(ownerID, gatewayMethodID, gatewayCustomerID string, card Card, now time.Time) (*PaymentMethod, error) {
	owner, err := valueobject.NewOwnerID(ownerID)
	if err != nil {
		return nil, err
	}
	gm, err := valueobject.NewGatewayMethodID(gatewayMethodID)
	if err != nil {
		return nil, err
	}
	gc, err := valueobject.NewGatewayCustomerID(gatewayCustomerID)
	if err != nil {
		return nil, err
	}
	brand, err := valueobject.NewBrand(card.Brand)
	if err != nil {
		return nil, err
	}
	month, err := valueobject.NewExpiryMonth(card.ExpMonth)
	if err != nil {
		return nil, err
	}
	year, err := valueobject.NewExpiryYear(card.ExpYear, now)
	if err != nil {
		return nil, err
	}
	last4, err := valueobject.NewLast4(card.Last4)
	if err != nil {
		return nil, err
	}
	registeredAt, err := valueobject.NewRegisteredAt(now, now)
	if err != nil {
		return nil, err
	}

	m := &PaymentMethod{
		id:                valueobject.GeneratePaymentMethodID(),
		ownerID:           owner,
		gatewayMethodID:   gm,
		gatewayCustomerID: gc,
		brand:             brand,
		expiryMonth:       month,
		expiryYear:        year,
		last4:             last4,
		registeredAt:      registeredAt,
	}

	m.raiseEvent(&event.PaymentMethodRegistered{
		PaymentMethodID: m.id.String(),
		OwnerID:         owner.String(),
		Brand:           brand.String(),
		Last4:           last4.String(),
		Timestamp:       now,
	})

	return m, nil
}

// ReconstructPaymentMethod rebuilds a stored payment method. Format rules are
// re-checked; rules relative to the current time are not.
func ReconstructPaymentMethod(
	id, ownerID, gatewayMethodID, gatewayCustomerID, brand string,
	expMonth, expYear int,
	last4 string,
	registeredAt time.Time,
	isDefault bool,
) (*PaymentMethod, error) {
	pmID, err := valueobject.NewPaymentMethodID(id)
	if err != nil {
		return nil, err
	}
	owner, err := valueobject.NewOwnerID(ownerID)
	if err != nil {
		return nil, err
	}
	gm, err := valueobject.NewGatewayMethodID(gatewayMethodID)
	if err != nil {
		return nil, err
	}
	gc, err := valueobject.NewGatewayCustomerID(gatewayCustomerID)
	if err != nil {
		return nil, err
	}
	b, err := valueobject.NewBrand(brand)
	if err != nil {
		return nil, err
	}
	month, err := valueobject.NewExpiryMonth(expMonth)
	if err != nil {
		return nil, err
	}
	l4, err := valueobject.NewLast4(last4)
	if err != nil {
		return nil, err
	}

	return &PaymentMethod{
		id:                pmID,
		ownerID:           owner,
		gatewayMethodID:   gm,
		gatewayCustomerID: gc,
		brand:             b,
		expiryMonth:       month,
		expiryYear:        valueobject.RestoreExpiryYear(expYear),
		last4:             l4,
		registeredAt:      valueobject.RestoreRegisteredAt(registeredAt),
		isDefault:         isDefault,
	}, nil
}

// MarkDeleted records that the stored document was removed.
func (m *PaymentMethod) MarkDeleted(now time.Time) {
	m.raiseEvent(&event.PaymentMethodDeleted{
		PaymentMethodID: m.id.String(),
		OwnerID:         m.ownerID.String(),
		Timestamp:       now,
	})
}

// ChangeDefault applies a set/unset that was already written to the store.
func (m *PaymentMethod) ChangeDefault(isDefault bool, now time.Time) {
	m.isDefault = isDefault
	m.raiseEvent(&event.PaymentMethodDefaultChanged{
		PaymentMethodID: m.id.String(),
		OwnerID:         m.ownerID.String(),
		IsDefault:       isDefault,
		Timestamp:       now,
	})
}

func (m *PaymentMethod) raiseEvent(evt event.DomainEvent) {
	m.uncommittedEvents = append(m.uncommittedEvents, evt)
}

// Getters
func (m *PaymentMethod) ID() string                { return m.id.String() }
func (m *PaymentMethod) OwnerID() string           { return m.ownerID.String() }
func (m *PaymentMethod) GatewayMethodID() string   { return m.gatewayMethodID.String() }
func (m *PaymentMethod) GatewayCustomerID() string { return m.gatewayCustomerID.String() }
func (m *PaymentMethod) Brand() string             { return m.brand.String() }
func (m *PaymentMethod) ExpiryMonth() int          { return m.expiryMonth.Int() }
func (m *PaymentMethod) ExpiryYear() int           { return m.expiryYear.Int() }
func (m *PaymentMethod) Last4() string             { return m.last4.String() }
func (m *PaymentMethod) RegisteredAt() time.Time   { return m.registeredAt.Time() }
func (m *PaymentMethod) IsDefault() bool           { return m.isDefault }

func (m *PaymentMethod) GetUncommittedEvents() []event.DomainEvent {
	return m.uncommittedEvents
}

func (m *PaymentMethod) MarkEventsAsCommitted() {
	m.uncommittedEvents = nil
}
