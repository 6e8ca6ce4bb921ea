package aggregate

import (
	"testing"
	"time"

	"pagos-service/internal/domain/event"
	"pagos-service/internal/domain/valueobject"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	ownerID       = "6f1c2b8e-2f6e-4b7a-9d43-1a2b3c4d5e6f"
	methodID      = "0f8fad5b-d9cb-469f-a165-70867728950e"
	reservationID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	eventID       = "16fd2706-8baf-433b-82eb-8c7fada847da"
)

var now = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func visaCard() Card {
	return Card{Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030}
}

func TestNewPaymentMethod(t *testing.T) {
	m, err := NewPaymentMethod(ownerID, "pm_abc", "cus_1", visaCard(), now)
	require.NoError(t, err)

	assert.False(t, m.IsDefault())
	assert.Equal(t, "visa", m.Brand())
	assert.Equal(t, "4242", m.Last4())
	assert.Equal(t, now, m.RegisteredAt())
	_, err = valueobject.NewPaymentMethodID(m.ID())
	assert.NoError(t, err)

	events := m.GetUncommittedEvents()
	require.Len(t, events, 1)
	assert.Equal(t, event.TypePaymentMethodRegistered, events[0].EventType())
	assert.Equal(t, m.ID(), events[0].AggregateID())

	m.MarkEventsAsCommitted()
	assert.Empty(t, m.GetUncommittedEvents())
}

func TestNewPaymentMethod_RejectsInvalidCard(t *testing.T) {
	card := visaCard()
	card.ExpYear = 2020
	_, err := NewPaymentMethod(ownerID, "pm_abc", "cus_1", card, now)
	assert.ErrorIs(t, err, valueobject.ErrExpiryYearInPast)

	_, err = NewPaymentMethod(ownerID, "abc", "cus_1", visaCard(), now)
	assert.ErrorIs(t, err, valueobject.ErrGatewayMethodPrefix)
}

func TestReconstructPaymentMethod_SkipsTimeRelativeRules(t *testing.T) {
	m, err := ReconstructPaymentMethod(methodID, ownerID, "pm_abc", "cus_1", "visa", 1, 2019, "4242", now.Add(time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, 2019, m.ExpiryYear())
	assert.True(t, m.IsDefault())
	assert.Empty(t, m.GetUncommittedEvents())

	_, err = ReconstructPaymentMethod("bad", ownerID, "pm_abc", "cus_1", "visa", 1, 2030, "4242", now, false)
	assert.ErrorIs(t, err, valueobject.ErrMalformedGUID)
}

func TestPaymentMethod_ChangeDefaultAndDelete(t *testing.T) {
	m, err := ReconstructPaymentMethod(methodID, ownerID, "pm_abc", "cus_1", "visa", 1, 2030, "4242", now, false)
	require.NoError(t, err)

	m.ChangeDefault(true, now)
	m.MarkDeleted(now)

	assert.True(t, m.IsDefault())
	events := m.GetUncommittedEvents()
	require.Len(t, events, 2)
	assert.Equal(t, event.TypePaymentMethodDefaultChange, events[0].EventType())
	assert.Equal(t, event.TypePaymentMethodDeleted, events[1].EventType())
}

func TestNewPayment_IsPreliminary(t *testing.T) {
	p, err := NewPayment(methodID, ownerID, reservationID, eventID, decimal.RequireFromString("99.99"), now, now)
	require.NoError(t, err)

	assert.Equal(t, "", p.ExternalPaymentID())
	assert.Equal(t, PaymentStatusPending, p.Status())
	assert.Equal(t, int64(9999), p.AmountMinorUnits())

	events := p.GetUncommittedEvents()
	require.Len(t, events, 1)
	registered, ok := events[0].(*event.PaymentRegistered)
	require.True(t, ok)
	assert.Equal(t, reservationID, registered.ReservationID)
	assert.True(t, registered.Amount.Equal(decimal.RequireFromString("99.99")))
}

func TestNewPayment_RejectsNonPositiveAmount(t *testing.T) {
	_, err := NewPayment(methodID, ownerID, reservationID, eventID, decimal.Zero, now, now)
	assert.ErrorIs(t, err, valueobject.ErrAmountNotPositive)
}

func TestPayment_Confirm(t *testing.T) {
	p, err := NewPayment(methodID, ownerID, reservationID, eventID, decimal.NewFromInt(10), now, now)
	require.NoError(t, err)

	assert.Error(t, p.Confirm(""))
	require.NoError(t, p.Confirm("pi_1"))
	assert.Equal(t, PaymentStatusConfirmed, p.Status())
	assert.Error(t, p.Confirm("pi_2"))
	assert.Equal(t, "pi_1", p.ExternalPaymentID())
}

func TestPayment_CreatedAt(t *testing.T) {
	paidAt := now.Add(-72 * time.Hour)
	p, err := NewPayment(methodID, ownerID, reservationID, eventID, decimal.NewFromInt(10), paidAt, now)
	require.NoError(t, err)
	assert.Equal(t, now, p.CreatedAt())

	restored, err := ReconstructPayment(p.ID(), methodID, ownerID, reservationID, eventID, decimal.NewFromInt(10), paidAt, time.Time{}, "")
	require.NoError(t, err)
	assert.Equal(t, paidAt, restored.CreatedAt())
}
