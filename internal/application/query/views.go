package query

import (
	"time"

	"pagos-service/internal/domain/aggregate"

	"github.com/shopspring/decimal"
)

// PaymentMethodView is the read model of a stored payment method
type PaymentMethodView struct {
	ID                string    `json:"idMPago"`
	OwnerID           string    `json:"idUsuario"`
	GatewayMethodID   string    `json:"idMPagoStripe"`
	GatewayCustomerID string    `json:"idClienteStripe"`
	Brand             string    `json:"marca"`
	ExpiryMonth       int       `json:"mesExpiracion"`
	ExpiryYear        int       `json:"anioExpiracion"`
	Last4             string    `json:"ultimos4"`
	RegisteredAt      time.Time `json:"fechaRegistro"`
	IsDefault         bool      `json:"predeterminado"`
}

// PaymentView is the read model of a stored payment
type PaymentView struct {
	ID                string          `json:"idPago"`
	PaymentMethodID   string          `json:"idMPago"`
	ExternalPaymentID string          `json:"idExternalPago,omitempty"`
	OwnerID           string          `json:"idUsuario"`
	ReservationID     string          `json:"idReserva"`
	EventID           string          `json:"idEvento"`
	PaidAt            time.Time       `json:"fechaPago"`
	Amount            decimal.Decimal `json:"monto"`
	Status            string          `json:"estado"`
}

// DefaultConflict lists an owner holding more than one default method.
type DefaultConflict struct {
	OwnerID          string   `json:"idUsuario"`
	PaymentMethodIDs []string `json:"idMPagos"`
}

func toPaymentMethodView(m *aggregate.PaymentMethod) *PaymentMethodView {
	return &PaymentMethodView{
		ID:                m.ID(),
		OwnerID:           m.OwnerID(),
		GatewayMethodID:   m.GatewayMethodID(),
		GatewayCustomerID: m.GatewayCustomerID(),
		Brand:             m.Brand(),
		ExpiryMonth:       m.ExpiryMonth(),
		ExpiryYear:        m.ExpiryYear(),
		Last4:             m.Last4(),
		RegisteredAt:      m.RegisteredAt(),
		IsDefault:         m.IsDefault(),
	}
}

func toPaymentView(p *aggregate.Payment) *PaymentView {
	return &PaymentView{
		ID:                p.ID(),
		PaymentMethodID:   p.PaymentMethodID(),
		ExternalPaymentID: p.ExternalPaymentID(),
		OwnerID:           p.OwnerID(),
		ReservationID:     p.ReservationID(),
		EventID:           p.EventID(),
		PaidAt:            p.PaidAt(),
		Amount:            p.Amount(),
		Status:            string(p.Status()),
	}
}

func toPaymentMethodViews(methods []*aggregate.PaymentMethod) []*PaymentMethodView {
	views := make([]*PaymentMethodView, len(methods))
	for i, m := range methods {
		views[i] = toPaymentMethodView(m)
	}
	return views
}

func toPaymentViews(payments []*aggregate.Payment) []*PaymentView {
	views := make([]*PaymentView, len(payments))
	for i, p := range payments {
		views[i] = toPaymentView(p)
	}
	return views
}
