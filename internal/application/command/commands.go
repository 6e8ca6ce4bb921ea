package command

import (
	"time"

	"github.com/shopspring/decimal"
)

// ============================================
// Payment Method Commands
// ============================================

// AddPaymentMethodCommand registers a gateway card token for an owner
type AddPaymentMethodCommand struct {
	OwnerID      string `json:"idUsuario"`
	OwnerEmail   string `json:"correoUsuario"`
	GatewayToken string `json:"idMPagoStripe"`
}

// DeletePaymentMethodCommand detaches and removes a stored method
type DeletePaymentMethodCommand struct {
	PaymentMethodID string `json:"idMPago"`
}

// SetDefaultPaymentMethodCommand makes one method the owner's default
type SetDefaultPaymentMethodCommand struct {
	PaymentMethodID string `json:"idMPago"`
	OwnerID         string `json:"idUsuario"`
}

// ============================================
// Payment Commands
// ============================================

// AddPaymentCommand charges a stored method off-session. The gateway ids
// are resolved by the caller from the stored payment method.
type AddPaymentCommand struct {
	PaymentMethodID   string
	OwnerID           string
	ReservationID     string
	EventID           string
	Amount            decimal.Decimal
	PaidAt            time.Time
	GatewayCustomerID string
	GatewayMethodID   string
}
