package services

import "context"

// Activity descriptions published to the activity service.
const (
	ActionPaymentMethodAdded   = "Agregó un método de pago"
	ActionPaymentMethodDeleted = "Eliminó un método de pago"
	ActionDefaultMethodChanged = "Cambió su método de pago predeterminado"
	ActionPaymentMade          = "Realizó un pago"
)

// Notifier delivers fire-after-commit notifications to the peer services.
type Notifier interface {
	ConfirmReservation(ctx context.Context, reservationID string) error
	PublishActivity(ctx context.Context, ownerID, action string) error
}
