package command

import (
	"context"
	"log/slog"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/internal/domain/repository"
	"pagos-service/internal/domain/valueobject"
	"pagos-service/pkg/errors"
)

// AddPaymentHandler records a payment and charges it off-session
type AddPaymentHandler struct {
	payments repository.PaymentRepository
	audit    repository.AuditSink
	gateway  Gateway
	logger   *slog.Logger
}

func NewAddPaymentHandler(
	payments repository.PaymentRepository,
	audit repository.AuditSink,
	gateway Gateway,
	logger *slog.Logger,
) *AddPaymentHandler {
	return &AddPaymentHandler{payments: payments, audit: audit, gateway: gateway, logger: logger}
}

// Handle returns the local payment id. The preliminary record is written
// before the charge and stays as it is when the charge does not succeed.
func (h *AddPaymentHandler) Handle(ctx context.Context, cmd *AddPaymentCommand) (string, error) {
	id, err := h.handle(ctx, cmd)
	if err != nil {
		return "", finish(h.logger, SagaAddPayment, err)
	}
	return id, nil
}

func (h *AddPaymentHandler) handle(ctx context.Context, cmd *AddPaymentCommand) (string, error) {
	if cmd == nil {
		return "", errors.NewValidationError("command cannot be nil")
	}
	customerID, err := valueobject.NewGatewayCustomerID(cmd.GatewayCustomerID)
	if err != nil {
		return "", err
	}
	methodID, err := valueobject.NewGatewayMethodID(cmd.GatewayMethodID)
	if err != nil {
		return "", err
	}

	payment, err := aggregate.NewPayment(cmd.PaymentMethodID, cmd.OwnerID, cmd.ReservationID, cmd.EventID, cmd.Amount, cmd.PaidAt, now())
	if err != nil {
		return "", err
	}
	log := h.logger.With("saga", SagaAddPayment, "payment_id", payment.ID(), "reservation_id", payment.ReservationID())

	if err := h.payments.Save(ctx, payment); err != nil {
		return "", err
	}
	log.Debug("preliminary payment stored")
	if err := recordEvents(ctx, h.audit, payment); err != nil {
		return "", err
	}

	log.Debug("charging off-session", "amount_minor", payment.AmountMinorUnits())
	result, err := h.gateway.ChargeOffSession(ctx, payment.AmountMinorUnits(), customerID.String(), methodID.String())
	if err != nil {
		return "", err
	}
	if result == nil || result.Status != ChargeStatusSucceeded || result.ID == "" {
		status := ""
		if result != nil {
			status = result.Status
		}
		return "", errors.NewPaymentDeclinedError(status)
	}

	if err := payment.Confirm(result.ID); err != nil {
		return "", err
	}
	if err := h.payments.UpdateExternalPaymentID(ctx, payment.ID(), result.ID); err != nil {
		return "", err
	}

	log.Info("payment confirmed", "external_payment_id", result.ID)
	return payment.ID(), nil
}
