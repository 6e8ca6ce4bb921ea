package services

import (
	"context"
	"log/slog"
	"time"

	"pagos-service/internal/application/command"
	"pagos-service/internal/domain/repository"
	"pagos-service/internal/domain/valueobject"
	"pagos-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// PaymentService charges stored payment methods
type PaymentService struct {
	methods  repository.PaymentMethodRepository
	add      *command.AddPaymentHandler
	notifier Notifier
	logger   *slog.Logger
}

func NewPaymentService(
	methods repository.PaymentMethodRepository,
	payments repository.PaymentRepository,
	audit repository.AuditSink,
	gateway command.Gateway,
	notifier Notifier,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		methods:  methods,
		add:      command.NewAddPaymentHandler(payments, audit, gateway, logger),
		notifier: notifier,
		logger:   logger,
	}
}

// AddPaymentRequest represents a charge against a stored payment method
type AddPaymentRequest struct {
	PaymentMethodID string          `json:"idMPago"`
	OwnerID         string          `json:"idUsuario"`
	ReservationID   string          `json:"idReserva"`
	EventID         string          `json:"idEvento"`
	Amount          decimal.Decimal `json:"monto"`
	PaidAt          time.Time       `json:"fechaPago"`
}

// AddPayment resolves the gateway ids from the stored method, runs the
// charge, then confirms the reservation and publishes the activity in that
// order. A failed notification is returned together with the committed
// payment id.
func (s *PaymentService) AddPayment(ctx context.Context, req *AddPaymentRequest) (string, error) {
	if req == nil {
		return "", errors.NewValidationError("request cannot be nil")
	}
	methodID, err := valueobject.NewPaymentMethodID(req.PaymentMethodID)
	if err != nil {
		return "", errors.NewInvalidFieldError(err)
	}

	method, err := s.methods.GetByID(ctx, methodID.String())
	if err != nil {
		return "", err
	}
	if method == nil {
		return "", errors.NewNotFoundError("payment method")
	}

	id, err := s.add.Handle(ctx, &command.AddPaymentCommand{
		PaymentMethodID:   methodID.String(),
		OwnerID:           req.OwnerID,
		ReservationID:     req.ReservationID,
		EventID:           req.EventID,
		Amount:            req.Amount,
		PaidAt:            req.PaidAt,
		GatewayCustomerID: method.GatewayCustomerID(),
		GatewayMethodID:   method.GatewayMethodID(),
	})
	if err != nil {
		return "", err
	}

	log := s.logger.With("payment_id", id, "reservation_id", req.ReservationID)
	if err := s.notifier.ConfirmReservation(ctx, req.ReservationID); err != nil {
		log.Error("reservation confirmation failed after commit", "error", err)
		return id, err
	}
	if err := s.notifier.PublishActivity(ctx, req.OwnerID, ActionPaymentMade); err != nil {
		log.Error("activity notification failed after commit", "error", err)
		return id, err
	}
	return id, nil
}
