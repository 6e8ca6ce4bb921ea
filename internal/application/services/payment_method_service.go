package services

import (
	"context"
	"log/slog"

	"pagos-service/internal/application/command"
	"pagos-service/internal/domain/repository"
	"pagos-service/internal/domain/valueobject"
)

// PaymentMethodService runs the payment method sagas and notifies the
// activity service once a saga has committed. A failed notification is
// returned to the caller; the committed change is kept.
type PaymentMethodService struct {
	methods    repository.PaymentMethodRepository
	add        *command.AddPaymentMethodHandler
	del        *command.DeletePaymentMethodHandler
	setDefault *command.SetDefaultPaymentMethodHandler
	notifier   Notifier
	logger     *slog.Logger
}

func NewPaymentMethodService(
	methods repository.PaymentMethodRepository,
	audit repository.AuditSink,
	gateway command.Gateway,
	locker command.OwnerLocker,
	notifier Notifier,
	logger *slog.Logger,
) *PaymentMethodService {
	return &PaymentMethodService{
		methods:    methods,
		add:        command.NewAddPaymentMethodHandler(methods, audit, gateway, logger),
		del:        command.NewDeletePaymentMethodHandler(methods, audit, gateway, logger),
		setDefault: command.NewSetDefaultPaymentMethodHandler(methods, audit, locker, logger),
		notifier:   notifier,
		logger:     logger,
	}
}

// AddPaymentMethod returns the new local id. The id is also returned when
// only the activity notification failed.
func (s *PaymentMethodService) AddPaymentMethod(ctx context.Context, cmd *command.AddPaymentMethodCommand) (string, error) {
	id, err := s.add.Handle(ctx, cmd)
	if err != nil {
		return "", err
	}
	return id, s.publish(ctx, cmd.OwnerID, ActionPaymentMethodAdded)
}

// DeletePaymentMethod reports whether a record was removed. Nothing is
// published when no record was removed.
func (s *PaymentMethodService) DeletePaymentMethod(ctx context.Context, cmd *command.DeletePaymentMethodCommand) (bool, error) {
	ownerID, err := s.ownerOf(ctx, cmd)
	if err != nil {
		return false, err
	}
	removed, err := s.del.Handle(ctx, cmd)
	if err != nil || !removed {
		return removed, err
	}
	return true, s.publish(ctx, ownerID, ActionPaymentMethodDeleted)
}

func (s *PaymentMethodService) SetDefaultPaymentMethod(ctx context.Context, cmd *command.SetDefaultPaymentMethodCommand) error {
	if err := s.setDefault.Handle(ctx, cmd); err != nil {
		return err
	}
	return s.publish(ctx, cmd.OwnerID, ActionDefaultMethodChanged)
}

// ownerOf finds the owner to notify after a delete. Inputs the saga rejects
// resolve to no owner and are left for the saga to report.
func (s *PaymentMethodService) ownerOf(ctx context.Context, cmd *command.DeletePaymentMethodCommand) (string, error) {
	if cmd == nil {
		return "", nil
	}
	if _, err := valueobject.NewPaymentMethodID(cmd.PaymentMethodID); err != nil {
		return "", nil
	}
	method, err := s.methods.GetByID(ctx, cmd.PaymentMethodID)
	if err != nil || method == nil {
		return "", err
	}
	return method.OwnerID(), nil
}

func (s *PaymentMethodService) publish(ctx context.Context, ownerID, action string) error {
	if err := s.notifier.PublishActivity(ctx, ownerID, action); err != nil {
		s.logger.Error("activity notification failed after commit", "owner_id", ownerID, "action", action, "error", err)
		return err
	}
	return nil
}
