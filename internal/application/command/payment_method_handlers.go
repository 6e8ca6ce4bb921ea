package command

import (
	"context"
	"log/slog"
	"strings"

	"pagos-service/internal/domain/aggregate"
	"pagos-service/internal/domain/repository"
	"pagos-service/internal/domain/valueobject"
	"pagos-service/pkg/errors"
)

// AddPaymentMethodHandler registers a gateway card for an owner
type AddPaymentMethodHandler struct {
	methods repository.PaymentMethodRepository
	audit   repository.AuditSink
	gateway Gateway
	logger  *slog.Logger
}

func NewAddPaymentMethodHandler(
	methods repository.PaymentMethodRepository,
	audit repository.AuditSink,
	gateway Gateway,
	logger *slog.Logger,
) *AddPaymentMethodHandler {
	return &AddPaymentMethodHandler{methods: methods, audit: audit, gateway: gateway, logger: logger}
}

// Handle returns the local id of the new payment method.
func (h *AddPaymentMethodHandler) Handle(ctx context.Context, cmd *AddPaymentMethodCommand) (string, error) {
	id, err := h.handle(ctx, cmd)
	if err != nil {
		return "", finish(h.logger, SagaAddPaymentMethod, err)
	}
	return id, nil
}

func (h *AddPaymentMethodHandler) handle(ctx context.Context, cmd *AddPaymentMethodCommand) (string, error) {
	if cmd == nil {
		return "", errors.NewValidationError("command cannot be nil")
	}
	if strings.TrimSpace(cmd.GatewayToken) == "" {
		return "", errors.NewValidationError("gateway payment method token is required")
	}
	// Shape checks run before the gateway sees the token.
	if _, err := valueobject.NewOwnerID(cmd.OwnerID); err != nil {
		return "", err
	}
	if _, err := valueobject.NewGatewayMethodID(cmd.GatewayToken); err != nil {
		return "", err
	}
	log := h.logger.With("saga", SagaAddPaymentMethod, "owner_id", cmd.OwnerID)

	log.Debug("ensuring gateway customer")
	customerID, err := h.gateway.EnsureCustomer(ctx, cmd.OwnerEmail, cmd.GatewayToken)
	if err != nil {
		return "", err
	}

	log.Debug("fetching payment method details", "customer_id", customerID)
	card, err := h.gateway.FetchPaymentMethod(ctx, cmd.GatewayToken)
	if err != nil {
		return "", err
	}
	if card == nil {
		return "", errors.NewGatewayError("fetch payment method", errors.NewInternalError("no card details returned"))
	}

	method, err := aggregate.NewPaymentMethod(cmd.OwnerID, cmd.GatewayToken, customerID, *card, now())
	if err != nil {
		return "", err
	}
	if err := h.methods.Save(ctx, method); err != nil {
		return "", err
	}
	if err := recordEvents(ctx, h.audit, method); err != nil {
		return "", err
	}

	log.Info("payment method registered", "payment_method_id", method.ID(), "brand", method.Brand())
	return method.ID(), nil
}

// DeletePaymentMethodHandler detaches a card from the gateway and removes it
type DeletePaymentMethodHandler struct {
	methods repository.PaymentMethodRepository
	audit   repository.AuditSink
	gateway Gateway
	logger  *slog.Logger
}

func NewDeletePaymentMethodHandler(
	methods repository.PaymentMethodRepository,
	audit repository.AuditSink,
	gateway Gateway,
	logger *slog.Logger,
) *DeletePaymentMethodHandler {
	return &DeletePaymentMethodHandler{methods: methods, audit: audit, gateway: gateway, logger: logger}
}

// Handle reports whether a stored record was removed. The gateway detach is
// not undone when the local delete fails.
func (h *DeletePaymentMethodHandler) Handle(ctx context.Context, cmd *DeletePaymentMethodCommand) (bool, error) {
	removed, err := h.handle(ctx, cmd)
	if err != nil {
		return false, finish(h.logger, SagaDeletePaymentMethod, err)
	}
	return removed, nil
}

func (h *DeletePaymentMethodHandler) handle(ctx context.Context, cmd *DeletePaymentMethodCommand) (bool, error) {
	if cmd == nil {
		return false, errors.NewValidationError("command cannot be nil")
	}
	id, err := valueobject.NewPaymentMethodID(cmd.PaymentMethodID)
	if err != nil {
		return false, err
	}
	log := h.logger.With("saga", SagaDeletePaymentMethod, "payment_method_id", id.String())

	method, err := h.methods.GetByID(ctx, id.String())
	if err != nil {
		return false, err
	}
	if method == nil {
		return false, errors.NewNotFoundError("payment method")
	}

	log.Debug("detaching payment method from gateway", "gateway_method_id", method.GatewayMethodID())
	if err := h.gateway.DetachPaymentMethod(ctx, method.GatewayMethodID()); err != nil {
		return false, err
	}

	removed, err := h.methods.Delete(ctx, id.String())
	if err != nil {
		log.Error("gateway method detached but local delete failed", "error", err)
		return false, err
	}
	if !removed {
		log.Warn("payment method vanished before delete")
		return false, nil
	}

	method.MarkDeleted(now())
	if err := recordEvents(ctx, h.audit, method); err != nil {
		return true, err
	}

	log.Info("payment method deleted")
	return true, nil
}

// SetDefaultPaymentMethodHandler keeps a single default method per owner
type SetDefaultPaymentMethodHandler struct {
	methods repository.PaymentMethodRepository
	audit   repository.AuditSink
	locker  OwnerLocker
	logger  *slog.Logger
}

// NewSetDefaultPaymentMethodHandler builds the handler; a nil locker leaves
// concurrent calls for one owner unserialised.
func NewSetDefaultPaymentMethodHandler(
	methods repository.PaymentMethodRepository,
	audit repository.AuditSink,
	locker OwnerLocker,
	logger *slog.Logger,
) *SetDefaultPaymentMethodHandler {
	return &SetDefaultPaymentMethodHandler{methods: methods, audit: audit, locker: locker, logger: logger}
}

func (h *SetDefaultPaymentMethodHandler) Handle(ctx context.Context, cmd *SetDefaultPaymentMethodCommand) error {
	if err := h.handle(ctx, cmd); err != nil {
		return finish(h.logger, SagaSetDefaultPaymentMethod, err)
	}
	return nil
}

func (h *SetDefaultPaymentMethodHandler) handle(ctx context.Context, cmd *SetDefaultPaymentMethodCommand) error {
	if cmd == nil {
		return errors.NewValidationError("command cannot be nil")
	}
	targetID, err := valueobject.NewPaymentMethodID(cmd.PaymentMethodID)
	if err != nil {
		return err
	}
	ownerID, err := valueobject.NewOwnerID(cmd.OwnerID)
	if err != nil {
		return err
	}
	log := h.logger.With("saga", SagaSetDefaultPaymentMethod, "owner_id", ownerID.String(), "payment_method_id", targetID.String())

	if h.locker != nil {
		unlock, err := h.locker.Lock(ctx, ownerID.String())
		if err != nil {
			return err
		}
		defer func() {
			if uerr := unlock(context.WithoutCancel(ctx)); uerr != nil {
				log.Warn("failed to release owner lock", "error", uerr)
			}
		}()
	}

	target, err := h.methods.GetByID(ctx, targetID.String())
	if err != nil {
		return err
	}
	if target == nil {
		return errors.NewNotFoundError("payment method")
	}

	owned, err := h.methods.ListByOwner(ctx, ownerID.String())
	if err != nil {
		return err
	}
	if len(owned) == 0 {
		return errors.NewNoMethodsForOwnerError(ownerID.String())
	}
	if target.OwnerID() != ownerID.String() {
		log.Warn("target payment method belongs to another owner", "target_owner_id", target.OwnerID())
		return errors.NewNotFoundError("payment method")
	}

	// Only the first other default is cleared.
	for _, m := range owned {
		if !m.IsDefault() || m.ID() == target.ID() {
			continue
		}
		log.Debug("unsetting previous default", "previous_id", m.ID())
		if err := h.methods.SetDefault(ctx, m.ID(), false); err != nil {
			return err
		}
		m.ChangeDefault(false, now())
		if err := recordEvents(ctx, h.audit, m); err != nil {
			return err
		}
		break
	}

	if err := h.methods.SetDefault(ctx, target.ID(), true); err != nil {
		return err
	}
	target.ChangeDefault(true, now())
	if err := recordEvents(ctx, h.audit, target); err != nil {
		return err
	}

	log.Info("default payment method updated")
	return nil
}
