package command

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"pagos-service/internal/domain/event"
	"pagos-service/internal/domain/repository"
	"pagos-service/internal/domain/valueobject"
	"pagos-service/pkg/errors"
)

// Saga names, as carried by errors.SagaError.
const (
	SagaAddPaymentMethod        = "AddPaymentMethod"
	SagaDeletePaymentMethod     = "DeletePaymentMethod"
	SagaSetDefaultPaymentMethod = "SetDefaultPaymentMethod"
	SagaAddPayment              = "AddPayment"
)

var now = func() time.Time { return time.Now().UTC() }

type eventSource interface {
	GetUncommittedEvents() []event.DomainEvent
	MarkEventsAsCommitted()
}

// recordEvents hands every pending event of src to the audit sink.
func recordEvents(ctx context.Context, audit repository.AuditSink, src eventSource) error {
	for _, evt := range src.GetUncommittedEvents() {
		if err := audit.Record(ctx, evt); err != nil {
			return err
		}
	}
	src.MarkEventsAsCommitted()
	return nil
}

// finish classifies a saga failure. Caller-facing failures pass through,
// the rest is wrapped once into the saga error.
func finish(logger *slog.Logger, saga string, err error) error {
	var appErr *errors.ApplicationError
	var fieldErr *valueobject.ValidationError
	switch {
	case stderrors.As(err, &appErr):
		switch appErr.Code {
		case errors.CodeValidation, errors.CodeNotFound, errors.CodeNoMethodsForOwner:
			logger.Warn("saga rejected command", "saga", saga, "error", err)
			return err
		case errors.CodePaymentDeclined:
			logger.Warn("payment declined", "saga", saga, "error", err)
			return err
		}
	case stderrors.As(err, &fieldErr):
		logger.Warn("saga rejected input", "saga", saga, "error", err)
		return errors.NewInvalidFieldError(err)
	}
	logger.Error("saga failed", "saga", saga, "error", err)
	return errors.NewSagaError(saga, err)
}
