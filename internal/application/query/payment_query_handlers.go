package query

import (
	"context"
	"time"

	"pagos-service/internal/domain/repository"
	"pagos-service/internal/domain/valueobject"
	"pagos-service/pkg/errors"
)

// GetPaymentQuery represents a query to get a payment by ID
type GetPaymentQuery struct {
	PaymentID string `json:"idPago"`
}

// GetPaymentHandler handles get payment queries
type GetPaymentHandler struct {
	payments repository.PaymentRepository
}

func NewGetPaymentHandler(payments repository.PaymentRepository) *GetPaymentHandler {
	return &GetPaymentHandler{payments: payments}
}

func (h *GetPaymentHandler) Handle(ctx context.Context, query *GetPaymentQuery) (*PaymentView, error) {
	if query == nil {
		return nil, errors.NewValidationError("query cannot be nil")
	}
	id, err := valueobject.NewPaymentID(query.PaymentID)
	if err != nil {
		return nil, errors.NewInvalidFieldError(err)
	}

	payment, err := h.payments.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if payment == nil {
		return nil, errors.NewNotFoundError("payment")
	}
	return toPaymentView(payment), nil
}

// ListOwnerPaymentsQuery represents a query to list payments for an owner
type ListOwnerPaymentsQuery struct {
	OwnerID string `json:"idUsuario"`
}

// ListOwnerPaymentsHandler handles list owner payments queries
type ListOwnerPaymentsHandler struct {
	payments repository.PaymentRepository
}

func NewListOwnerPaymentsHandler(payments repository.PaymentRepository) *ListOwnerPaymentsHandler {
	return &ListOwnerPaymentsHandler{payments: payments}
}

func (h *ListOwnerPaymentsHandler) Handle(ctx context.Context, query *ListOwnerPaymentsQuery) ([]*PaymentView, error) {
	if query == nil {
		return nil, errors.NewValidationError("query cannot be nil")
	}
	ownerID, err := valueobject.NewOwnerID(query.OwnerID)
	if err != nil {
		return nil, errors.NewInvalidFieldError(err)
	}

	payments, err := h.payments.ListByOwner(ctx, ownerID.String())
	if err != nil {
		return nil, err
	}
	return toPaymentViews(payments), nil
}

// ListEventPaymentsQuery represents a query to list payments for an event
type ListEventPaymentsQuery struct {
	EventID string `json:"idEvento"`
}

// ListEventPaymentsHandler handles list event payments queries
type ListEventPaymentsHandler struct {
	payments repository.PaymentRepository
}

func NewListEventPaymentsHandler(payments repository.PaymentRepository) *ListEventPaymentsHandler {
	return &ListEventPaymentsHandler{payments: payments}
}

func (h *ListEventPaymentsHandler) Handle(ctx context.Context, query *ListEventPaymentsQuery) ([]*PaymentView, error) {
	if query == nil {
		return nil, errors.NewValidationError("query cannot be nil")
	}
	eventID, err := valueobject.NewEventID(query.EventID)
	if err != nil {
		return nil, errors.NewInvalidFieldError(err)
	}

	payments, err := h.payments.ListByEvent(ctx, eventID.String())
	if err != nil {
		return nil, err
	}
	return toPaymentViews(payments), nil
}

// ListPendingPaymentsQuery selects preliminary payments never confirmed.
// OlderThan skips payments recorded more recently than that. Age is taken
// from the stored creation time, not the client-supplied payment date.
type ListPendingPaymentsQuery struct {
	OlderThan time.Duration
}

// ListPendingPaymentsHandler feeds reconciliation reports
type ListPendingPaymentsHandler struct {
	payments repository.PaymentRepository
	now      func() time.Time
}

func NewListPendingPaymentsHandler(payments repository.PaymentRepository) *ListPendingPaymentsHandler {
	return &ListPendingPaymentsHandler{payments: payments, now: time.Now}
}

func (h *ListPendingPaymentsHandler) Handle(ctx context.Context, query *ListPendingPaymentsQuery) ([]*PaymentView, error) {
	if query == nil {
		query = &ListPendingPaymentsQuery{}
	}
	payments, err := h.payments.ListPending(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := h.now().Add(-query.OlderThan)
	views := make([]*PaymentView, 0, len(payments))
	for _, p := range payments {
		if query.OlderThan > 0 && p.CreatedAt().After(cutoff) {
			continue
		}
		views = append(views, toPaymentView(p))
	}
	return views, nil
}
