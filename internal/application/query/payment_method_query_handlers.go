package query

import (
	"context"
	"sort"

	"pagos-service/internal/domain/repository"
	"pagos-service/internal/domain/valueobject"
	"pagos-service/pkg/errors"
)

// GetPaymentMethodQuery represents a query to get a payment method by ID
type GetPaymentMethodQuery struct {
	PaymentMethodID string `json:"idMPago"`
}

// GetPaymentMethodHandler handles get payment method queries
type GetPaymentMethodHandler struct {
	methods repository.PaymentMethodRepository
}

func NewGetPaymentMethodHandler(methods repository.PaymentMethodRepository) *GetPaymentMethodHandler {
	return &GetPaymentMethodHandler{methods: methods}
}

func (h *GetPaymentMethodHandler) Handle(ctx context.Context, query *GetPaymentMethodQuery) (*PaymentMethodView, error) {
	if query == nil {
		return nil, errors.NewValidationError("query cannot be nil")
	}
	id, err := valueobject.NewPaymentMethodID(query.PaymentMethodID)
	if err != nil {
		return nil, errors.NewInvalidFieldError(err)
	}

	method, err := h.methods.GetByID(ctx, id.String())
	if err != nil {
		return nil, err
	}
	if method == nil {
		return nil, errors.NewNotFoundError("payment method")
	}
	return toPaymentMethodView(method), nil
}

// ListOwnerPaymentMethodsQuery represents a query to list an owner's methods
type ListOwnerPaymentMethodsQuery struct {
	OwnerID string `json:"idUsuario"`
}

// ListOwnerPaymentMethodsHandler handles list owner payment methods queries
type ListOwnerPaymentMethodsHandler struct {
	methods repository.PaymentMethodRepository
}

func NewListOwnerPaymentMethodsHandler(methods repository.PaymentMethodRepository) *ListOwnerPaymentMethodsHandler {
	return &ListOwnerPaymentMethodsHandler{methods: methods}
}

// Handle reports an owner without methods as not found.
func (h *ListOwnerPaymentMethodsHandler) Handle(ctx context.Context, query *ListOwnerPaymentMethodsQuery) ([]*PaymentMethodView, error) {
	if query == nil {
		return nil, errors.NewValidationError("query cannot be nil")
	}
	ownerID, err := valueobject.NewOwnerID(query.OwnerID)
	if err != nil {
		return nil, errors.NewInvalidFieldError(err)
	}

	methods, err := h.methods.ListByOwner(ctx, ownerID.String())
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return nil, errors.NewNoMethodsForOwnerError(ownerID.String())
	}
	return toPaymentMethodViews(methods), nil
}

// ListAllPaymentMethodsHandler lists every stored method
type ListAllPaymentMethodsHandler struct {
	methods repository.PaymentMethodRepository
}

func NewListAllPaymentMethodsHandler(methods repository.PaymentMethodRepository) *ListAllPaymentMethodsHandler {
	return &ListAllPaymentMethodsHandler{methods: methods}
}

// Handle reports an empty store as not found.
func (h *ListAllPaymentMethodsHandler) Handle(ctx context.Context) ([]*PaymentMethodView, error) {
	methods, err := h.methods.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return nil, errors.NewNotFoundError("payment methods")
	}
	return toPaymentMethodViews(methods), nil
}

// FindDefaultConflictsHandler finds owners with more than one default method.
// It only reports; nothing is repaired.
type FindDefaultConflictsHandler struct {
	methods repository.PaymentMethodRepository
}

func NewFindDefaultConflictsHandler(methods repository.PaymentMethodRepository) *FindDefaultConflictsHandler {
	return &FindDefaultConflictsHandler{methods: methods}
}

func (h *FindDefaultConflictsHandler) Handle(ctx context.Context) ([]DefaultConflict, error) {
	methods, err := h.methods.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byOwner := make(map[string][]string)
	for _, m := range methods {
		if m.IsDefault() {
			byOwner[m.OwnerID()] = append(byOwner[m.OwnerID()], m.ID())
		}
	}

	conflicts := make([]DefaultConflict, 0)
	for owner, ids := range byOwner {
		if len(ids) > 1 {
			conflicts = append(conflicts, DefaultConflict{OwnerID: owner, PaymentMethodIDs: ids})
		}
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].OwnerID < conflicts[j].OwnerID })
	return conflicts, nil
}
