package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"pagos-service/internal/application/command"
	"pagos-service/internal/application/query"
	"pagos-service/internal/application/services"
	"pagos-service/pkg/errors"
	"pagos-service/pkg/middleware"
	"pagos-service/pkg/response"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// PagosController exposes payment methods and payments under /api/Pagos
type PagosController struct {
	methods  *services.PaymentMethodService
	payments *services.PaymentService

	getMethod        *query.GetPaymentMethodHandler
	listOwnerMethods *query.ListOwnerPaymentMethodsHandler
	listAllMethods   *query.ListAllPaymentMethodsHandler
	defaultConflicts *query.FindDefaultConflictsHandler
	getPayment       *query.GetPaymentHandler
	listOwnerPays    *query.ListOwnerPaymentsHandler
	listEventPays    *query.ListEventPaymentsHandler
	listPending      *query.ListPendingPaymentsHandler
}

// QueryHandlers groups the read side used by the controller
type QueryHandlers struct {
	GetMethod        *query.GetPaymentMethodHandler
	ListOwnerMethods *query.ListOwnerPaymentMethodsHandler
	ListAllMethods   *query.ListAllPaymentMethodsHandler
	DefaultConflicts *query.FindDefaultConflictsHandler
	GetPayment       *query.GetPaymentHandler
	ListOwnerPays    *query.ListOwnerPaymentsHandler
	ListEventPays    *query.ListEventPaymentsHandler
	ListPending      *query.ListPendingPaymentsHandler
}

func NewPagosController(methods *services.PaymentMethodService, payments *services.PaymentService, queries QueryHandlers) *PagosController {
	return &PagosController{
		methods:          methods,
		payments:         payments,
		getMethod:        queries.GetMethod,
		listOwnerMethods: queries.ListOwnerMethods,
		listAllMethods:   queries.ListAllMethods,
		defaultConflicts: queries.DefaultConflicts,
		getPayment:       queries.GetPayment,
		listOwnerPays:    queries.ListOwnerPays,
		listEventPays:    queries.ListEventPays,
		listPending:      queries.ListPending,
	}
}

// Routes registers the controller's endpoints. adminOnly guards the
// endpoints that read every owner's records.
func (c *PagosController) Routes(r chi.Router, adminOnly func(http.Handler) http.Handler) {
	r.Post("/agregarMPago", c.AddPaymentMethod)
	r.Delete("/eliminarMPago", c.DeletePaymentMethod)
	r.Get("/getMPagoPorIdMPago", c.GetPaymentMethod)
	r.Get("/getMPagoPorIdUsuario", c.ListOwnerPaymentMethods)
	r.Put("/actualizarMPagoPredeterminado", c.SetDefaultPaymentMethod)
	r.Post("/agregarPago", c.AddPayment)
	r.Get("/getPagoPorId", c.GetPayment)
	r.Get("/getPagosPorIdUsuario", c.ListOwnerPayments)
	r.Get("/getPagosPorIdEvento", c.ListEventPayments)

	r.Group(func(r chi.Router) {
		if adminOnly != nil {
			r.Use(adminOnly)
		}
		r.Get("/getTodosMPago", c.ListAllPaymentMethods)
		r.Get("/getPagosPendientes", c.ListPendingPayments)
		r.Get("/getConflictosPredeterminado", c.ListDefaultConflicts)
	})
}

type addPaymentMethodRequest struct {
	OwnerID      string `json:"idUsuario"`
	OwnerEmail   string `json:"correoUsuario"`
	GatewayToken string `json:"idMPagoStripe"`
}

type addPaymentRequest struct {
	PaymentMethodID string          `json:"idMPago"`
	OwnerID         string          `json:"idUsuario"`
	ReservationID   string          `json:"idReserva"`
	EventID         string          `json:"idEvento"`
	Amount          decimal.Decimal `json:"monto"`
	PaidAt          time.Time       `json:"fechaPago"`
}

type createdResponse struct {
	ID string `json:"id"`
}

// AddPaymentMethod handles POST /agregarMPago
func (c *PagosController) AddPaymentMethod(w http.ResponseWriter, r *http.Request) {
	var req addPaymentMethodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.SendBadRequest(w, r, "Invalid request body")
		return
	}
	req.OwnerID = ownerOrCaller(r, req.OwnerID)
	if missing := missingFields(map[string]string{"idUsuario": req.OwnerID, "correoUsuario": req.OwnerEmail}); missing != "" {
		response.SendBadRequest(w, r, missing+" is required")
		return
	}

	id, err := c.methods.AddPaymentMethod(r.Context(), &command.AddPaymentMethodCommand{
		OwnerID:      req.OwnerID,
		OwnerEmail:   req.OwnerEmail,
		GatewayToken: req.GatewayToken,
	})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendCreated(w, r, createdResponse{ID: id})
}

// DeletePaymentMethod handles DELETE /eliminarMPago?idMPago=
func (c *PagosController) DeletePaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredParam(w, r, "idMPago")
	if !ok {
		return
	}
	removed, err := c.methods.DeletePaymentMethod(r.Context(), &command.DeletePaymentMethodCommand{PaymentMethodID: id})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	if !removed {
		response.SendNotFound(w, r, "El MPago no pudo ser eliminado.")
		return
	}
	response.SendMessage(w, r, "MPago eliminado exitosamente.")
}

// GetPaymentMethod handles GET /getMPagoPorIdMPago?idMPago=
func (c *PagosController) GetPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredParam(w, r, "idMPago")
	if !ok {
		return
	}
	view, err := c.getMethod.Handle(r.Context(), &query.GetPaymentMethodQuery{PaymentMethodID: id})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, view)
}

// ListOwnerPaymentMethods handles GET /getMPagoPorIdUsuario?idUsuario=
func (c *PagosController) ListOwnerPaymentMethods(w http.ResponseWriter, r *http.Request) {
	owner, ok := requiredParam(w, r, "idUsuario")
	if !ok {
		return
	}
	views, err := c.listOwnerMethods.Handle(r.Context(), &query.ListOwnerPaymentMethodsQuery{OwnerID: owner})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, views)
}

// ListAllPaymentMethods handles GET /getTodosMPago
func (c *PagosController) ListAllPaymentMethods(w http.ResponseWriter, r *http.Request) {
	views, err := c.listAllMethods.Handle(r.Context())
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, views)
}

// SetDefaultPaymentMethod handles PUT /actualizarMPagoPredeterminado?idMPago=&idUsuario=
func (c *PagosController) SetDefaultPaymentMethod(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredParam(w, r, "idMPago")
	if !ok {
		return
	}
	owner := ownerOrCaller(r, r.URL.Query().Get("idUsuario"))
	if owner == "" {
		response.SendBadRequest(w, r, "idUsuario is required")
		return
	}
	err := c.methods.SetDefaultPaymentMethod(r.Context(), &command.SetDefaultPaymentMethodCommand{PaymentMethodID: id, OwnerID: owner})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendMessage(w, r, "MPago actualizado a predeterminado exitosamente.")
}

// AddPayment handles POST /agregarPago. The payment method id may come from
// the idMPago query parameter or the body.
func (c *PagosController) AddPayment(w http.ResponseWriter, r *http.Request) {
	var req addPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.SendBadRequest(w, r, "Invalid request body")
		return
	}
	if id := r.URL.Query().Get("idMPago"); id != "" {
		req.PaymentMethodID = id
	}
	req.OwnerID = ownerOrCaller(r, req.OwnerID)
	if missing := missingFields(map[string]string{
		"idMPago":   req.PaymentMethodID,
		"idUsuario": req.OwnerID,
		"idReserva": req.ReservationID,
		"idEvento":  req.EventID,
	}); missing != "" {
		response.SendBadRequest(w, r, missing+" is required")
		return
	}
	if req.PaidAt.IsZero() {
		req.PaidAt = time.Now().UTC()
	}

	id, err := c.payments.AddPayment(r.Context(), &services.AddPaymentRequest{
		PaymentMethodID: req.PaymentMethodID,
		OwnerID:         req.OwnerID,
		ReservationID:   req.ReservationID,
		EventID:         req.EventID,
		Amount:          req.Amount,
		PaidAt:          req.PaidAt,
	})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendCreated(w, r, createdResponse{ID: id})
}

// GetPayment handles GET /getPagoPorId?idPago=
func (c *PagosController) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := requiredParam(w, r, "idPago")
	if !ok {
		return
	}
	view, err := c.getPayment.Handle(r.Context(), &query.GetPaymentQuery{PaymentID: id})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, view)
}

// ListOwnerPayments handles GET /getPagosPorIdUsuario?idUsuario=
func (c *PagosController) ListOwnerPayments(w http.ResponseWriter, r *http.Request) {
	owner, ok := requiredParam(w, r, "idUsuario")
	if !ok {
		return
	}
	views, err := c.listOwnerPays.Handle(r.Context(), &query.ListOwnerPaymentsQuery{OwnerID: owner})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, views)
}

// ListEventPayments handles GET /getPagosPorIdEvento?idEvento=
func (c *PagosController) ListEventPayments(w http.ResponseWriter, r *http.Request) {
	eventID, ok := requiredParam(w, r, "idEvento")
	if !ok {
		return
	}
	views, err := c.listEventPays.Handle(r.Context(), &query.ListEventPaymentsQuery{EventID: eventID})
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, views)
}

// ListPendingPayments handles GET /getPagosPendientes?antiguedad=1h
func (c *PagosController) ListPendingPayments(w http.ResponseWriter, r *http.Request) {
	q := &query.ListPendingPaymentsQuery{}
	if raw := r.URL.Query().Get("antiguedad"); raw != "" {
		age, err := time.ParseDuration(raw)
		if err != nil || age < 0 {
			middleware.HandleError(w, r, errors.NewValidationError("antiguedad must be a non-negative duration"))
			return
		}
		q.OlderThan = age
	}
	views, err := c.listPending.Handle(r.Context(), q)
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, views)
}

// ListDefaultConflicts handles GET /getConflictosPredeterminado
func (c *PagosController) ListDefaultConflicts(w http.ResponseWriter, r *http.Request) {
	conflicts, err := c.defaultConflicts.Handle(r.Context())
	if err != nil {
		middleware.HandleError(w, r, err)
		return
	}
	response.SendSuccess(w, r, conflicts)
}

func requiredParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		response.SendBadRequest(w, r, name+" is required")
		return "", false
	}
	return v, true
}

// ownerOrCaller falls back to the authenticated caller when no owner is given.
func ownerOrCaller(r *http.Request, owner string) string {
	if strings.TrimSpace(owner) != "" {
		return owner
	}
	caller, _ := middleware.GetUserIDFromContext(r.Context())
	return caller
}

// missingFields names the first empty field in a stable order.
func missingFields(fields map[string]string) string {
	for _, name := range []string{"idMPago", "idUsuario", "correoUsuario", "idReserva", "idEvento"} {
		if v, ok := fields[name]; ok && strings.TrimSpace(v) == "" {
			return name
		}
	}
	return ""
}
