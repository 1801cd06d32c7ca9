package pipeline

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/procureflow/procureflow/internal/gateway"
	"github.com/procureflow/procureflow/internal/platform/httpx"
	"github.com/procureflow/procureflow/internal/shared"
)

// Handler exposes the fulfillment operations as JSON endpoints.
type Handler struct {
	logger        *slog.Logger
	service       *Service
	validator     *validator.Validate
	gatewaySecret string
}

// NewHandler constructs a Handler instance. The gateway secret may be empty;
// when set it enables a local signature sanity check on payment callbacks.
func NewHandler(logger *slog.Logger, service *Service, gatewaySecret string) *Handler {
	return &Handler{
		logger:        logger,
		service:       service,
		validator:     validator.New(),
		gatewaySecret: gatewaySecret,
	}
}

// MountRoutes registers pipeline routes on the provided router. Role gates
// mirror who performs each step: companies place orders and pay, vendors
// review orders and issue challans, admins invoice and decide escalations.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleCompany))
		r.Post("/orders", h.placeOrder)
		r.Post("/escalations", h.requestEscalation)
		r.Post("/invoices/{id}/payment", h.initiatePayment)
		r.Post("/invoices/{id}/payment/verify", h.verifyPayment)
	})

	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleVendor))
		r.Post("/orders/{id}/approve", h.approveOrder)
		r.Post("/orders/{id}/reject", h.rejectOrder)
		r.Post("/orders/{id}/challan", h.createChallan)
	})

	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleAdmin))
		r.Post("/invoices", h.createInvoice)
		r.Delete("/invoices/{id}", h.deleteInvoice)
		r.Post("/escalations/{id}/decision", h.decideEscalation)
		r.Patch("/orders/{id}/delivery-partner", h.assignDeliveryPartner)
		r.Delete("/orders/{id}/delivery-partner", h.removeDeliveryPartner)
	})

	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleAdmin, shared.RoleVendor, shared.RoleCompany))
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Get("/orders/{id}/next-operations", h.nextOperations)
		r.Get("/invoices", h.listInvoices)
		r.Get("/escalations", h.listEscalations)
	})
}

// respondErr maps the pipeline error taxonomy onto HTTP statuses.
func (h *Handler) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation   *ValidationError
		request      *RequestFailure
		verification *PaymentVerificationFailure
	)
	switch {
	case errors.Is(err, ErrEscalationRequired):
		httpx.Problem(w, http.StatusConflict, "Escalation Required", err.Error())
	case errors.As(err, &validation):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", validation.Reason)
	case errors.As(err, &verification):
		h.logger.Error("payment verification failed",
			slog.String("invoice_id", verification.InvoiceID),
			slog.String("message", verification.Message))
		httpx.Problem(w, http.StatusPaymentRequired, "Payment Verification Failed", verification.Message)
	case errors.As(err, &request):
		status := http.StatusBadGateway
		switch request.Status {
		case http.StatusForbidden, http.StatusNotFound, http.StatusConflict:
			status = request.Status
		}
		h.logger.Warn("backend request failed",
			slog.String("operation", string(request.Op)),
			slog.Int("backend_status", request.Status))
		httpx.Problem(w, status, "Request Failed", request.Message)
	case errors.Is(err, shared.ErrSessionMissing):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in to continue")
	default:
		h.logger.Error("pipeline request", slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := httpx.DecodeJSON(r, target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return false
	}
	if err := h.validator.Struct(target); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return false
	}
	return true
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var input PlaceOrderInput
	if !h.decode(w, r, &input) {
		return
	}
	order, err := h.service.PlaceOrder(r.Context(), input)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) requestEscalation(w http.ResponseWriter, r *http.Request) {
	var input CreateEscalationInput
	if !h.decode(w, r, &input) {
		return
	}
	escalation, err := h.service.RequestEscalation(r.Context(), input)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, escalation)
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) decideEscalation(w http.ResponseWriter, r *http.Request) {
	var input decisionRequest
	if !h.decode(w, r, &input) {
		return
	}
	decision, err := h.service.DecideEscalation(r.Context(), chi.URLParam(r, "id"), input.Approve, input.Message)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, decision)
}

func (h *Handler) approveOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.VendorApprove(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

type rejectRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *Handler) rejectOrder(w http.ResponseWriter, r *http.Request) {
	var input rejectRequest
	if !h.decode(w, r, &input) {
		return
	}
	order, err := h.service.VendorReject(r.Context(), chi.URLParam(r, "id"), input.Reason)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) createChallan(w http.ResponseWriter, r *http.Request) {
	challan, err := h.service.CreateChallan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, challan)
}

func (h *Handler) createInvoice(w http.ResponseWriter, r *http.Request) {
	var input CreateInvoiceInput
	if !h.decode(w, r, &input) {
		return
	}
	invoice, err := h.service.CreateInvoice(r.Context(), input)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, invoice)
}

func (h *Handler) deleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteInvoice(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondErr(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) initiatePayment(w http.ResponseWriter, r *http.Request) {
	session, err := h.service.InitiatePayment(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, session)
}

func (h *Handler) verifyPayment(w http.ResponseWriter, r *http.Request) {
	var input VerifyPaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return
	}
	input.InvoiceID = chi.URLParam(r, "id")
	if err := h.validator.Struct(&input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	// Early warning only; the backend's verdict is the one that counts.
	if h.gatewaySecret != "" && !gateway.VerifySignature(h.gatewaySecret, input.Callback) {
		h.logger.Warn("callback signature mismatch", slog.String("invoice_id", input.InvoiceID))
	}
	invoice, err := h.service.VerifyPayment(r.Context(), input)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoice)
}

type assignPartnerRequest struct {
	PartnerID string `json:"partnerId" validate:"required"`
}

func (h *Handler) assignDeliveryPartner(w http.ResponseWriter, r *http.Request) {
	var input assignPartnerRequest
	if !h.decode(w, r, &input) {
		return
	}
	order, err := h.service.AssignDeliveryPartner(r.Context(), chi.URLParam(r, "id"), input.PartnerID)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) removeDeliveryPartner(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.RemoveDeliveryPartner(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListOrders(r.Context(), OrderStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, orders)
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.service.ListInvoices(r.Context(), InvoiceStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, invoices)
}

func (h *Handler) listEscalations(w http.ResponseWriter, r *http.Request) {
	escalations, err := h.service.ListEscalations(r.Context(), EscalationStatus(r.URL.Query().Get("status")))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, escalations)
}

// nextOperations reports the operations legal from the order's current
// composite state so the UI renders exactly the actions that can succeed.
// The state is derived from the full order/challan/invoice triple.
func (h *Handler) nextOperations(w http.ResponseWriter, r *http.Request) {
	state, operations, err := h.service.PipelineState(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"state":      state,
		"operations": operations,
	})
}
