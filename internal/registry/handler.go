package registry

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procureflow/procureflow/internal/platform/httpx"
	"github.com/procureflow/procureflow/internal/shared"
)

// ErrReasonRequired is returned when a rejection carries no reason.
var ErrReasonRequired = errors.New("a reason is required when rejecting")

// Handler exposes the admin approval queue as JSON endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers registry routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleAdmin))
		r.Get("/registry/pending", h.listPending)
		r.Post("/registry/{kind}/{id}/decision", h.decide)
	})
}

func (h *Handler) listPending(w http.ResponseWriter, r *http.Request) {
	queue, err := h.service.Pending(r.Context())
	if err != nil {
		h.logger.Warn("load registry queue", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Request Failed", "failed to load pending submissions")
		return
	}
	httpx.JSON(w, http.StatusOK, queue)
}

type decisionRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return
	}
	kind := Kind(chi.URLParam(r, "kind"))
	err := h.service.Decide(r.Context(), kind, chi.URLParam(r, "id"), req.Approve, req.Reason)
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, ErrReasonRequired):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, shared.ErrSessionMissing):
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in to continue")
	default:
		h.logger.Warn("registry decision", slog.String("kind", string(kind)), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Request Failed", err.Error())
	}
}
