package badges

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procureflow/procureflow/internal/platform/httpx"
	"github.com/procureflow/procureflow/internal/shared"
)

// Handler serves the navigation badge counts.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers the badge route on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleAdmin, shared.RoleVendor, shared.RoleCompany))
		r.Get("/badges", h.getCounts)
	})
}

func (h *Handler) getCounts(w http.ResponseWriter, r *http.Request) {
	actor := shared.ActorFromContext(r.Context())
	token := shared.TokenFromContext(r.Context())
	if actor == nil || token == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in to continue")
		return
	}
	counts, err := h.service.Counts(r.Context(), token, actor.Role)
	if err != nil {
		h.logger.Warn("load badge counts", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Request Failed", "failed to load pending counts")
		return
	}
	httpx.JSON(w, http.StatusOK, counts)
}
