package audit

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/procureflow/procureflow/internal/platform/httpx"
	"github.com/procureflow/procureflow/internal/shared"
)

// Handler exposes the recorded transition log for operator review.
type Handler struct {
	logger   *slog.Logger
	recorder *Recorder
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, recorder *Recorder) *Handler {
	return &Handler{logger: logger, recorder: recorder}
}

// MountRoutes registers audit routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(shared.RequireRole(shared.RoleAdmin))
		r.Get("/audit/{entity}/{id}", h.listTransitions)
	})
}

func (h *Handler) listTransitions(w http.ResponseWriter, r *http.Request) {
	entries, err := h.recorder.List(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "id"))
	if err != nil {
		h.logger.Error("list transitions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entries)
}
