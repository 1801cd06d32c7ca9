package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/procureflow/procureflow/internal/platform/httpx"
	"github.com/procureflow/procureflow/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/logout", h.handleLogout)
	r.Get("/auth/me", h.handleMe)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Payload", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "email and password are required")
		return
	}

	result, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrSessionMissing)
		return
	}
	sess.SetToken(result.Token)
	sess.SetProfile(&result.Profile)
	if err := h.sessionManager.Commit(r.Context(), w, r, sess); err != nil {
		h.logger.Error("commit session", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result.Profile)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if token := sess.Token(); token != "" {
		if err := h.service.Revoke(r.Context(), token); err != nil {
			h.logger.Warn("revoke token upstream", slog.Any("error", err))
		}
	}
	h.sessionManager.Destroy(sess)
	if err := h.sessionManager.Commit(r.Context(), w, r, sess); err != nil {
		h.logger.Error("commit session", slog.Any("error", err))
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMe refreshes and returns the signed-in actor's profile so the UI
// sees up-to-date monthly spend after each placement.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.Token() == "" {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in to continue")
		return
	}
	profile, err := h.service.RefreshProfile(r.Context(), sess.Token())
	if err != nil {
		h.logger.Warn("refresh profile", slog.Any("error", err))
		if cached := sess.Profile(); cached != nil {
			httpx.JSON(w, http.StatusOK, cached)
			return
		}
		httpx.Problem(w, http.StatusBadGateway, "Request Failed", "failed to load profile")
		return
	}
	sess.SetProfile(&profile)
	if err := h.sessionManager.Commit(r.Context(), w, r, sess); err != nil {
		h.logger.Error("commit session", slog.Any("error", err))
	}
	httpx.JSON(w, http.StatusOK, profile)
}
