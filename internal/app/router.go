package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/procureflow/procureflow/internal/audit"
	"github.com/procureflow/procureflow/internal/auth"
	"github.com/procureflow/procureflow/internal/badges"
	"github.com/procureflow/procureflow/internal/observability"
	"github.com/procureflow/procureflow/internal/pipeline"
	"github.com/procureflow/procureflow/internal/platform/httpx"
	"github.com/procureflow/procureflow/internal/registry"
	"github.com/procureflow/procureflow/internal/shared"
	"github.com/procureflow/procureflow/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	CSRFManager     *shared.CSRFManager
	AuthHandler     *auth.Handler
	PipelineHandler *pipeline.Handler
	BadgesHandler   *badges.Handler
	RegistryHandler *registry.Handler
	AuditHandler    *audit.Handler
	JobHandler      *jobs.Handler
	Metrics         *observability.Metrics
}

// NewRouter constructs the chi.Router with coordinator defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// The UI reads its CSRF token here once per session.
	r.Get("/csrf", func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		token, err := params.CSRFManager.EnsureToken(r.Context(), sess)
		if err != nil {
			params.Logger.Error("issue csrf token", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
	})

	params.AuthHandler.MountRoutes(r)
	params.PipelineHandler.MountRoutes(r)
	params.BadgesHandler.MountRoutes(r)
	if params.RegistryHandler != nil {
		params.RegistryHandler.MountRoutes(r)
	}
	if params.AuditHandler != nil {
		params.AuditHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
