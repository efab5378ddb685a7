package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praxis-compliance/praxis/internal/auth"
	"github.com/praxis-compliance/praxis/internal/authz"
	"github.com/praxis-compliance/praxis/internal/clients"
	"github.com/praxis-compliance/praxis/internal/documents"
	"github.com/praxis-compliance/praxis/internal/filings"
	"github.com/praxis-compliance/praxis/internal/observability"
	"github.com/praxis-compliance/praxis/internal/servicerequests"
	"github.com/praxis-compliance/praxis/internal/shared"
	"github.com/praxis-compliance/praxis/internal/users"
	"github.com/praxis-compliance/praxis/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger                *slog.Logger
	Config                *Config
	SessionManager        *shared.SessionManager
	Guard                 *authz.Guard
	AuthHandler           *auth.Handler
	ClientsHandler        *clients.Handler
	DocumentsHandler      *documents.Handler
	FilingsHandler        *filings.Handler
	ServiceRequestHandler *servicerequests.Handler
	UsersHandler          *users.Handler
	JobHandler            *jobs.Handler
	Pool                  *pgxpool.Pool
	Metrics               *observability.Metrics
}

// NewRouter constructs the chi.Router with Praxis defaults. Everything
// except /auth, /healthz and /metrics sits behind the guard chain.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := params.Pool.Ping(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	r.Group(func(r chi.Router) {
		r.Use(params.Guard.Authenticate)
		if params.ClientsHandler != nil {
			r.Route("/clients", params.ClientsHandler.MountRoutes)
		}
		if params.DocumentsHandler != nil {
			r.Route("/documents", params.DocumentsHandler.MountRoutes)
		}
		if params.FilingsHandler != nil {
			r.Route("/filings", params.FilingsHandler.MountRoutes)
		}
		if params.ServiceRequestHandler != nil {
			r.Route("/service-requests", params.ServiceRequestHandler.MountRoutes)
		}
		if params.UsersHandler != nil {
			r.Route("/users", params.UsersHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.Guard.RequireRoles(authz.RoleSuperAdmin, authz.RoleFirmAdmin))
				params.JobHandler.MountRoutes(r)
			})
		}
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
