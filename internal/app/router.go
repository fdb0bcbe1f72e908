package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/membership/internal/auth"
	"github.com/odyssey-erp/membership/internal/observability"
	"github.com/odyssey-erp/membership/internal/platform/httpx"
	"github.com/odyssey-erp/membership/internal/users"
	"github.com/odyssey-erp/membership/jobs"
)

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger        *slog.Logger
	Config        *Config
	AuthHandler   *auth.Handler
	Authenticator auth.Authenticator
	UsersHandler  *users.Handler
	JobHandler    *jobs.Handler
	Metrics       *observability.Metrics
	// Readiness names the dependencies checked by /readyz.
	Readiness map[string]Pinger
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// NewRouter constructs the chi.Router with the API routes.
func NewRouter(params RouterParams) http.Handler {
	if params.Logger == nil {
		params.Logger = slog.Default()
	}
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusNotFound, "Not Found.")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Message(w, http.StatusMethodNotAllowed, "Method Not Allowed.")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, readiness{Status: "ok"})
	})
	r.Get("/readyz", readyHandler(params.Logger, params.Readiness))

	if params.AuthHandler != nil {
		loginLimit := 10
		if params.Config != nil && params.Config.LoginRateLimitPerMinute > 0 {
			loginLimit = params.Config.LoginRateLimitPerMinute
		}
		r.Group(func(r chi.Router) {
			r.Use(RateLimit(loginLimit))
			params.AuthHandler.MountRoutes(r)
		})
	}
	if params.UsersHandler != nil {
		r.Route("/users", func(r chi.Router) {
			r.Use(params.Authenticator.Require)
			params.UsersHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}

func readyHandler(logger *slog.Logger, checks map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		body := readiness{Status: "ok", Checks: make(map[string]string, len(checks))}
		status := http.StatusOK
		for name, pinger := range checks {
			if pinger == nil {
				continue
			}
			if err := pinger.Ping(ctx); err != nil {
				logger.Warn("readiness check failed", slog.String("check", name), slog.Any("error", err))
				body.Checks[name] = "unavailable"
				body.Status = "unavailable"
				status = http.StatusServiceUnavailable
				continue
			}
			body.Checks[name] = "ok"
		}
		httpx.JSON(w, status, body)
	}
}
