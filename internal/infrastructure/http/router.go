package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/ngjiaxun/platter/internal/infrastructure/http/handlers"
	"github.com/ngjiaxun/platter/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	EntitiesHandler    *handlers.EntitiesHandler
	InvitationsHandler *handlers.InvitationsHandler
	HealthHandler      *handlers.HealthHandler
	RequireJWT         func(http.Handler) http.Handler // JWT auth for everything under /entities and /invitations
	Log                zerolog.Logger
	Secure             func(http.Handler) http.Handler
	IPRateLimit        func(http.Handler) http.Handler
	UserRateLimit      func(http.Handler) http.Handler
	Metrics            bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	if cfg.RequireJWT != nil {
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			if cfg.UserRateLimit != nil {
				r.Use(cfg.UserRateLimit)
			}
			r.Use(chimid.AllowContentType("application/json"))

			r.Route("/entities/{type}", func(r chi.Router) {
				r.Get("/", cfg.EntitiesHandler.List)
				r.Post("/", cfg.EntitiesHandler.Create)
				r.Get("/{id}", cfg.EntitiesHandler.Get)
				r.Put("/{id}", cfg.EntitiesHandler.Update)
				r.Delete("/{id}", cfg.EntitiesHandler.Delete)
				r.Get("/{id}/members", cfg.EntitiesHandler.Members)
			})

			r.Route("/invitations", func(r chi.Router) {
				r.Post("/", cfg.InvitationsHandler.Create)
				r.Get("/", cfg.InvitationsHandler.List)
				r.Post("/{id}/accept", cfg.InvitationsHandler.Accept)
				r.Post("/{id}/reject", cfg.InvitationsHandler.Reject)
				r.Delete("/{id}", cfg.InvitationsHandler.Cancel)
			})
		})
	}

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
