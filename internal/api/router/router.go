package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tagsentry/tagsentry/internal/api/handlers"
	"github.com/tagsentry/tagsentry/internal/api/middleware"
	"github.com/tagsentry/tagsentry/internal/config"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/metrics"
)

// Handlers bundles all HTTP handlers for route registration
type Handlers struct {
	Health    *handlers.HealthHandler
	Account   *handlers.AccountHandler
	Policy    *handlers.PolicyHandler
	Scan      *handlers.ScanHandler
	Violation *handlers.ViolationHandler
	Resource  *handlers.ResourceHandler
	Scope     *handlers.ScopeHandler
}

// New builds the chi router with the full middleware chain
func New(cfg *config.Config, log *logger.Logger, h *Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(middleware.RateLimit(cfg.Scan.RatePerSecond, cfg.Scan.RateBurst))
	r.Use(metrics.Middleware)

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get("/api/health", h.Health.Healthz)
		r.Get("/healthz", h.Health.Healthz)
		r.Get("/readyz", h.Health.Readyz)
		r.Handle("/metrics", metrics.Handler())
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.Auth.JWTSecret))

		r.Route("/api/accounts", func(r chi.Router) {
			r.Get("/", h.Account.List)
			r.Post("/", h.Account.Create)
			r.Get("/{id}", h.Account.Get)
			r.Delete("/{id}", h.Account.Delete)
			r.Patch("/{id}/status", h.Account.UpdateStatus)
			r.Get("/{id}/regions", h.Account.ListRegionScopes)
			r.Patch("/{id}/regions", h.Account.SetRegionScope)
			r.Post("/{id}/scans", h.Scan.Initiate)
			r.Get("/{id}/scans", h.Scan.ListByAccount)
			r.Get("/{id}/violations/summary", h.Violation.Summary)
		})

		r.Route("/api/scans", func(r chi.Router) {
			r.Get("/{id}", h.Scan.Get)
		})

		r.Route("/api/violations", func(r chi.Router) {
			r.Get("/", h.Violation.List)
			r.Get("/{id}", h.Violation.Get)
			r.Post("/{id}/ignore", h.Violation.Ignore)
			r.Post("/{id}/reopen", h.Violation.Reopen)
		})

		r.Route("/api/policies", func(r chi.Router) {
			r.Get("/", h.Policy.List)
			r.Post("/", h.Policy.Create)
			r.Get("/{id}", h.Policy.Get)
			r.Put("/{id}", h.Policy.Update)
			r.Patch("/{id}/enabled", h.Policy.SetEnabled)
			r.Delete("/{id}", h.Policy.Delete)
		})

		r.Get("/api/resources", h.Resource.List)

		r.Route("/api/scopes/resource-types", func(r chi.Router) {
			r.Get("/", h.Scope.ListResourceTypes)
			r.Patch("/", h.Scope.SetResourceType)
		})
	})

	return r
}
