package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/peopleops/leaveledger/internal/adapter/http/handler"
	"github.com/peopleops/leaveledger/internal/adapter/http/middleware"
	"github.com/peopleops/leaveledger/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	BalanceHandler     *handler.BalanceHandler
	TimeOffHandler     *handler.TimeOffHandler
	AssignmentHandler  *handler.AssignmentHandler
	ContractEndHandler *handler.ContractEndHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	RateLimiter        *middleware.RateLimiter
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Ledger
		r.Route("/balances", func(r chi.Router) {
			r.Post("/adjustments", cfg.BalanceHandler.CreateAdjustment)
			r.Get("/{id}", cfg.BalanceHandler.Get)
		})

		// Employee-scoped reads
		r.Route("/employees/{employeeID}", func(r chi.Router) {
			r.Get("/categories/{categoryID}/balances", cfg.BalanceHandler.List)
			r.Get("/categories/{categoryID}/overview", cfg.BalanceHandler.Overview)

			r.Post("/contract-end", cfg.ContractEndHandler.Apply)
			r.Put("/contract-end", cfg.ContractEndHandler.Move)
			r.Delete("/contract-end", cfg.ContractEndHandler.Remove)
		})

		// Time offs
		r.Route("/time-offs", func(r chi.Router) {
			r.Post("/", cfg.TimeOffHandler.Create)
			r.Post("/{id}/approve", cfg.TimeOffHandler.Approve)
			r.Post("/{id}/decline", cfg.TimeOffHandler.Decline)
		})

		// Policy assignments
		r.Route("/assignments", func(r chi.Router) {
			r.Post("/", cfg.AssignmentHandler.Create)
			r.Put("/{id}", cfg.AssignmentHandler.Update)
			r.Delete("/{id}", cfg.AssignmentHandler.Destroy)
		})
	})

	return r
}
