// Package api assembles the HTTP surface of the planner.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api/handlers"
	custommiddleware "github.com/ndewijer/Investment-Planner-Backend/internal/api/middleware"
	"github.com/ndewijer/Investment-Planner-Backend/internal/config"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
)

// Services are the service dependencies of the router.
type Services struct {
	System       *service.SystemService
	Portfolio    *service.PortfolioService
	Contribution *service.ContributionService
	Projection   *service.ProjectionService
	Dividend     *service.DividendService
	Summary      *service.SummaryService
}

// NewRouter creates and configures the HTTP router.
//
// Writes to stored data require an API key and time token when
// cfg.Auth.APIKey is set. The allocation and projection endpoints store
// nothing and stay open.
func NewRouter(svcs Services, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(custommiddleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS middleware
	corsMiddleware := custommiddleware.NewCORS(cfg.CORS.AllowedOrigins)
	r.Use(corsMiddleware.Handler)

	if cfg.RateLimit.RPS > 0 {
		r.Use(custommiddleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Handler)
	}

	protected := func(r chi.Router) chi.Router { return r }
	if cfg.Auth.APIKey != "" {
		guard := custommiddleware.RequireAPIKey(cfg.Auth.APIKey)
		protected = func(r chi.Router) chi.Router { return r.With(guard) }
	}

	systemHandler := handlers.NewSystemHandler(svcs.System)
	portfolioHandler := handlers.NewPortfolioHandler(svcs.Portfolio, svcs.Contribution, svcs.Projection, svcs.Dividend)
	contributionHandler := handlers.NewContributionHandler(svcs.Contribution)
	summaryHandler := handlers.NewSummaryHandler(svcs.Summary, svcs.Portfolio)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/system", func(r chi.Router) {
			r.Get("/health", systemHandler.Health)
			r.Get("/version", systemHandler.Version)
		})

		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", portfolioHandler.Portfolios)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", portfolioHandler.GetPortfolio)
				r.Get("/projection", portfolioHandler.Projection)
				r.Get("/dividends", portfolioHandler.Dividends)
				r.Get("/contribution", portfolioHandler.Contributions)

				protected(r).Delete("/", portfolioHandler.DeletePortfolio)
				protected(r).Put("/assets", portfolioHandler.UpdateAssets)
				protected(r).Put("/monthly-contribution", portfolioHandler.UpdateMonthlyContribution)
				protected(r).Post("/reconcile", portfolioHandler.Reconcile)
			})
		})

		r.Route("/contribution", func(r chi.Router) {
			r.Get("/", contributionHandler.AllContributions)
			r.Post("/distribute", contributionHandler.Distribute)

			protected(r).Post("/", contributionHandler.CreateContribution)
			protected(r).Post("/distribute/commit", contributionHandler.CommitDistribution)

			r.Route("/{uuid}", func(r chi.Router) {
				r.Use(custommiddleware.ValidateUUIDMiddleware)
				r.Get("/", contributionHandler.GetContribution)

				protected(r).Put("/", contributionHandler.UpdateContribution)
				protected(r).Delete("/", contributionHandler.DeleteContribution)
			})
		})

		r.Route("/projection", func(r chi.Router) {
			r.Get("/scenarios", handlers.ScenariosList)
			r.Post("/simulate", handlers.Simulate)
		})

		r.Route("/allocation", func(r chi.Router) {
			r.Post("/total", handlers.SetAllocationTotal)
			r.Post("/asset", handlers.UpsertAllocationAsset)
			r.Post("/remove", handlers.RemoveAllocationAsset)
			r.Post("/normalize", handlers.NormalizeAllocation)
			r.Post("/recalculate", handlers.RecalculateAllocation)
			r.Post("/reorder", handlers.ReorderAllocation)
			r.Post("/validate", handlers.ValidateAllocation)
		})

		r.Get("/summary", summaryHandler.Summary)
		r.Get("/summary/alerts", summaryHandler.Alerts)
		r.Get("/export", summaryHandler.Export)
	})

	return r
}
