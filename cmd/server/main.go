package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ndewijer/Investment-Planner-Backend/internal/api"
	"github.com/ndewijer/Investment-Planner-Backend/internal/config"
	"github.com/ndewijer/Investment-Planner-Backend/internal/database"
	"github.com/ndewijer/Investment-Planner-Backend/internal/logger"
	"github.com/ndewijer/Investment-Planner-Backend/internal/repository"
	"github.com/ndewijer/Investment-Planner-Backend/internal/scheduler"
	"github.com/ndewijer/Investment-Planner-Backend/internal/service"
	"github.com/ndewijer/Investment-Planner-Backend/internal/version"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.SetGlobalLogger(logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty}))
	log.Info().Str("version", version.Version).Msg("starting investment planner")

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create data directory")
		}
	}

	// Open database connection
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	log.Info().Str("path", cfg.Database.Path).Msg("connected to database")

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	// Create repositories
	portfolioRepo := repository.NewPortfolioRepository(db)
	contributionRepo := repository.NewContributionRepository(db)

	// Create services; writers of the same portfolio share one lock set.
	locks := service.NewPortfolioLocks()
	svcs := api.Services{
		System:       service.NewSystemService(db),
		Portfolio:    service.NewPortfolioService(portfolioRepo, contributionRepo, locks, cfg.Seed),
		Contribution: service.NewContributionService(portfolioRepo, contributionRepo, locks, cfg.Seed),
		Projection:   service.NewProjectionService(portfolioRepo, contributionRepo),
		Dividend:     service.NewDividendService(portfolioRepo, contributionRepo),
		Summary:      service.NewSummaryService(portfolioRepo, contributionRepo),
	}

	seeded, err := svcs.Portfolio.InitializePortfolios(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to seed portfolios")
	}
	if len(seeded) > 0 {
		log.Info().Int("portfolios", len(seeded)).Msg("seeded initial portfolios")
	}

	// Background jobs
	sched := scheduler.New(log.Logger)
	if err := sched.AddJob(cfg.Scheduler.ReconcileSchedule, scheduler.NewReconcileJob(svcs.Portfolio, log.Logger)); err != nil {
		log.Fatal().Err(err).Msg("failed to register reconcile job")
	}
	if err := sched.AddJob(cfg.Scheduler.AlertSchedule, scheduler.NewAlertJob(svcs.Summary, log.Logger)); err != nil {
		log.Fatal().Err(err).Msg("failed to register alert job")
	}
	sched.Start()
	defer sched.Stop()

	if cfg.Auth.APIKey == "" {
		log.Warn().Msg("INTERNAL_API_KEY is not set, write endpoints are unauthenticated")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(svcs, cfg),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
