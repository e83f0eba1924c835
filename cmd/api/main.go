package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tagsentry/tagsentry/internal/api/handlers"
	"github.com/tagsentry/tagsentry/internal/api/router"
	"github.com/tagsentry/tagsentry/internal/config"
	"github.com/tagsentry/tagsentry/internal/discovery"
	"github.com/tagsentry/tagsentry/internal/discovery/aws"
	"github.com/tagsentry/tagsentry/internal/pkg/logger"
	"github.com/tagsentry/tagsentry/internal/pkg/validator"
	"github.com/tagsentry/tagsentry/internal/repository/sqlite"
	"github.com/tagsentry/tagsentry/internal/services"
	"github.com/tagsentry/tagsentry/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Repositories
	accountRepo := sqlite.NewAccountRepository(db)
	policyRepo := sqlite.NewPolicyRepository(db)
	resourceRepo := sqlite.NewResourceRepository(db)
	violationRepo := sqlite.NewViolationRepository(db)
	scanRepo := sqlite.NewScanJobRepository(db)
	scopeRepo := sqlite.NewScopeRepository(db)

	// Discovery providers
	registry := discovery.NewRegistry()
	registry.Register(aws.NewS3BucketProvider())
	registry.Register(aws.NewVPCProvider())
	registry.Register(aws.NewHostedZoneProvider())

	// Services
	authz := services.NewAuthorizer(accountRepo)
	evaluator := services.NewEvaluatorService(violationRepo, log)
	reconciler := services.NewReconcilerService(accountRepo, resourceRepo, scopeRepo, log)
	scanner := services.NewScannerService(
		accountRepo, policyRepo, resourceRepo, scanRepo, scopeRepo,
		registry, evaluator, reconciler, authz, log,
	)
	accountSvc := services.NewAccountService(accountRepo, log)
	policySvc := services.NewPolicyService(policyRepo, log)
	violationSvc := services.NewViolationService(violationRepo, authz, log)

	// HTTP layer
	v := validator.New()
	h := &router.Handlers{
		Health:    handlers.NewHealthHandler(db),
		Account:   handlers.NewAccountHandler(accountSvc, v, log),
		Policy:    handlers.NewPolicyHandler(policySvc, v, log),
		Scan:      handlers.NewScanHandler(scanner, log),
		Violation: handlers.NewViolationHandler(violationSvc, log),
		Resource:  handlers.NewResourceHandler(resourceRepo, log),
		Scope:     handlers.NewScopeHandler(scopeRepo, v, log),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Scheduler
	var scheduler *worker.ScanScheduler
	if cfg.Scan.SchedulerEnabled {
		scheduler = worker.NewScanScheduler(scanner, accountRepo, cfg.Scan.Schedule, log)
		if err := scheduler.Start(ctx); err != nil {
			log.Fatalf("failed to start scan scheduler: %v", err)
		}
	}

	go func() {
		log.Infof("HTTP server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	cancel()
	if scheduler != nil {
		scheduler.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.ErrorWithErr(err, "Forced shutdown")
	}
}
