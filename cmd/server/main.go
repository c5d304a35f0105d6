package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/service"
	"github.com/hardhat-systems/siteledger/internal/config"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/persistence/repository"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/persistence/sqlite"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/worker"
	httpiface "github.com/hardhat-systems/siteledger/internal/interfaces/http"
	"github.com/hardhat-systems/siteledger/pkg/database"
	"github.com/hardhat-systems/siteledger/pkg/utils"
)

func main() {
	// Load .env overrides if present
	_ = gotenv.Load()

	configPath := os.Getenv("SITELEDGER_CONFIG")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting SiteLedger budget ledger engine",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	// Initialize database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.RunMigrations(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
		logger.Fatal("Failed to create export directory", zap.Error(err))
	}

	// Transaction manager shares the tx across repositories via the context
	txManager := sqlite.NewDB(db.DB, logger)

	// Repositories
	projectRepo := repository.NewProjectRepository(db.DB, logger)
	phaseRepo := repository.NewPhaseRepository(db.DB, logger)
	categoryRepo := repository.NewIndirectCategoryRepository(db.DB, logger)
	workerRepo := repository.NewWorkerRepository(db.DB, logger)
	workItemRepo := repository.NewWorkItemRepository(db.DB, logger)
	equipmentRepo := repository.NewEquipmentRepository(db.DB, logger)
	entryRepo := repository.NewLabourEntryRepository(db.DB, logger)
	batchRepo := repository.NewLabourBatchRepository(db.DB, logger)
	submissionRepo := repository.NewSubmissionRepository(db.DB, logger)
	summaryRepo := repository.NewSummaryRepository(db.DB, logger)
	auditRepo := repository.NewAuditRepository(db.DB, logger)

	// Application services
	serviceLogger := utils.NewZapAdapter(logger)
	validator := service.NewBudgetValidator(projectRepo, phaseRepo, categoryRepo, serviceLogger)
	coordinator := service.NewCoordinator(txManager, serviceLogger)
	reconciler := service.NewReconcileService(entryRepo, projectRepo, phaseRepo, categoryRepo, serviceLogger)
	propagator := service.NewStatusPropagator(workItemRepo, serviceLogger)
	summaryService := service.NewSummaryService(entryRepo, summaryRepo, serviceLogger)

	// Background refresh worker doubles as the refresh dispatcher
	refreshWorker := worker.NewRefreshWorker(
		worker.RefreshWorkerConfig{QueueSize: cfg.Refresher.QueueSize},
		propagator,
		summaryService,
		logger,
	)

	ledgerService := service.NewLedgerService(
		projectRepo, phaseRepo, categoryRepo, workerRepo, workItemRepo,
		equipmentRepo, entryRepo, validator, coordinator, reconciler,
		auditRepo, refreshWorker, cfg.Ledger, serviceLogger,
	)
	submissionService := service.NewSubmissionService(
		submissionRepo, batchRepo, entryRepo, projectRepo, phaseRepo,
		workerRepo, workItemRepo, equipmentRepo, validator, coordinator,
		reconciler, auditRepo, refreshWorker, cfg.Ledger, serviceLogger,
	)

	// Worker lifecycle
	workerManager := worker.NewManager(logger)
	workerManager.Register(refreshWorker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := workerManager.StartAll(ctx); err != nil {
		logger.Fatal("Failed to start workers", zap.Error(err))
	}

	// HTTP server
	server := httpiface.NewServer(cfg.Server, ledgerService, submissionService, summaryService, serviceLogger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			logger.Error("HTTP server failed", zap.Error(err))
		}
	}

	cancel()

	if err := workerManager.StopAll(); err != nil {
		logger.Error("Failed to stop workers", zap.Error(err))
	}
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop HTTP server", zap.Error(err))
	}

	logger.Info("SiteLedger stopped")
}
