// ledgerctl is the operator CLI: manual reconciliation of budget scopes and
// spreadsheet export of cost summaries, against the same database and
// configuration as the server.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/service"
	"github.com/hardhat-systems/siteledger/internal/config"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/export"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/persistence/repository"
	"github.com/hardhat-systems/siteledger/pkg/database"
	"github.com/hardhat-systems/siteledger/pkg/utils"
)

var (
	configPath string

	projectID  int64
	phaseID    int64
	categoryID int64
	outputPath string
)

func main() {
	_ = gotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operator tooling for the SiteLedger budget ledger",
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config file")

	reconcileCmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute a scope's actual spending from its committed entries",
		RunE:  runReconcile,
	}
	reconcileCmd.Flags().Int64Var(&projectID, "project", 0, "project id")
	reconcileCmd.Flags().Int64Var(&phaseID, "phase", 0, "phase id (optional)")
	reconcileCmd.Flags().Int64Var(&categoryID, "category", 0, "indirect category id (optional)")
	reconcileCmd.MarkFlagRequired("project")

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export a project's cost summaries to an xlsx workbook",
		RunE:  runExport,
	}
	exportCmd.Flags().Int64Var(&projectID, "project", 0, "project id")
	exportCmd.Flags().StringVar(&outputPath, "out", "", "output file path (default under export.output_dir)")
	exportCmd.MarkFlagRequired("project")

	rootCmd.AddCommand(reconcileCmd, exportCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// env opens the configured database and returns the shared dependencies
func env() (*config.Config, *zap.Logger, *database.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, db, nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	_, logger, db, err := env()
	if err != nil {
		return err
	}
	defer db.Close()
	defer logger.Sync()

	entryRepo := repository.NewLabourEntryRepository(db.DB, logger)
	projectRepo := repository.NewProjectRepository(db.DB, logger)
	phaseRepo := repository.NewPhaseRepository(db.DB, logger)
	categoryRepo := repository.NewIndirectCategoryRepository(db.DB, logger)

	reconciler := service.NewReconcileService(
		entryRepo, projectRepo, phaseRepo, categoryRepo, utils.NewZapAdapter(logger))

	scopes := []ledger.ScopeRef{ledger.ProjectScope(projectID)}
	if phaseID > 0 {
		scopes = append(scopes, ledger.PhaseScope(phaseID))
	}
	if categoryID > 0 {
		scopes = append(scopes, ledger.CategoryScope(categoryID))
	}

	ctx := context.Background()
	for _, scope := range scopes {
		total, err := reconciler.Reconcile(ctx, scope)
		if err != nil {
			return fmt.Errorf("reconcile %s: %w", scope, err)
		}
		fmt.Printf("%s reconciled: actual spending %d cents\n", scope, total)
	}

	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, logger, db, err := env()
	if err != nil {
		return err
	}
	defer db.Close()
	defer logger.Sync()

	projectRepo := repository.NewProjectRepository(db.DB, logger)
	phaseRepo := repository.NewPhaseRepository(db.DB, logger)
	summaryRepo := repository.NewSummaryRepository(db.DB, logger)

	exporter := export.NewSummaryExporter(projectRepo, phaseRepo, summaryRepo, logger)

	out := outputPath
	if out == "" {
		if err := os.MkdirAll(cfg.Export.OutputDir, 0755); err != nil {
			return err
		}
		name := fmt.Sprintf("project_%d_summary_%s.xlsx", projectID, time.Now().Format("20060102_150405"))
		out = filepath.Join(cfg.Export.OutputDir, name)
	}

	if err := exporter.Export(context.Background(), projectID, out); err != nil {
		return err
	}

	fmt.Printf("cost summary written to %s\n", out)
	return nil
}
