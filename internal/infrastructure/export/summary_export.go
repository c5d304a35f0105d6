// Package export renders cost summary snapshots into spreadsheet reports
// for site managers and accountants.
package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

const sheetName = "Cost Summary"

// SummaryExporter writes a project's cost rollup to an xlsx workbook
type SummaryExporter struct {
	projects  port.ProjectRepository
	phases    port.PhaseRepository
	summaries port.SummaryRepository
	logger    *zap.Logger
}

// NewSummaryExporter creates a new summary exporter
func NewSummaryExporter(
	projects port.ProjectRepository,
	phases port.PhaseRepository,
	summaries port.SummaryRepository,
	logger *zap.Logger,
) *SummaryExporter {
	return &SummaryExporter{
		projects:  projects,
		phases:    phases,
		summaries: summaries,
		logger:    logger,
	}
}

// Export writes the project's summary workbook to outputPath
func (e *SummaryExporter) Export(ctx context.Context, projectID int64, outputPath string) error {
	project, err := e.projects.GetByID(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return &ledger.NotFoundError{Entity: "project", ID: projectID}
	}

	summaries, err := e.summaries.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}

	phases, err := e.phases.ListByProject(ctx, projectID)
	if err != nil {
		return err
	}
	phaseNames := make(map[int64]string, len(phases))
	for _, p := range phases {
		phaseNames[p.ID] = p.Name
	}

	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	e.setCell(f, "A1", "Project")
	e.setCell(f, "B1", project.Name)
	e.setCell(f, "A2", "Actual spending")
	e.setCell(f, "B2", centsToUnits(project.ActualSpending))
	if project.BudgetTotal != nil {
		e.setCell(f, "A3", "Budget")
		e.setCell(f, "B3", centsToUnits(*project.BudgetTotal))
		e.setCell(f, "A4", "Remaining")
		e.setCell(f, "B4", centsToUnits(*project.BudgetTotal-project.ActualSpending))
	}

	headers := []string{"Scope", "Scope ID", "Name", "Total Cost", "Entry Count", "Refreshed At"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 6)
		e.setCell(f, cell, h)
	}

	row := 7
	for _, s := range summaries {
		name := ""
		if s.ScopeType == string(ledger.ScopePhase) {
			name = phaseNames[s.ScopeID]
		} else if s.ScopeType == string(ledger.ScopeProject) {
			name = project.Name
		}
		e.writeSummaryRow(f, row, s, name)
		row++
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("Cost summary exported",
		zap.Int64("project_id", projectID),
		zap.Int("scopes", len(summaries)),
		zap.String("output_path", outputPath))

	return nil
}

func (e *SummaryExporter) writeSummaryRow(f *excelize.File, row int, s *entity.CostSummary, name string) {
	values := []interface{}{
		s.ScopeType,
		s.ScopeID,
		name,
		centsToUnits(s.TotalCost),
		s.EntryCount,
		s.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		e.setCell(f, cell, v)
	}
}

// setCell sets a cell value in the workbook
func (e *SummaryExporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// centsToUnits renders an integer cent amount as currency units
func centsToUnits(cents int64) float64 {
	return float64(cents) / 100
}
