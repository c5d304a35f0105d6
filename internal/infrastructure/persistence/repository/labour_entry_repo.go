package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/persistence/sqlite"
)

const labourEntryColumns = `
	id, project_id, phase_id, category_id, worker_id, work_item_id,
	equipment_id, batch_id, work_date, hours, hourly_rate, total_cost,
	status, notes, created_at, updated_at
`

// LabourEntryRepository implements port.LabourEntryRepository
type LabourEntryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLabourEntryRepository creates a new labour entry repository
func NewLabourEntryRepository(db *sql.DB, logger *zap.Logger) port.LabourEntryRepository {
	return &LabourEntryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new labour entry
func (r *LabourEntryRepository) Create(ctx context.Context, e *entity.LabourEntry) error {
	query := `
		INSERT INTO labour_entries (
			project_id, phase_id, category_id, worker_id, work_item_id,
			equipment_id, batch_id, work_date, hours, hourly_rate, total_cost,
			status, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		e.ProjectID,
		e.PhaseID,
		e.CategoryID,
		e.WorkerID,
		e.WorkItemID,
		e.EquipmentID,
		e.BatchID,
		e.WorkDate,
		e.Hours,
		e.HourlyRate,
		e.TotalCost,
		e.Status,
		e.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to create labour entry", zap.Error(err))
		return fmt.Errorf("failed to create labour entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	e.ID = id
	return nil
}

// GetByID retrieves a labour entry by ID
func (r *LabourEntryRepository) GetByID(ctx context.Context, id int64) (*entity.LabourEntry, error) {
	query := `SELECT ` + labourEntryColumns + ` FROM labour_entries WHERE id = ?`

	entry, err := scanLabourEntry(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
	if err != nil {
		r.logger.Error("Failed to get labour entry", zap.Int64("id", id), zap.Error(err))
		return nil, err
	}
	return entry, nil
}

// ListByProject retrieves a page of a project's labour entries
func (r *LabourEntryRepository) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*entity.LabourEntry, error) {
	query := `
		SELECT ` + labourEntryColumns + `
		FROM labour_entries
		WHERE project_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`
	return r.list(ctx, query, projectID, limit, offset)
}

// ListByBatch retrieves all entries created by a batch
func (r *LabourEntryRepository) ListByBatch(ctx context.Context, batchID int64) ([]*entity.LabourEntry, error) {
	query := `
		SELECT ` + labourEntryColumns + `
		FROM labour_entries
		WHERE batch_id = ?
		ORDER BY id
	`
	return r.list(ctx, query, batchID)
}

func (r *LabourEntryRepository) list(ctx context.Context, query string, args ...interface{}) ([]*entity.LabourEntry, error) {
	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list labour entries", zap.Error(err))
		return nil, fmt.Errorf("failed to list labour entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.LabourEntry
	for rows.Next() {
		entry, err := scanLabourEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// UpdateStatus updates the status of a labour entry
func (r *LabourEntryRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE labour_entries
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update labour entry status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update labour entry status: %w", err)
	}

	return nil
}

// TotalsForScope sums total_cost over committed entries attributed to the
// scope. Cancelled and rejected entries never count.
func (r *LabourEntryRepository) TotalsForScope(ctx context.Context, scope ledger.ScopeRef) (*port.EntryTotals, error) {
	var where string
	switch scope.Kind {
	case ledger.ScopeProject:
		where = "project_id = ?"
	case ledger.ScopePhase:
		where = "phase_id = ?"
	case ledger.ScopeIndirectCategory:
		where = "category_id = ?"
	default:
		return nil, fmt.Errorf("unknown scope kind %q", scope.Kind)
	}

	query := `
		SELECT COALESCE(SUM(total_cost), 0), COUNT(*)
		FROM labour_entries
		WHERE ` + where + ` AND status IN (?, ?)
	`

	var totals port.EntryTotals
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query,
		scope.ID, entity.EntryStatusApproved, entity.EntryStatusPaid,
	).Scan(&totals.TotalCost, &totals.EntryCount)
	if err != nil {
		r.logger.Error("Failed to sum entries for scope", zap.String("scope", scope.String()), zap.Error(err))
		return nil, fmt.Errorf("failed to sum entries for scope: %w", err)
	}

	return &totals, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLabourEntry(row rowScanner) (*entity.LabourEntry, error) {
	var e entity.LabourEntry
	var phaseID, categoryID, workItemID, equipmentID, batchID sql.NullInt64

	err := row.Scan(
		&e.ID,
		&e.ProjectID,
		&phaseID,
		&categoryID,
		&e.WorkerID,
		&workItemID,
		&equipmentID,
		&batchID,
		&e.WorkDate,
		&e.Hours,
		&e.HourlyRate,
		&e.TotalCost,
		&e.Status,
		&e.Notes,
		&e.CreatedAt,
		&e.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan labour entry: %w", err)
	}

	if phaseID.Valid {
		e.PhaseID = &phaseID.Int64
	}
	if categoryID.Valid {
		e.CategoryID = &categoryID.Int64
	}
	if workItemID.Valid {
		e.WorkItemID = &workItemID.Int64
	}
	if equipmentID.Valid {
		e.EquipmentID = &equipmentID.Int64
	}
	if batchID.Valid {
		e.BatchID = &batchID.Int64
	}

	return &e, nil
}

// Verify interface compliance
var _ port.LabourEntryRepository = (*LabourEntryRepository)(nil)
