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

// WorkItemRepository implements port.WorkItemRepository
type WorkItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkItemRepository creates a new work item repository
func NewWorkItemRepository(db *sql.DB, logger *zap.Logger) port.WorkItemRepository {
	return &WorkItemRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new work item
func (r *WorkItemRepository) Create(ctx context.Context, item *entity.WorkItem) error {
	query := `
		INSERT INTO work_items (project_id, phase_id, name, estimated_hours, actual_hours, actual_cost, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	if item.Status == "" {
		item.Status = entity.WorkItemStatusNotStarted
	}

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		item.ProjectID,
		item.PhaseID,
		item.Name,
		item.EstimatedHours,
		item.ActualHours,
		item.ActualCost,
		item.Status,
	)
	if err != nil {
		r.logger.Error("Failed to create work item", zap.Error(err))
		return fmt.Errorf("failed to create work item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	item.ID = id
	return nil
}

// GetByID retrieves a work item by ID
func (r *WorkItemRepository) GetByID(ctx context.Context, id int64) (*entity.WorkItem, error) {
	query := `
		SELECT id, project_id, phase_id, name, estimated_hours, actual_hours, actual_cost, status, created_at, updated_at
		FROM work_items
		WHERE id = ?
	`

	var item entity.WorkItem
	var phaseID sql.NullInt64

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&item.ID,
		&item.ProjectID,
		&phaseID,
		&item.Name,
		&item.EstimatedHours,
		&item.ActualHours,
		&item.ActualCost,
		&item.Status,
		&item.CreatedAt,
		&item.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get work item", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get work item: %w", err)
	}

	if phaseID.Valid {
		item.PhaseID = &phaseID.Int64
	}

	return &item, nil
}

// ApplyProgressDelta atomically accumulates hours and cost
func (r *WorkItemRepository) ApplyProgressDelta(ctx context.Context, id int64, hours float64, costCents int64, dir ledger.Direction) error {
	query := `
		UPDATE work_items
		SET actual_hours = actual_hours + ?,
		    actual_cost = actual_cost + ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		dir.ApplyHours(hours), dir.Apply(costCents), id)
	if err != nil {
		r.logger.Error("Failed to apply work item delta", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to apply work item delta: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &ledger.NotFoundError{Entity: "work item", ID: id}
	}

	return nil
}

// UpdateStatus persists the derived completion status
func (r *WorkItemRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE work_items
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update work item status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update work item status: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.WorkItemRepository = (*WorkItemRepository)(nil)
