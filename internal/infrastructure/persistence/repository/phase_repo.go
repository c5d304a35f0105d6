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

// PhaseRepository implements port.PhaseRepository
type PhaseRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPhaseRepository creates a new phase repository
func NewPhaseRepository(db *sql.DB, logger *zap.Logger) port.PhaseRepository {
	return &PhaseRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new phase
func (r *PhaseRepository) Create(ctx context.Context, phase *entity.Phase) error {
	query := `
		INSERT INTO phases (project_id, name, budget_total, actual_spending)
		VALUES (?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		phase.ProjectID,
		phase.Name,
		phase.BudgetTotal,
		phase.ActualSpending,
	)
	if err != nil {
		r.logger.Error("Failed to create phase", zap.Error(err))
		return fmt.Errorf("failed to create phase: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	phase.ID = id
	return nil
}

// GetByID retrieves a phase by ID
func (r *PhaseRepository) GetByID(ctx context.Context, id int64) (*entity.Phase, error) {
	query := `
		SELECT id, project_id, name, budget_total, actual_spending, created_at, updated_at
		FROM phases
		WHERE id = ?
	`

	var phase entity.Phase
	var budgetTotal sql.NullInt64

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&phase.ID,
		&phase.ProjectID,
		&phase.Name,
		&budgetTotal,
		&phase.ActualSpending,
		&phase.CreatedAt,
		&phase.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get phase", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get phase: %w", err)
	}

	if budgetTotal.Valid {
		phase.BudgetTotal = &budgetTotal.Int64
	}

	return &phase, nil
}

// ListByProject retrieves all phases of a project
func (r *PhaseRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.Phase, error) {
	query := `
		SELECT id, project_id, name, budget_total, actual_spending, created_at, updated_at
		FROM phases
		WHERE project_id = ?
		ORDER BY id
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, projectID)
	if err != nil {
		r.logger.Error("Failed to list phases", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to list phases: %w", err)
	}
	defer rows.Close()

	var phases []*entity.Phase
	for rows.Next() {
		var phase entity.Phase
		var budgetTotal sql.NullInt64

		if err := rows.Scan(
			&phase.ID,
			&phase.ProjectID,
			&phase.Name,
			&budgetTotal,
			&phase.ActualSpending,
			&phase.CreatedAt,
			&phase.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan phase: %w", err)
		}

		if budgetTotal.Valid {
			phase.BudgetTotal = &budgetTotal.Int64
		}

		phases = append(phases, &phase)
	}

	return phases, rows.Err()
}

// ApplySpendingDelta atomically increments or decrements actual_spending
func (r *PhaseRepository) ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
	query := `
		UPDATE phases
		SET actual_spending = actual_spending + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, dir.Apply(amount), id)
	if err != nil {
		r.logger.Error("Failed to apply phase spending delta", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to apply phase spending delta: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &ledger.NotFoundError{Entity: "phase", ID: id}
	}

	return nil
}

// SetActualSpending overwrites actual_spending with a reconciled total
func (r *PhaseRepository) SetActualSpending(ctx context.Context, id int64, total int64) error {
	query := `
		UPDATE phases
		SET actual_spending = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, total, id)
	if err != nil {
		r.logger.Error("Failed to set phase spending", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set phase spending: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.PhaseRepository = (*PhaseRepository)(nil)
