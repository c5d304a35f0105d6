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

// ProjectRepository implements port.ProjectRepository
type ProjectRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *sql.DB, logger *zap.Logger) port.ProjectRepository {
	return &ProjectRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *entity.Project) error {
	query := `
		INSERT INTO projects (name, budget_total, actual_spending)
		VALUES (?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		project.Name,
		project.BudgetTotal,
		project.ActualSpending,
	)
	if err != nil {
		r.logger.Error("Failed to create project", zap.Error(err))
		return fmt.Errorf("failed to create project: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	project.ID = id
	return nil
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*entity.Project, error) {
	query := `
		SELECT id, name, budget_total, actual_spending, created_at, updated_at
		FROM projects
		WHERE id = ?
	`

	var project entity.Project
	var budgetTotal sql.NullInt64

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&project.ID,
		&project.Name,
		&budgetTotal,
		&project.ActualSpending,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get project", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if budgetTotal.Valid {
		project.BudgetTotal = &budgetTotal.Int64
	}

	return &project, nil
}

// List retrieves projects with pagination
func (r *ProjectRepository) List(ctx context.Context, limit, offset int) ([]*entity.Project, error) {
	query := `
		SELECT id, name, budget_total, actual_spending, created_at, updated_at
		FROM projects
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list projects", zap.Error(err))
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*entity.Project
	for rows.Next() {
		var project entity.Project
		var budgetTotal sql.NullInt64

		if err := rows.Scan(
			&project.ID,
			&project.Name,
			&budgetTotal,
			&project.ActualSpending,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}

		if budgetTotal.Valid {
			project.BudgetTotal = &budgetTotal.Int64
		}

		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// ApplySpendingDelta atomically increments or decrements actual_spending
func (r *ProjectRepository) ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
	query := `
		UPDATE projects
		SET actual_spending = actual_spending + ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, dir.Apply(amount), id)
	if err != nil {
		r.logger.Error("Failed to apply project spending delta", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to apply project spending delta: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &ledger.NotFoundError{Entity: "project", ID: id}
	}

	return nil
}

// SetActualSpending overwrites actual_spending with a reconciled total
func (r *ProjectRepository) SetActualSpending(ctx context.Context, id int64, total int64) error {
	query := `
		UPDATE projects
		SET actual_spending = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, total, id)
	if err != nil {
		r.logger.Error("Failed to set project spending", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set project spending: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.ProjectRepository = (*ProjectRepository)(nil)
