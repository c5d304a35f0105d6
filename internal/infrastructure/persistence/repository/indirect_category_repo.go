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

// IndirectCategoryRepository implements port.IndirectCategoryRepository
type IndirectCategoryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewIndirectCategoryRepository creates a new indirect category repository
func NewIndirectCategoryRepository(db *sql.DB, logger *zap.Logger) port.IndirectCategoryRepository {
	return &IndirectCategoryRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new indirect-cost category
func (r *IndirectCategoryRepository) Create(ctx context.Context, category *entity.IndirectCategory) error {
	query := `
		INSERT INTO indirect_categories (project_id, code, name, budget_total, actual_spending)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		category.ProjectID,
		category.Code,
		category.Name,
		category.BudgetTotal,
		category.ActualSpending,
	)
	if err != nil {
		r.logger.Error("Failed to create indirect category", zap.Error(err))
		return fmt.Errorf("failed to create indirect category: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	category.ID = id
	return nil
}

// GetByID retrieves a category by ID
func (r *IndirectCategoryRepository) GetByID(ctx context.Context, id int64) (*entity.IndirectCategory, error) {
	query := `
		SELECT id, project_id, code, name, budget_total, actual_spending, created_at
		FROM indirect_categories
		WHERE id = ?
	`
	return r.scanOne(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id))
}

// GetByCode retrieves a category by its code within a project
func (r *IndirectCategoryRepository) GetByCode(ctx context.Context, projectID int64, code string) (*entity.IndirectCategory, error) {
	query := `
		SELECT id, project_id, code, name, budget_total, actual_spending, created_at
		FROM indirect_categories
		WHERE project_id = ? AND code = ?
	`
	return r.scanOne(sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, projectID, code))
}

func (r *IndirectCategoryRepository) scanOne(row *sql.Row) (*entity.IndirectCategory, error) {
	var category entity.IndirectCategory
	var budgetTotal sql.NullInt64

	err := row.Scan(
		&category.ID,
		&category.ProjectID,
		&category.Code,
		&category.Name,
		&budgetTotal,
		&category.ActualSpending,
		&category.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get indirect category", zap.Error(err))
		return nil, fmt.Errorf("failed to get indirect category: %w", err)
	}

	if budgetTotal.Valid {
		category.BudgetTotal = &budgetTotal.Int64
	}

	return &category, nil
}

// ApplySpendingDelta atomically increments or decrements actual_spending
func (r *IndirectCategoryRepository) ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error {
	query := `
		UPDATE indirect_categories
		SET actual_spending = actual_spending + ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, dir.Apply(amount), id)
	if err != nil {
		r.logger.Error("Failed to apply indirect spending delta", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to apply indirect spending delta: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &ledger.NotFoundError{Entity: "indirect category", ID: id}
	}

	return nil
}

// SetActualSpending overwrites actual_spending with a reconciled total
func (r *IndirectCategoryRepository) SetActualSpending(ctx context.Context, id int64, total int64) error {
	query := `
		UPDATE indirect_categories
		SET actual_spending = ?
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, total, id)
	if err != nil {
		r.logger.Error("Failed to set indirect category spending", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set indirect category spending: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.IndirectCategoryRepository = (*IndirectCategoryRepository)(nil)
