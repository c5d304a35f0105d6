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

// SummaryRepository implements port.SummaryRepository
type SummaryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSummaryRepository creates a new cost summary repository
func NewSummaryRepository(db *sql.DB, logger *zap.Logger) port.SummaryRepository {
	return &SummaryRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert writes the latest snapshot for a scope, replacing any previous one
func (r *SummaryRepository) Upsert(ctx context.Context, s *entity.CostSummary) error {
	query := `
		INSERT INTO cost_summaries (scope_type, scope_id, total_cost, entry_count, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(scope_type, scope_id) DO UPDATE SET
			total_cost = excluded.total_cost,
			entry_count = excluded.entry_count,
			updated_at = CURRENT_TIMESTAMP
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		s.ScopeType,
		s.ScopeID,
		s.TotalCost,
		s.EntryCount,
	)
	if err != nil {
		r.logger.Error("Failed to upsert cost summary",
			zap.String("scope_type", s.ScopeType), zap.Int64("scope_id", s.ScopeID), zap.Error(err))
		return fmt.Errorf("failed to upsert cost summary: %w", err)
	}

	return nil
}

// Get retrieves the cached snapshot for a scope
func (r *SummaryRepository) Get(ctx context.Context, scopeType string, scopeID int64) (*entity.CostSummary, error) {
	query := `
		SELECT scope_type, scope_id, total_cost, entry_count, updated_at
		FROM cost_summaries
		WHERE scope_type = ? AND scope_id = ?
	`

	var s entity.CostSummary
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, scopeType, scopeID).Scan(
		&s.ScopeType,
		&s.ScopeID,
		&s.TotalCost,
		&s.EntryCount,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get cost summary",
			zap.String("scope_type", scopeType), zap.Int64("scope_id", scopeID), zap.Error(err))
		return nil, fmt.Errorf("failed to get cost summary: %w", err)
	}

	return &s, nil
}

// ListByProject retrieves all snapshots belonging to a project: the
// project's own plus those of its phases and indirect categories.
func (r *SummaryRepository) ListByProject(ctx context.Context, projectID int64) ([]*entity.CostSummary, error) {
	query := `
		SELECT scope_type, scope_id, total_cost, entry_count, updated_at
		FROM cost_summaries
		WHERE (scope_type = ? AND scope_id = ?)
		   OR (scope_type = ? AND scope_id IN (SELECT id FROM phases WHERE project_id = ?))
		   OR (scope_type = ? AND scope_id IN (SELECT id FROM indirect_categories WHERE project_id = ?))
		ORDER BY scope_type, scope_id
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query,
		ledger.ScopeProject, projectID,
		ledger.ScopePhase, projectID,
		ledger.ScopeIndirectCategory, projectID,
	)
	if err != nil {
		r.logger.Error("Failed to list cost summaries", zap.Int64("project_id", projectID), zap.Error(err))
		return nil, fmt.Errorf("failed to list cost summaries: %w", err)
	}
	defer rows.Close()

	var summaries []*entity.CostSummary
	for rows.Next() {
		var s entity.CostSummary
		if err := rows.Scan(
			&s.ScopeType,
			&s.ScopeID,
			&s.TotalCost,
			&s.EntryCount,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cost summary: %w", err)
		}
		summaries = append(summaries, &s)
	}

	return summaries, rows.Err()
}

// Verify interface compliance
var _ port.SummaryRepository = (*SummaryRepository)(nil)
