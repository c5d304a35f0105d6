package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/persistence/sqlite"
)

// LabourBatchRepository implements port.LabourBatchRepository
type LabourBatchRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewLabourBatchRepository creates a new labour batch repository
func NewLabourBatchRepository(db *sql.DB, logger *zap.Logger) port.LabourBatchRepository {
	return &LabourBatchRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new labour batch
func (r *LabourBatchRepository) Create(ctx context.Context, batch *entity.LabourBatch) error {
	entryIDs, err := json.Marshal(batch.EntryIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal entry ids: %w", err)
	}
	if batch.EntryIDs == nil {
		entryIDs = []byte("[]")
	}

	query := `
		INSERT INTO labour_batches (reference, project_id, phase_id, submission_id, entry_ids, entry_count, total_cost)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		batch.Reference,
		batch.ProjectID,
		batch.PhaseID,
		batch.SubmissionID,
		string(entryIDs),
		batch.EntryCount,
		batch.TotalCost,
	)
	if err != nil {
		r.logger.Error("Failed to create labour batch", zap.Error(err))
		return fmt.Errorf("failed to create labour batch: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	batch.ID = id
	return nil
}

// GetByID retrieves a batch by ID
func (r *LabourBatchRepository) GetByID(ctx context.Context, id int64) (*entity.LabourBatch, error) {
	query := `
		SELECT id, reference, project_id, phase_id, submission_id, entry_ids, entry_count, total_cost, created_at
		FROM labour_batches
		WHERE id = ?
	`

	var batch entity.LabourBatch
	var phaseID, submissionID sql.NullInt64
	var entryIDs string

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&batch.ID,
		&batch.Reference,
		&batch.ProjectID,
		&phaseID,
		&submissionID,
		&entryIDs,
		&batch.EntryCount,
		&batch.TotalCost,
		&batch.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get labour batch", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get labour batch: %w", err)
	}

	if phaseID.Valid {
		batch.PhaseID = &phaseID.Int64
	}
	if submissionID.Valid {
		batch.SubmissionID = &submissionID.Int64
	}
	if err := json.Unmarshal([]byte(entryIDs), &batch.EntryIDs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal entry ids: %w", err)
	}

	return &batch, nil
}

// SetEntries records the entry-id list, count and total created for the batch
func (r *LabourBatchRepository) SetEntries(ctx context.Context, id int64, entryIDs []int64, totalCost int64) error {
	raw, err := json.Marshal(entryIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal entry ids: %w", err)
	}

	query := `
		UPDATE labour_batches
		SET entry_ids = ?, entry_count = ?, total_cost = ?
		WHERE id = ?
	`

	_, err = sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, string(raw), len(entryIDs), totalCost, id)
	if err != nil {
		r.logger.Error("Failed to set batch entries", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to set batch entries: %w", err)
	}

	return nil
}

// Verify interface compliance
var _ port.LabourBatchRepository = (*LabourBatchRepository)(nil)
