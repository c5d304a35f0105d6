package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/infrastructure/persistence/sqlite"
)

// WorkerRepository implements port.WorkerRepository
type WorkerRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewWorkerRepository creates a new worker repository
func NewWorkerRepository(db *sql.DB, logger *zap.Logger) port.WorkerRepository {
	return &WorkerRepository{
		db:     db,
		logger: logger,
	}
}

// GetByID retrieves a worker by ID
func (r *WorkerRepository) GetByID(ctx context.Context, id int64) (*entity.Worker, error) {
	query := `
		SELECT id, name, employer, trade, created_at
		FROM workers
		WHERE id = ?
	`

	var worker entity.Worker
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&worker.ID,
		&worker.Name,
		&worker.Employer,
		&worker.Trade,
		&worker.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get worker", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get worker: %w", err)
	}

	return &worker, nil
}

// ResolveOrCreate returns the worker with the given (name, employer)
// identity, creating the profile if absent. The UNIQUE constraint makes a
// racing insert lose cleanly; the loser re-reads the winner's row.
func (r *WorkerRepository) ResolveOrCreate(ctx context.Context, name, employer, trade string) (*entity.Worker, error) {
	existing, err := r.getByIdentity(ctx, name, employer)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	query := `INSERT INTO workers (name, employer, trade) VALUES (?, ?, ?)`
	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, name, employer, trade)
	if err != nil {
		// Lost the race to a concurrent insert
		if existing, lookupErr := r.getByIdentity(ctx, name, employer); lookupErr == nil && existing != nil {
			return existing, nil
		}
		r.logger.Error("Failed to create worker", zap.String("name", name), zap.Error(err))
		return nil, fmt.Errorf("failed to create worker: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert id: %w", err)
	}

	return &entity.Worker{
		ID:       id,
		Name:     name,
		Employer: employer,
		Trade:    trade,
	}, nil
}

func (r *WorkerRepository) getByIdentity(ctx context.Context, name, employer string) (*entity.Worker, error) {
	query := `
		SELECT id, name, employer, trade, created_at
		FROM workers
		WHERE name = ? AND employer = ?
	`

	var worker entity.Worker
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, name, employer).Scan(
		&worker.ID,
		&worker.Name,
		&worker.Employer,
		&worker.Trade,
		&worker.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get worker by identity: %w", err)
	}

	return &worker, nil
}

// Verify interface compliance
var _ port.WorkerRepository = (*WorkerRepository)(nil)
