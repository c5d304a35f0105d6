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

// EquipmentRepository implements port.EquipmentRepository
type EquipmentRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEquipmentRepository creates a new equipment repository
func NewEquipmentRepository(db *sql.DB, logger *zap.Logger) port.EquipmentRepository {
	return &EquipmentRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new equipment record
func (r *EquipmentRepository) Create(ctx context.Context, eq *entity.Equipment) error {
	query := `
		INSERT INTO equipment (project_id, name, operator_hours)
		VALUES (?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		eq.ProjectID,
		eq.Name,
		eq.OperatorHours,
	)
	if err != nil {
		r.logger.Error("Failed to create equipment", zap.Error(err))
		return fmt.Errorf("failed to create equipment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	eq.ID = id
	return nil
}

// GetByID retrieves equipment by ID
func (r *EquipmentRepository) GetByID(ctx context.Context, id int64) (*entity.Equipment, error) {
	query := `
		SELECT id, project_id, name, operator_hours, created_at
		FROM equipment
		WHERE id = ?
	`

	var eq entity.Equipment
	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&eq.ID,
		&eq.ProjectID,
		&eq.Name,
		&eq.OperatorHours,
		&eq.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get equipment", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}

	return &eq, nil
}

// ApplyHoursDelta atomically accumulates operator hours
func (r *EquipmentRepository) ApplyHoursDelta(ctx context.Context, id int64, hours float64, dir ledger.Direction) error {
	query := `
		UPDATE equipment
		SET operator_hours = operator_hours + ?
		WHERE id = ?
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, dir.ApplyHours(hours), id)
	if err != nil {
		r.logger.Error("Failed to apply equipment hours delta", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to apply equipment hours delta: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return &ledger.NotFoundError{Entity: "equipment", ID: id}
	}

	return nil
}

// Verify interface compliance
var _ port.EquipmentRepository = (*EquipmentRepository)(nil)
