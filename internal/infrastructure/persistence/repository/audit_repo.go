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

// AuditRepository implements port.AuditSink backed by the audit_events table
type AuditRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB, logger *zap.Logger) port.AuditSink {
	return &AuditRepository{
		db:     db,
		logger: logger,
	}
}

// RecordAuditEvent persists an audit event
func (r *AuditRepository) RecordAuditEvent(ctx context.Context, event *entity.AuditEvent) error {
	query := `
		INSERT INTO audit_events (id, actor, action, entity_type, entity_id, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		event.ID,
		event.Actor,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.Detail,
	)
	if err != nil {
		r.logger.Error("Failed to record audit event",
			zap.String("action", event.Action), zap.Error(err))
		return fmt.Errorf("failed to record audit event: %w", err)
	}

	return nil
}

// ListByEntity retrieves audit events for one entity, newest first
func (r *AuditRepository) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditEvent, error) {
	query := `
		SELECT id, actor, action, entity_type, entity_id, detail, created_at
		FROM audit_events
		WHERE entity_type = ? AND entity_id = ?
		ORDER BY created_at DESC
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, entityType, entityID)
	if err != nil {
		r.logger.Error("Failed to list audit events", zap.Error(err))
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}
	defer rows.Close()

	var events []*entity.AuditEvent
	for rows.Next() {
		var e entity.AuditEvent
		if err := rows.Scan(
			&e.ID,
			&e.Actor,
			&e.Action,
			&e.EntityType,
			&e.EntityID,
			&e.Detail,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan audit event: %w", err)
		}
		events = append(events, &e)
	}

	return events, rows.Err()
}

// Verify interface compliance
var _ port.AuditSink = (*AuditRepository)(nil)
