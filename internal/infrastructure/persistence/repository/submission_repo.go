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

// SubmissionRepository implements port.SubmissionRepository
type SubmissionRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, logger *zap.Logger) port.SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Create creates a new supervisor submission
func (r *SubmissionRepository) Create(ctx context.Context, s *entity.SupervisorSubmission) error {
	query := `
		INSERT INTO supervisor_submissions (project_id, phase_id, supervisor, report_date, status, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		s.ProjectID,
		s.PhaseID,
		s.Supervisor,
		s.ReportDate,
		s.Status,
		s.Notes,
	)
	if err != nil {
		r.logger.Error("Failed to create submission", zap.Error(err))
		return fmt.Errorf("failed to create submission: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	s.ID = id
	return nil
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
	query := `
		SELECT id, project_id, phase_id, supervisor, report_date, status, notes,
			rejection_reason, batch_id, created_at, updated_at
		FROM supervisor_submissions
		WHERE id = ?
	`

	var s entity.SupervisorSubmission
	var phaseID, batchID sql.NullInt64

	err := sqlite.ExecutorFor(ctx, r.db).QueryRowContext(ctx, query, id).Scan(
		&s.ID,
		&s.ProjectID,
		&phaseID,
		&s.Supervisor,
		&s.ReportDate,
		&s.Status,
		&s.Notes,
		&s.RejectionReason,
		&batchID,
		&s.CreatedAt,
		&s.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get submission", zap.Int64("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if phaseID.Valid {
		s.PhaseID = &phaseID.Int64
	}
	if batchID.Valid {
		s.BatchID = &batchID.Int64
	}

	return &s, nil
}

// ListByProject retrieves a page of a project's submissions
func (r *SubmissionRepository) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*entity.SupervisorSubmission, error) {
	query := `
		SELECT id, project_id, phase_id, supervisor, report_date, status, notes,
			rejection_reason, batch_id, created_at, updated_at
		FROM supervisor_submissions
		WHERE project_id = ?
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, projectID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list submissions", zap.Error(err))
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	var submissions []*entity.SupervisorSubmission
	for rows.Next() {
		var s entity.SupervisorSubmission
		var phaseID, batchID sql.NullInt64

		if err := rows.Scan(
			&s.ID,
			&s.ProjectID,
			&phaseID,
			&s.Supervisor,
			&s.ReportDate,
			&s.Status,
			&s.Notes,
			&s.RejectionReason,
			&batchID,
			&s.CreatedAt,
			&s.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}

		if phaseID.Valid {
			s.PhaseID = &phaseID.Int64
		}
		if batchID.Valid {
			s.BatchID = &batchID.Int64
		}

		submissions = append(submissions, &s)
	}

	return submissions, rows.Err()
}

// UpdateStatus updates the submission status
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	query := `
		UPDATE supervisor_submissions
		SET status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query, status, id)
	if err != nil {
		r.logger.Error("Failed to update submission status", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to update submission status: %w", err)
	}

	return nil
}

// SetApproved marks the submission approved with its batch back-reference.
// The back-reference is one-way and set exactly once.
func (r *SubmissionRepository) SetApproved(ctx context.Context, id int64, batchID int64) error {
	query := `
		UPDATE supervisor_submissions
		SET status = ?, batch_id = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND batch_id IS NULL
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		entity.SubmissionStatusApproved, batchID, id)
	if err != nil {
		r.logger.Error("Failed to approve submission", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to approve submission: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("submission %d already has a batch reference", id)
	}

	return nil
}

// SetRejected marks the submission rejected with the reviewer's reason
func (r *SubmissionRepository) SetRejected(ctx context.Context, id int64, reason string) error {
	query := `
		UPDATE supervisor_submissions
		SET status = ?, rejection_reason = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`

	_, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		entity.SubmissionStatusRejected, reason, id)
	if err != nil {
		r.logger.Error("Failed to reject submission", zap.Int64("id", id), zap.Error(err))
		return fmt.Errorf("failed to reject submission: %w", err)
	}

	return nil
}

// CreateLine creates a reported labour line under a submission
func (r *SubmissionRepository) CreateLine(ctx context.Context, line *entity.SubmissionLine) error {
	query := `
		INSERT INTO submission_lines (submission_id, worker_name, employer, trade, hours, hourly_rate, work_item_id, equipment_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := sqlite.ExecutorFor(ctx, r.db).ExecContext(ctx, query,
		line.SubmissionID,
		line.WorkerName,
		line.Employer,
		line.Trade,
		line.Hours,
		line.HourlyRate,
		line.WorkItemID,
		line.EquipmentID,
	)
	if err != nil {
		r.logger.Error("Failed to create submission line", zap.Error(err))
		return fmt.Errorf("failed to create submission line: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	line.ID = id
	return nil
}

// GetLines retrieves all lines of a submission
func (r *SubmissionRepository) GetLines(ctx context.Context, submissionID int64) ([]*entity.SubmissionLine, error) {
	query := `
		SELECT id, submission_id, worker_name, employer, trade, hours, hourly_rate, work_item_id, equipment_id
		FROM submission_lines
		WHERE submission_id = ?
		ORDER BY id
	`

	rows, err := sqlite.ExecutorFor(ctx, r.db).QueryContext(ctx, query, submissionID)
	if err != nil {
		r.logger.Error("Failed to get submission lines", zap.Int64("submission_id", submissionID), zap.Error(err))
		return nil, fmt.Errorf("failed to get submission lines: %w", err)
	}
	defer rows.Close()

	var lines []*entity.SubmissionLine
	for rows.Next() {
		var line entity.SubmissionLine
		var workItemID, equipmentID sql.NullInt64

		if err := rows.Scan(
			&line.ID,
			&line.SubmissionID,
			&line.WorkerName,
			&line.Employer,
			&line.Trade,
			&line.Hours,
			&line.HourlyRate,
			&workItemID,
			&equipmentID,
		); err != nil {
			return nil, fmt.Errorf("failed to scan submission line: %w", err)
		}

		if workItemID.Valid {
			line.WorkItemID = &workItemID.Int64
		}
		if equipmentID.Valid {
			line.EquipmentID = &equipmentID.Int64
		}

		lines = append(lines, &line)
	}

	return lines, rows.Err()
}

// Verify interface compliance
var _ port.SubmissionRepository = (*SubmissionRepository)(nil)
