package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/config"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
	"github.com/hardhat-systems/siteledger/internal/domain/workflow"
)

// CreateSubmissionInput carries a supervisor's reported labour for one day.
type CreateSubmissionInput struct {
	ProjectID  int64                 `json:"project_id"`
	PhaseID    *int64                `json:"phase_id,omitempty"`
	Supervisor string                `json:"supervisor"`
	ReportDate time.Time             `json:"report_date"`
	Notes      string                `json:"notes,omitempty"`
	Lines      []SubmissionLineInput `json:"lines"`
	Actor      string                `json:"-"`
}

// SubmissionLineInput is one reported line of labour.
type SubmissionLineInput struct {
	WorkerName  string  `json:"worker_name"`
	Employer    string  `json:"employer,omitempty"`
	Trade       string  `json:"trade,omitempty"`
	Hours       float64 `json:"hours"`
	HourlyRate  int64   `json:"hourly_rate"`
	WorkItemID  *int64  `json:"work_item_id,omitempty"`
	EquipmentID *int64  `json:"equipment_id,omitempty"`
}

// ApproveSubmissionResult is the outcome of approving a submission: the
// terminal submission, the batch it originated, and the batch's summed cost.
type ApproveSubmissionResult struct {
	Submission *entity.SupervisorSubmission `json:"submission"`
	Batch      *entity.LabourBatch          `json:"batch"`
	TotalCost  int64                        `json:"total_cost"`
}

// BatchDetail is a labour batch together with the entries it created.
type BatchDetail struct {
	Batch   *entity.LabourBatch   `json:"batch"`
	Entries []*entity.LabourEntry `json:"entries"`
}

// SubmissionService drives the supervisor submission lifecycle. Approval is
// the origin of exactly one labour batch, committed atomically with its
// entries and every dependent aggregate delta.
type SubmissionService interface {
	Create(ctx context.Context, input CreateSubmissionInput) (*entity.SupervisorSubmission, error)
	SubmitForReview(ctx context.Context, submissionID int64, actor string) (*entity.SupervisorSubmission, error)
	Approve(ctx context.Context, submissionID int64, notes, actor string) (*ApproveSubmissionResult, error)
	Reject(ctx context.Context, submissionID int64, reason, actor string) (*entity.SupervisorSubmission, error)
	Get(ctx context.Context, submissionID int64) (*entity.SupervisorSubmission, error)
	List(ctx context.Context, projectID int64, limit, offset int) ([]*entity.SupervisorSubmission, error)
	GetBatch(ctx context.Context, batchID int64) (*BatchDetail, error)
}

type submissionServiceImpl struct {
	submissions port.SubmissionRepository
	batches     port.LabourBatchRepository
	entries     port.LabourEntryRepository
	projects    port.ProjectRepository
	phases      port.PhaseRepository
	workers     port.WorkerRepository
	workItems   port.WorkItemRepository
	equipment   port.EquipmentRepository
	validator   *BudgetValidator
	coordinator *Coordinator
	reconciler  *ReconcileService
	audit       port.AuditSink
	dispatcher  port.RefreshDispatcher
	cfg         config.LedgerConfig
	logger      Logger
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(
	submissions port.SubmissionRepository,
	batches port.LabourBatchRepository,
	entries port.LabourEntryRepository,
	projects port.ProjectRepository,
	phases port.PhaseRepository,
	workers port.WorkerRepository,
	workItems port.WorkItemRepository,
	equipment port.EquipmentRepository,
	validator *BudgetValidator,
	coordinator *Coordinator,
	reconciler *ReconcileService,
	audit port.AuditSink,
	dispatcher port.RefreshDispatcher,
	cfg config.LedgerConfig,
	logger Logger,
) SubmissionService {
	return &submissionServiceImpl{
		submissions: submissions,
		batches:     batches,
		entries:     entries,
		projects:    projects,
		phases:      phases,
		workers:     workers,
		workItems:   workItems,
		equipment:   equipment,
		validator:   validator,
		coordinator: coordinator,
		reconciler:  reconciler,
		audit:       audit,
		dispatcher:  dispatcher,
		cfg:         cfg,
		logger:      logger,
	}
}

// Create records a draft submission with its reported lines.
func (s *submissionServiceImpl) Create(ctx context.Context, input CreateSubmissionInput) (*entity.SupervisorSubmission, error) {
	if input.ProjectID <= 0 {
		return nil, &ledger.ValidationError{Field: "project_id", Reason: "required"}
	}
	if strings.TrimSpace(input.Supervisor) == "" {
		return nil, &ledger.ValidationError{Field: "supervisor", Reason: "required"}
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.WorkerName) == "" {
			return nil, &ledger.ValidationError{Field: "lines.worker_name", Reason: "required"}
		}
		if line.Hours <= 0 || line.HourlyRate <= 0 {
			return nil, &ledger.ValidationError{Field: "lines", Reason: "hours and hourly_rate must be positive"}
		}
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &ledger.NotFoundError{Entity: "project", ID: input.ProjectID}
	}

	submission := &entity.SupervisorSubmission{
		ProjectID:  input.ProjectID,
		PhaseID:    input.PhaseID,
		Supervisor: input.Supervisor,
		ReportDate: input.ReportDate,
		Status:     entity.SubmissionStatusDraft,
		Notes:      input.Notes,
	}

	steps := []Step{
		{
			Name: "insert-submission",
			Run: func(txCtx context.Context) error {
				return s.submissions.Create(txCtx, submission)
			},
		},
	}
	for i := range input.Lines {
		line := input.Lines[i]
		steps = append(steps, Step{
			Name: "insert-line",
			Run: func(txCtx context.Context) error {
				return s.submissions.CreateLine(txCtx, &entity.SubmissionLine{
					SubmissionID: submission.ID,
					WorkerName:   line.WorkerName,
					Employer:     line.Employer,
					Trade:        line.Trade,
					Hours:        line.Hours,
					HourlyRate:   line.HourlyRate,
					WorkItemID:   line.WorkItemID,
					EquipmentID:  line.EquipmentID,
				})
			},
		})
	}
	steps = append(steps, Step{
		Name:        "write-audit",
		NonCritical: true,
		Run: func(txCtx context.Context) error {
			return s.audit.RecordAuditEvent(txCtx, newAuditEvent(input.Actor, "submission.create", "submission", submission.ID, map[string]interface{}{
				"line_count": len(input.Lines),
			}))
		},
	})

	if err := s.coordinator.Commit(ctx, steps); err != nil {
		return nil, err
	}

	s.logger.Info("Submission created", "submission_id", submission.ID, "lines", len(input.Lines))
	return submission, nil
}

// SubmitForReview moves a draft submission into pending_review.
func (s *submissionServiceImpl) SubmitForReview(ctx context.Context, submissionID int64, actor string) (*entity.SupervisorSubmission, error) {
	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	machine, err := workflow.NewSubmissionMachine(submission.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerSubmit); err != nil {
		return nil, &ledger.ValidationError{Field: "status", Reason: err.Error()}
	}

	newStatus := workflow.SubmissionStatus(machine.State())
	if err := s.submissions.UpdateStatus(ctx, submissionID, newStatus); err != nil {
		return nil, err
	}
	submission.Status = newStatus
	return submission, nil
}

// Approve turns a pending_review submission into one labour batch plus its
// entries and applies every aggregate delta, all in one transaction.
func (s *submissionServiceImpl) Approve(ctx context.Context, submissionID int64, notes, actor string) (*ApproveSubmissionResult, error) {
	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != entity.SubmissionStatusPendingReview {
		return nil, &ledger.NotPendingReviewError{SubmissionID: submissionID, Status: submission.Status}
	}

	lines, err := s.submissions.GetLines(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, &ledger.EmptyBatchError{SubmissionID: submissionID}
	}

	if s.cfg.RequireWorkItemLinks {
		for _, line := range lines {
			if line.WorkItemID == nil {
				return nil, &ledger.MissingWorkItemError{SubmissionID: submissionID, LineID: line.ID}
			}
		}
	}

	var totalCost int64
	for _, line := range lines {
		totalCost += line.Cost()
	}

	scopes := []ledger.ScopeRef{}
	if submission.PhaseID != nil {
		scopes = append(scopes, ledger.PhaseScope(*submission.PhaseID))
	}
	scopes = append(scopes, ledger.ProjectScope(submission.ProjectID))

	validation, err := s.validator.ValidateAll(ctx, scopes, totalCost)
	if err != nil {
		return nil, err
	}
	if !validation.IsValid {
		return nil, &ledger.BudgetExceededError{
			Scope:     validation.Scope,
			Available: validation.Available,
			Required:  validation.Required,
			Shortfall: validation.Shortfall,
		}
	}

	batch := &entity.LabourBatch{
		Reference:    uuid.NewString(),
		ProjectID:    submission.ProjectID,
		PhaseID:      submission.PhaseID,
		SubmissionID: &submission.ID,
	}

	// Per-work-item and per-equipment deltas are grouped and summed across
	// the batch's entries so each aggregate receives one delta.
	workItemHours := make(map[int64]float64)
	workItemCost := make(map[int64]int64)
	equipmentHours := make(map[int64]float64)
	var entryIDs []int64

	steps := []Step{
		{
			Name: "insert-batch",
			Run: func(txCtx context.Context) error {
				return s.batches.Create(txCtx, batch)
			},
		},
	}

	for i := range lines {
		line := lines[i]
		steps = append(steps, Step{
			Name: "insert-batch-entry",
			Run: func(txCtx context.Context) error {
				worker, err := s.workers.ResolveOrCreate(txCtx, line.WorkerName, line.Employer, line.Trade)
				if err != nil {
					return err
				}

				entry := &entity.LabourEntry{
					ProjectID:   submission.ProjectID,
					PhaseID:     submission.PhaseID,
					WorkerID:    worker.ID,
					WorkItemID:  line.WorkItemID,
					EquipmentID: line.EquipmentID,
					BatchID:     &batch.ID,
					WorkDate:    submission.ReportDate,
					Hours:       line.Hours,
					HourlyRate:  line.HourlyRate,
					TotalCost:   line.Cost(),
					Status:      entity.EntryStatusApproved,
				}
				if err := s.entries.Create(txCtx, entry); err != nil {
					return err
				}

				entryIDs = append(entryIDs, entry.ID)
				if line.WorkItemID != nil {
					workItemHours[*line.WorkItemID] += line.Hours
					workItemCost[*line.WorkItemID] += line.Cost()
				}
				if line.EquipmentID != nil {
					equipmentHours[*line.EquipmentID] += line.Hours
				}
				return nil
			},
		})
	}

	steps = append(steps, Step{
		Name: "update-batch-entries",
		Run: func(txCtx context.Context) error {
			batch.EntryIDs = entryIDs
			batch.EntryCount = len(entryIDs)
			batch.TotalCost = totalCost
			return s.batches.SetEntries(txCtx, batch.ID, entryIDs, totalCost)
		},
	})

	if submission.PhaseID != nil {
		phaseID := *submission.PhaseID
		steps = append(steps, Step{
			Name: "apply-phase-delta",
			Run: func(txCtx context.Context) error {
				return s.phases.ApplySpendingDelta(txCtx, phaseID, totalCost, ledger.Add)
			},
		})
	}

	steps = append(steps, Step{
		Name: "apply-project-delta",
		Run: func(txCtx context.Context) error {
			return s.projects.ApplySpendingDelta(txCtx, submission.ProjectID, totalCost, ledger.Add)
		},
	})

	steps = append(steps, Step{
		Name: "apply-work-item-deltas",
		Run: func(txCtx context.Context) error {
			for id, hours := range workItemHours {
				if err := s.workItems.ApplyProgressDelta(txCtx, id, hours, workItemCost[id], ledger.Add); err != nil {
					return err
				}
			}
			return nil
		},
	})

	steps = append(steps, Step{
		Name: "apply-equipment-deltas",
		Run: func(txCtx context.Context) error {
			for id, hours := range equipmentHours {
				if err := s.equipment.ApplyHoursDelta(txCtx, id, hours, ledger.Add); err != nil {
					return err
				}
			}
			return nil
		},
	})

	steps = append(steps, Step{
		Name: "set-submission-approved",
		Run: func(txCtx context.Context) error {
			return s.submissions.SetApproved(txCtx, submission.ID, batch.ID)
		},
	})

	steps = append(steps, Step{
		Name:        "write-audit",
		NonCritical: true,
		Run: func(txCtx context.Context) error {
			return s.audit.RecordAuditEvent(txCtx, newAuditEvent(actor, "submission.approve", "submission", submission.ID, map[string]interface{}{
				"batch_id":    batch.ID,
				"entry_count": len(entryIDs),
				"total_cost":  totalCost,
				"notes":       notes,
			}))
		},
	})

	if err := s.coordinator.Commit(ctx, steps); err != nil {
		return nil, err
	}

	submission.Status = entity.SubmissionStatusApproved
	submission.BatchID = &batch.ID

	s.reconciler.ReconcileAll(ctx, scopes)
	for id := range workItemHours {
		s.dispatcher.DispatchWorkItemRefresh(id)
	}
	s.dispatcher.DispatchSummaryRefresh(submission.ProjectID, submission.PhaseID)

	s.logger.Info("Submission approved",
		"submission_id", submission.ID,
		"batch_id", batch.ID,
		"entry_count", len(entryIDs),
		"total_cost", totalCost)

	return &ApproveSubmissionResult{
		Submission: submission,
		Batch:      batch,
		TotalCost:  totalCost,
	}, nil
}

// Reject terminally rejects a pending_review submission. The reason is
// required and must meet the configured minimum length.
func (s *submissionServiceImpl) Reject(ctx context.Context, submissionID int64, reason, actor string) (*entity.SupervisorSubmission, error) {
	if len(strings.TrimSpace(reason)) < s.cfg.MinRejectionReasonLen {
		return nil, &ledger.ReasonTooShortError{MinLen: s.cfg.MinRejectionReasonLen}
	}

	submission, err := s.loadSubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if submission.Status != entity.SubmissionStatusPendingReview {
		return nil, &ledger.NotPendingReviewError{SubmissionID: submissionID, Status: submission.Status}
	}

	err = s.coordinator.Commit(ctx, []Step{
		{
			Name: "set-submission-rejected",
			Run: func(txCtx context.Context) error {
				return s.submissions.SetRejected(txCtx, submissionID, reason)
			},
		},
		{
			Name:        "write-audit",
			NonCritical: true,
			Run: func(txCtx context.Context) error {
				return s.audit.RecordAuditEvent(txCtx, newAuditEvent(actor, "submission.reject", "submission", submissionID, map[string]interface{}{
					"reason": reason,
				}))
			},
		},
	})
	if err != nil {
		return nil, err
	}

	submission.Status = entity.SubmissionStatusRejected
	submission.RejectionReason = reason

	s.logger.Info("Submission rejected", "submission_id", submissionID)
	return submission, nil
}

// Get retrieves one submission.
func (s *submissionServiceImpl) Get(ctx context.Context, submissionID int64) (*entity.SupervisorSubmission, error) {
	return s.loadSubmission(ctx, submissionID)
}

// List retrieves a page of a project's submissions.
func (s *submissionServiceImpl) List(ctx context.Context, projectID int64, limit, offset int) ([]*entity.SupervisorSubmission, error) {
	return s.submissions.ListByProject(ctx, projectID, limit, offset)
}

// GetBatch retrieves one labour batch with its entries.
func (s *submissionServiceImpl) GetBatch(ctx context.Context, batchID int64) (*BatchDetail, error) {
	batch, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, &ledger.NotFoundError{Entity: "labour batch", ID: batchID}
	}

	entries, err := s.entries.ListByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return &BatchDetail{Batch: batch, Entries: entries}, nil
}

func (s *submissionServiceImpl) loadSubmission(ctx context.Context, id int64) (*entity.SupervisorSubmission, error) {
	submission, err := s.submissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, &ledger.NotFoundError{Entity: "submission", ID: id}
	}
	return submission, nil
}
