package service

import (
	"context"
	"strings"
	"time"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/config"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
	"github.com/hardhat-systems/siteledger/internal/domain/workflow"
)

// CreateLabourEntryInput carries the attribution for a new labour entry.
// PhaseID nil marks overhead labour charged to an indirect-cost category;
// CategoryCode may name the category explicitly, otherwise the configured
// default applies.
type CreateLabourEntryInput struct {
	ProjectID    int64      `json:"project_id"`
	PhaseID      *int64     `json:"phase_id,omitempty"`
	CategoryCode string     `json:"category_code,omitempty"`
	WorkerName   string     `json:"worker_name"`
	Employer     string     `json:"employer,omitempty"`
	Trade        string     `json:"trade,omitempty"`
	WorkItemID   *int64     `json:"work_item_id,omitempty"`
	EquipmentID  *int64     `json:"equipment_id,omitempty"`
	WorkDate     time.Time  `json:"work_date"`
	Hours        float64    `json:"hours"`
	HourlyRate   int64      `json:"hourly_rate"`
	Notes        string     `json:"notes,omitempty"`
	Actor        string     `json:"-"`
}

// LabourEntryResult is the outcome of a create or approve operation.
type LabourEntryResult struct {
	Entry            *entity.LabourEntry      `json:"entry"`
	BudgetValidation *ledger.BudgetValidation `json:"budget_validation"`
}

// LedgerService drives the direct labour entry flows: creation (with
// auto-approval in single-approver deployments) and explicit approval.
type LedgerService interface {
	CreateLabourEntry(ctx context.Context, input CreateLabourEntryInput) (*LabourEntryResult, error)
	ApproveLabourEntry(ctx context.Context, entryID int64, actor string) (*LabourEntryResult, error)
	CancelLabourEntry(ctx context.Context, entryID int64, actor string) (*entity.LabourEntry, error)
	GetLabourEntry(ctx context.Context, entryID int64) (*entity.LabourEntry, error)
	ListLabourEntries(ctx context.Context, projectID int64, limit, offset int) ([]*entity.LabourEntry, error)
}

type ledgerServiceImpl struct {
	projects    port.ProjectRepository
	phases      port.PhaseRepository
	categories  port.IndirectCategoryRepository
	workers     port.WorkerRepository
	workItems   port.WorkItemRepository
	equipment   port.EquipmentRepository
	entries     port.LabourEntryRepository
	validator   *BudgetValidator
	coordinator *Coordinator
	reconciler  *ReconcileService
	audit       port.AuditSink
	dispatcher  port.RefreshDispatcher
	cfg         config.LedgerConfig
	logger      Logger
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(
	projects port.ProjectRepository,
	phases port.PhaseRepository,
	categories port.IndirectCategoryRepository,
	workers port.WorkerRepository,
	workItems port.WorkItemRepository,
	equipment port.EquipmentRepository,
	entries port.LabourEntryRepository,
	validator *BudgetValidator,
	coordinator *Coordinator,
	reconciler *ReconcileService,
	audit port.AuditSink,
	dispatcher port.RefreshDispatcher,
	cfg config.LedgerConfig,
	logger Logger,
) LedgerService {
	return &ledgerServiceImpl{
		projects:    projects,
		phases:      phases,
		categories:  categories,
		workers:     workers,
		workItems:   workItems,
		equipment:   equipment,
		entries:     entries,
		validator:   validator,
		coordinator: coordinator,
		reconciler:  reconciler,
		audit:       audit,
		dispatcher:  dispatcher,
		cfg:         cfg,
		logger:      logger,
	}
}

// CreateLabourEntry validates attribution and budget, then commits the entry
// with its spending deltas in one transaction. With auto-approval disabled
// the entry lands in pending_approval and no spending is applied yet.
func (s *ledgerServiceImpl) CreateLabourEntry(ctx context.Context, input CreateLabourEntryInput) (*LabourEntryResult, error) {
	if err := s.checkInput(input); err != nil {
		return nil, err
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &ledger.NotFoundError{Entity: "project", ID: input.ProjectID}
	}

	entry := &entity.LabourEntry{
		ProjectID:   input.ProjectID,
		PhaseID:     input.PhaseID,
		WorkItemID:  input.WorkItemID,
		EquipmentID: input.EquipmentID,
		WorkDate:    input.WorkDate,
		Hours:       input.Hours,
		HourlyRate:  input.HourlyRate,
		TotalCost:   ledger.CostCents(input.Hours, input.HourlyRate),
		Status:      entity.EntryStatusPendingApproval,
		Notes:       input.Notes,
	}

	if input.PhaseID != nil {
		phase, err := s.phases.GetByID(ctx, *input.PhaseID)
		if err != nil {
			return nil, err
		}
		if phase == nil {
			return nil, &ledger.NotFoundError{Entity: "phase", ID: *input.PhaseID}
		}
		if phase.ProjectID != input.ProjectID {
			return nil, &ledger.ValidationError{Field: "phase_id", Reason: "phase belongs to a different project"}
		}
	} else {
		// Overhead labour: an explicit category code wins, the configured
		// default applies only when none was supplied.
		code := input.CategoryCode
		if code == "" {
			code = s.cfg.DefaultOverheadCategory
		}
		category, err := s.categories.GetByCode(ctx, input.ProjectID, code)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, &ledger.ValidationError{Field: "category_code", Reason: "unknown indirect-cost category " + code}
		}
		entry.CategoryID = &category.ID
	}

	validation, err := s.validator.ValidateAll(ctx, s.spendingScopes(entry), entry.TotalCost)
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

	steps := []Step{
		{
			Name: "resolve-worker",
			Run: func(txCtx context.Context) error {
				worker, err := s.workers.ResolveOrCreate(txCtx, input.WorkerName, input.Employer, input.Trade)
				if err != nil {
					return err
				}
				entry.WorkerID = worker.ID
				return nil
			},
		},
		{
			Name: "insert-entry",
			Run: func(txCtx context.Context) error {
				return s.entries.Create(txCtx, entry)
			},
		},
	}

	if s.cfg.AutoApprove {
		steps = append(steps, s.spendingSteps(entry)...)
		steps = append(steps, Step{
			Name: "set-status-approved",
			Run: func(txCtx context.Context) error {
				entry.Status = entity.EntryStatusApproved
				return s.entries.UpdateStatus(txCtx, entry.ID, entity.EntryStatusApproved)
			},
		})
	}

	steps = append(steps, Step{
		Name:        "write-audit",
		NonCritical: true,
		Run: func(txCtx context.Context) error {
			return s.audit.RecordAuditEvent(txCtx, newAuditEvent(input.Actor, "labour_entry.create", "labour_entry", entry.ID, map[string]interface{}{
				"project_id": entry.ProjectID,
				"total_cost": entry.TotalCost,
				"status":     entry.Status,
			}))
		},
	})

	if err := s.coordinator.Commit(ctx, steps); err != nil {
		return nil, err
	}

	if s.cfg.AutoApprove {
		s.afterSpendingCommit(ctx, entry)
	}

	s.logger.Info("Labour entry created",
		"entry_id", entry.ID,
		"project_id", entry.ProjectID,
		"total_cost", entry.TotalCost,
		"status", entry.Status)

	return &LabourEntryResult{Entry: entry, BudgetValidation: validation}, nil
}

// ApproveLabourEntry applies the entry's spending deltas and marks it
// approved. An entry never contributes to spending twice: a second approval
// attempt fails with AlreadyApprovedError and leaves the totals unchanged.
func (s *ledgerServiceImpl) ApproveLabourEntry(ctx context.Context, entryID int64, actor string) (*LabourEntryResult, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &ledger.NotFoundError{Entity: "labour entry", ID: entryID}
	}

	if entry.Status == entity.EntryStatusApproved || entry.Status == entity.EntryStatusPaid {
		return nil, &ledger.AlreadyApprovedError{EntryID: entryID, Status: entry.Status}
	}

	machine, err := workflow.NewLabourEntryMachine(entry.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerApprove); err != nil {
		return nil, &ledger.ValidationError{Field: "status", Reason: err.Error()}
	}

	if entry.IsOverhead() && entry.CategoryID == nil {
		category, err := s.categories.GetByCode(ctx, entry.ProjectID, s.cfg.DefaultOverheadCategory)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, &ledger.ValidationError{Field: "category_code", Reason: "no default indirect-cost category configured for project"}
		}
		entry.CategoryID = &category.ID
	}

	validation, err := s.validator.ValidateAll(ctx, s.spendingScopes(entry), entry.TotalCost)
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

	newStatus := workflow.EntryStatus(machine.State())
	steps := append(s.spendingSteps(entry), Step{
		Name: "set-status-approved",
		Run: func(txCtx context.Context) error {
			entry.Status = newStatus
			return s.entries.UpdateStatus(txCtx, entry.ID, newStatus)
		},
	}, Step{
		Name:        "write-audit",
		NonCritical: true,
		Run: func(txCtx context.Context) error {
			return s.audit.RecordAuditEvent(txCtx, newAuditEvent(actor, "labour_entry.approve", "labour_entry", entry.ID, map[string]interface{}{
				"total_cost": entry.TotalCost,
			}))
		},
	})

	if err := s.coordinator.Commit(ctx, steps); err != nil {
		return nil, err
	}

	s.afterSpendingCommit(ctx, entry)

	s.logger.Info("Labour entry approved", "entry_id", entry.ID, "total_cost", entry.TotalCost)
	return &LabourEntryResult{Entry: entry, BudgetValidation: validation}, nil
}

// CancelLabourEntry cancels a draft or pending entry. Approved entries are
// immutable; their spending stays on the ledger.
func (s *ledgerServiceImpl) CancelLabourEntry(ctx context.Context, entryID int64, actor string) (*entity.LabourEntry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &ledger.NotFoundError{Entity: "labour entry", ID: entryID}
	}

	machine, err := workflow.NewLabourEntryMachine(entry.Status)
	if err != nil {
		return nil, err
	}
	if err := machine.Fire(ctx, workflow.TriggerCancel); err != nil {
		return nil, &ledger.ValidationError{Field: "status", Reason: err.Error()}
	}

	newStatus := workflow.EntryStatus(machine.State())
	err = s.coordinator.Commit(ctx, []Step{
		{
			Name: "set-status-cancelled",
			Run: func(txCtx context.Context) error {
				entry.Status = newStatus
				return s.entries.UpdateStatus(txCtx, entry.ID, newStatus)
			},
		},
		{
			Name:        "write-audit",
			NonCritical: true,
			Run: func(txCtx context.Context) error {
				return s.audit.RecordAuditEvent(txCtx, newAuditEvent(actor, "labour_entry.cancel", "labour_entry", entry.ID, nil))
			},
		},
	})
	if err != nil {
		return nil, err
	}

	return entry, nil
}

// GetLabourEntry retrieves one entry.
func (s *ledgerServiceImpl) GetLabourEntry(ctx context.Context, entryID int64) (*entity.LabourEntry, error) {
	entry, err := s.entries.GetByID(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, &ledger.NotFoundError{Entity: "labour entry", ID: entryID}
	}
	return entry, nil
}

// ListLabourEntries retrieves a page of a project's entries.
func (s *ledgerServiceImpl) ListLabourEntries(ctx context.Context, projectID int64, limit, offset int) ([]*entity.LabourEntry, error) {
	return s.entries.ListByProject(ctx, projectID, limit, offset)
}

func (s *ledgerServiceImpl) checkInput(input CreateLabourEntryInput) error {
	if input.ProjectID <= 0 {
		return &ledger.ValidationError{Field: "project_id", Reason: "required"}
	}
	if strings.TrimSpace(input.WorkerName) == "" {
		return &ledger.ValidationError{Field: "worker_name", Reason: "required"}
	}
	if input.Hours <= 0 {
		return &ledger.ValidationError{Field: "hours", Reason: "must be positive"}
	}
	if input.HourlyRate <= 0 {
		return &ledger.ValidationError{Field: "hourly_rate", Reason: "must be positive"}
	}
	if input.WorkDate.IsZero() {
		return &ledger.ValidationError{Field: "work_date", Reason: "required"}
	}
	return nil
}

// spendingScopes returns the budget scopes an entry's cost counts against,
// most specific first: phase (or indirect category for overhead), then project.
func (s *ledgerServiceImpl) spendingScopes(entry *entity.LabourEntry) []ledger.ScopeRef {
	var scopes []ledger.ScopeRef
	if entry.PhaseID != nil {
		scopes = append(scopes, ledger.PhaseScope(*entry.PhaseID))
	} else if entry.CategoryID != nil {
		scopes = append(scopes, ledger.CategoryScope(*entry.CategoryID))
	}
	return append(scopes, ledger.ProjectScope(entry.ProjectID))
}

// spendingSteps builds the aggregate delta steps for one entry, in the
// canonical order: phase, indirect category, project, work item, equipment.
func (s *ledgerServiceImpl) spendingSteps(entry *entity.LabourEntry) []Step {
	var steps []Step

	if entry.PhaseID != nil {
		phaseID := *entry.PhaseID
		steps = append(steps, Step{
			Name: "apply-phase-delta",
			Run: func(txCtx context.Context) error {
				return s.phases.ApplySpendingDelta(txCtx, phaseID, entry.TotalCost, ledger.Add)
			},
		})
	}

	if entry.CategoryID != nil {
		categoryID := *entry.CategoryID
		steps = append(steps, Step{
			Name: "apply-indirect-delta",
			Run: func(txCtx context.Context) error {
				return s.categories.ApplySpendingDelta(txCtx, categoryID, entry.TotalCost, ledger.Add)
			},
		})
	}

	steps = append(steps, Step{
		Name: "apply-project-delta",
		Run: func(txCtx context.Context) error {
			return s.projects.ApplySpendingDelta(txCtx, entry.ProjectID, entry.TotalCost, ledger.Add)
		},
	})

	if entry.WorkItemID != nil {
		workItemID := *entry.WorkItemID
		steps = append(steps, Step{
			Name: "apply-work-item-delta",
			Run: func(txCtx context.Context) error {
				return s.workItems.ApplyProgressDelta(txCtx, workItemID, entry.Hours, entry.TotalCost, ledger.Add)
			},
		})
	}

	if entry.EquipmentID != nil {
		equipmentID := *entry.EquipmentID
		steps = append(steps, Step{
			Name: "apply-equipment-delta",
			Run: func(txCtx context.Context) error {
				return s.equipment.ApplyHoursDelta(txCtx, equipmentID, entry.Hours, ledger.Add)
			},
		})
	}

	return steps
}

// afterSpendingCommit runs the post-commit corrective and best-effort work:
// synchronous reconciliation of every touched scope, then detached refresh of
// derived work-item status and summary caches.
func (s *ledgerServiceImpl) afterSpendingCommit(ctx context.Context, entry *entity.LabourEntry) {
	s.reconciler.ReconcileAll(ctx, s.spendingScopes(entry))

	if entry.WorkItemID != nil {
		s.dispatcher.DispatchWorkItemRefresh(*entry.WorkItemID)
	}
	s.dispatcher.DispatchSummaryRefresh(entry.ProjectID, entry.PhaseID)
}
