package port

import (
	"context"

	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

// ProjectRepository defines persistence operations for Project
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id int64) (*entity.Project, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Project, error)

	// ApplySpendingDelta atomically increments or decrements actual_spending.
	// Runs inside the caller's transaction when one is on the context.
	ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error

	// SetActualSpending overwrites actual_spending with a recomputed total.
	SetActualSpending(ctx context.Context, id int64, total int64) error
}

// PhaseRepository defines persistence operations for Phase
type PhaseRepository interface {
	Create(ctx context.Context, phase *entity.Phase) error
	GetByID(ctx context.Context, id int64) (*entity.Phase, error)
	ListByProject(ctx context.Context, projectID int64) ([]*entity.Phase, error)
	ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error
	SetActualSpending(ctx context.Context, id int64, total int64) error
}

// IndirectCategoryRepository defines persistence operations for IndirectCategory
type IndirectCategoryRepository interface {
	Create(ctx context.Context, category *entity.IndirectCategory) error
	GetByID(ctx context.Context, id int64) (*entity.IndirectCategory, error)
	GetByCode(ctx context.Context, projectID int64, code string) (*entity.IndirectCategory, error)
	ApplySpendingDelta(ctx context.Context, id int64, amount int64, dir ledger.Direction) error
	SetActualSpending(ctx context.Context, id int64, total int64) error
}

// WorkerRepository defines persistence operations for Worker profiles
type WorkerRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Worker, error)

	// ResolveOrCreate returns the worker with the given identity, creating the
	// profile if absent. Idempotent on (name, employer).
	ResolveOrCreate(ctx context.Context, name, employer, trade string) (*entity.Worker, error)
}

// WorkItemRepository defines persistence operations for WorkItem
type WorkItemRepository interface {
	Create(ctx context.Context, item *entity.WorkItem) error
	GetByID(ctx context.Context, id int64) (*entity.WorkItem, error)

	// ApplyProgressDelta atomically accumulates hours and cost.
	ApplyProgressDelta(ctx context.Context, id int64, hours float64, costCents int64, dir ledger.Direction) error

	// UpdateStatus persists the derived completion status.
	UpdateStatus(ctx context.Context, id int64, status string) error
}

// EquipmentRepository defines persistence operations for Equipment
type EquipmentRepository interface {
	Create(ctx context.Context, eq *entity.Equipment) error
	GetByID(ctx context.Context, id int64) (*entity.Equipment, error)
	ApplyHoursDelta(ctx context.Context, id int64, hours float64, dir ledger.Direction) error
}

// EntryTotals is the aggregated cost and count of committed entries in a scope
type EntryTotals struct {
	TotalCost  int64 `json:"total_cost"`
	EntryCount int   `json:"entry_count"`
}

// LabourEntryRepository defines persistence operations for LabourEntry
type LabourEntryRepository interface {
	Create(ctx context.Context, e *entity.LabourEntry) error
	GetByID(ctx context.Context, id int64) (*entity.LabourEntry, error)
	ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*entity.LabourEntry, error)
	ListByBatch(ctx context.Context, batchID int64) ([]*entity.LabourEntry, error)
	UpdateStatus(ctx context.Context, id int64, status string) error

	// TotalsForScope sums total_cost over committed (approved/paid) entries
	// attributed to the scope. The reconciliation source of truth.
	TotalsForScope(ctx context.Context, scope ledger.ScopeRef) (*EntryTotals, error)
}

// LabourBatchRepository defines persistence operations for LabourBatch
type LabourBatchRepository interface {
	Create(ctx context.Context, batch *entity.LabourBatch) error
	GetByID(ctx context.Context, id int64) (*entity.LabourBatch, error)

	// SetEntries records the entry-id list and count created for the batch.
	SetEntries(ctx context.Context, id int64, entryIDs []int64, totalCost int64) error
}

// SubmissionRepository defines persistence operations for SupervisorSubmission
type SubmissionRepository interface {
	Create(ctx context.Context, s *entity.SupervisorSubmission) error
	GetByID(ctx context.Context, id int64) (*entity.SupervisorSubmission, error)
	ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*entity.SupervisorSubmission, error)
	UpdateStatus(ctx context.Context, id int64, status string) error

	// SetApproved marks the submission approved with its one-way batch back-reference.
	SetApproved(ctx context.Context, id int64, batchID int64) error

	// SetRejected marks the submission rejected with the reviewer's reason.
	SetRejected(ctx context.Context, id int64, reason string) error

	CreateLine(ctx context.Context, line *entity.SubmissionLine) error
	GetLines(ctx context.Context, submissionID int64) ([]*entity.SubmissionLine, error)
}

// SummaryRepository defines persistence operations for the denormalized
// cost summary cache
type SummaryRepository interface {
	Upsert(ctx context.Context, summary *entity.CostSummary) error
	Get(ctx context.Context, scopeType string, scopeID int64) (*entity.CostSummary, error)

	// ListByProject returns the project's snapshot plus those of its phases
	// and indirect categories.
	ListByProject(ctx context.Context, projectID int64) ([]*entity.CostSummary, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
