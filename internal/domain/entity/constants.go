package entity

// Status constants for LabourEntry
const (
	EntryStatusDraft           = "draft"
	EntryStatusPendingApproval = "pending_approval"
	EntryStatusApproved        = "approved"
	EntryStatusPaid            = "paid"
	EntryStatusRejected        = "rejected"
	EntryStatusCancelled       = "cancelled"
)

// Status constants for SupervisorSubmission
const (
	SubmissionStatusDraft         = "draft"
	SubmissionStatusPendingReview = "pending_review"
	SubmissionStatusApproved      = "approved"
	SubmissionStatusRejected      = "rejected"
)

// Derived status constants for WorkItem
const (
	WorkItemStatusNotStarted = "not_started"
	WorkItemStatusInProgress = "in_progress"
	WorkItemStatusCompleted  = "completed"
)

// Scope type constants for cost summaries and reconciliation
const (
	ScopeProject          = "project"
	ScopePhase            = "phase"
	ScopeIndirectCategory = "indirect_category"
)

// EntrySpendingStatuses are the entry statuses that count toward a scope's
// actual spending. Cancelled and rejected entries never contribute.
var EntrySpendingStatuses = []string{
	EntryStatusApproved,
	EntryStatusPaid,
}
