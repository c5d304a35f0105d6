package ledger

import (
	"errors"
	"fmt"
)

// ErrInternal wraps transactional storage failures surfaced to callers.
var ErrInternal = errors.New("internal ledger error")

// ValidationError reports a bad or missing input field. Rejected before any
// transaction opens.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a missing entity reference.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// BudgetExceededError reports insufficient remaining budget in one scope.
// It carries enough detail for a caller to offer reducing the request or
// seeking a budget increase.
type BudgetExceededError struct {
	Scope     ScopeRef
	Available int64
	Required  int64
	Shortfall int64
}

func (e *BudgetExceededError) Error() string {
	return fmt.Sprintf("budget exceeded for %s: required %d, available %d, shortfall %d",
		e.Scope, e.Required, e.Available, e.Shortfall)
}

// AlreadyApprovedError is the idempotency guard against applying an entry's
// spending delta twice. Distinguishable from a genuine conflict.
type AlreadyApprovedError struct {
	EntryID int64
	Status  string
}

func (e *AlreadyApprovedError) Error() string {
	return fmt.Sprintf("labour entry %d already approved or paid (status %s)", e.EntryID, e.Status)
}

// NotPendingReviewError reports a submission action attempted outside
// pending_review.
type NotPendingReviewError struct {
	SubmissionID int64
	Status       string
}

func (e *NotPendingReviewError) Error() string {
	return fmt.Sprintf("submission %d is not pending review (status %s)", e.SubmissionID, e.Status)
}

// EmptyBatchError reports a submission approval with no labour lines.
type EmptyBatchError struct {
	SubmissionID int64
}

func (e *EmptyBatchError) Error() string {
	return fmt.Sprintf("submission %d has no labour lines", e.SubmissionID)
}

// MissingWorkItemError reports a submission line that lacks a required
// work-item link.
type MissingWorkItemError struct {
	SubmissionID int64
	LineID       int64
}

func (e *MissingWorkItemError) Error() string {
	return fmt.Sprintf("submission %d line %d has no work item link", e.SubmissionID, e.LineID)
}

// ReasonTooShortError reports a rejection reason below the configured minimum.
type ReasonTooShortError struct {
	MinLen int
}

func (e *ReasonTooShortError) Error() string {
	return fmt.Sprintf("rejection reason must be at least %d characters", e.MinLen)
}
