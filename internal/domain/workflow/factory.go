package workflow

import (
	"fmt"

	"github.com/hardhat-systems/siteledger/internal/domain/entity"
)

// NewLabourEntryMachine builds the labour entry lifecycle machine positioned
// at the entry's current status:
//
//	draft -> pending_approval -> approved -> paid
//	pending_approval -> rejected
//	draft, pending_approval -> cancelled
//	rejected -> draft (reopen for edit)
//
// The transition into approved is the only one that may trigger spending
// mutation; callers enforce that an entry never contributes twice.
func NewLabourEntryMachine(status string) (StateMachine, error) {
	state, err := entryStateFromStatus(status)
	if err != nil {
		return nil, err
	}

	builder := NewBuilder()

	builder.Configure(StateDraft).
		Permit(TriggerSubmit, StatePendingApproval).
		Permit(TriggerCancel, StateCancelled)

	builder.Configure(StatePendingApproval).
		Permit(TriggerApprove, StateApproved).
		Permit(TriggerReject, StateRejected).
		Permit(TriggerCancel, StateCancelled)

	builder.Configure(StateApproved).
		Permit(TriggerPay, StatePaid)

	builder.Configure(StateRejected).
		Permit(TriggerReopen, StateDraft)

	return builder.Build(state), nil
}

// NewSubmissionMachine builds the supervisor submission lifecycle machine:
//
//	draft -> pending_review -> approved | rejected
//
// Both approved and rejected are terminal.
func NewSubmissionMachine(status string) (StateMachine, error) {
	state, err := submissionStateFromStatus(status)
	if err != nil {
		return nil, err
	}

	builder := NewBuilder()

	builder.Configure(StateSubmissionDraft).
		Permit(TriggerSubmit, StatePendingReview)

	builder.Configure(StatePendingReview).
		Permit(TriggerApprove, StateSubmissionApproved).
		Permit(TriggerReject, StateSubmissionRejected)

	return builder.Build(state), nil
}

// EntryStatus converts a machine state back to the persisted entry status.
func EntryStatus(s State) string {
	return string(s)
}

// SubmissionStatus converts a machine state back to the persisted submission status.
func SubmissionStatus(s State) string {
	switch s {
	case StateSubmissionDraft:
		return entity.SubmissionStatusDraft
	case StatePendingReview:
		return entity.SubmissionStatusPendingReview
	case StateSubmissionApproved:
		return entity.SubmissionStatusApproved
	case StateSubmissionRejected:
		return entity.SubmissionStatusRejected
	}
	return string(s)
}

func entryStateFromStatus(status string) (State, error) {
	state := State(status)
	switch state {
	case StateDraft, StatePendingApproval, StateApproved, StatePaid, StateRejected, StateCancelled:
		return state, nil
	}
	return "", fmt.Errorf("%w: unknown labour entry status %q", ErrInvalidState, status)
}

func submissionStateFromStatus(status string) (State, error) {
	switch status {
	case entity.SubmissionStatusDraft:
		return StateSubmissionDraft, nil
	case entity.SubmissionStatusPendingReview:
		return StatePendingReview, nil
	case entity.SubmissionStatusApproved:
		return StateSubmissionApproved, nil
	case entity.SubmissionStatusRejected:
		return StateSubmissionRejected, nil
	}
	return "", fmt.Errorf("%w: unknown submission status %q", ErrInvalidState, status)
}
