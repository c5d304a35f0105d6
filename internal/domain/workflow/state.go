package workflow

// State represents a lifecycle state of a ledger record
type State string

// LabourEntry lifecycle states
const (
	StateDraft           State = "draft"
	StatePendingApproval State = "pending_approval"
	StateApproved        State = "approved"
	StatePaid            State = "paid"
	StateRejected        State = "rejected"
	StateCancelled       State = "cancelled"
)

// SupervisorSubmission lifecycle states
const (
	StateSubmissionDraft    State = "submission_draft"
	StatePendingReview      State = "pending_review"
	StateSubmissionApproved State = "submission_approved"
	StateSubmissionRejected State = "submission_rejected"
)

var validStates = map[State]bool{
	StateDraft:              true,
	StatePendingApproval:    true,
	StateApproved:           true,
	StatePaid:               true,
	StateRejected:           true,
	StateCancelled:          true,
	StateSubmissionDraft:    true,
	StatePendingReview:      true,
	StateSubmissionApproved: true,
	StateSubmissionRejected: true,
}

var terminalStates = map[State]bool{
	StatePaid:               true,
	StateCancelled:          true,
	StateSubmissionApproved: true,
	StateSubmissionRejected: true,
}

// IsTerminal returns true if the state permits no further transitions
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// IsValid returns true if the state is a known lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}
