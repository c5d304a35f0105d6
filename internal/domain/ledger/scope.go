package ledger

import "fmt"

// ScopeKind identifies which kind of budget scope a reference points at.
type ScopeKind string

const (
	ScopeProject          ScopeKind = "project"
	ScopePhase            ScopeKind = "phase"
	ScopeIndirectCategory ScopeKind = "indirect_category"
)

// ScopeRef identifies one budget scope: a project, a construction phase, or
// an indirect-cost category.
type ScopeRef struct {
	Kind ScopeKind `json:"kind"`
	ID   int64     `json:"id"`
}

// ProjectScope returns a ScopeRef for a project.
func ProjectScope(id int64) ScopeRef {
	return ScopeRef{Kind: ScopeProject, ID: id}
}

// PhaseScope returns a ScopeRef for a phase.
func PhaseScope(id int64) ScopeRef {
	return ScopeRef{Kind: ScopePhase, ID: id}
}

// CategoryScope returns a ScopeRef for an indirect-cost category.
func CategoryScope(id int64) ScopeRef {
	return ScopeRef{Kind: ScopeIndirectCategory, ID: id}
}

// String returns a human-readable scope description.
func (s ScopeRef) String() string {
	return fmt.Sprintf("%s/%d", s.Kind, s.ID)
}

// Direction is the sign of a spending or progress delta. Aggregates are only
// ever mutated by signed deltas, never absolute overwrites.
type Direction string

const (
	Add      Direction = "add"
	Subtract Direction = "subtract"
)

// Apply returns amount with the direction's sign applied.
func (d Direction) Apply(amount int64) int64 {
	if d == Subtract {
		return -amount
	}
	return amount
}

// ApplyHours returns hours with the direction's sign applied.
func (d Direction) ApplyHours(hours float64) float64 {
	if d == Subtract {
		return -hours
	}
	return hours
}
