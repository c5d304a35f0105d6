package entity

import "time"

// WorkItem tracks progress against an estimate. ActualHours and ActualCost
// accumulate additive deltas from labour entries; Status is derived from the
// hours ratio and never set directly by user action.
type WorkItem struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	PhaseID        *int64    `json:"phase_id,omitempty"`
	Name           string    `json:"name"`
	EstimatedHours float64   `json:"estimated_hours"`
	ActualHours    float64   `json:"actual_hours"`
	ActualCost     int64     `json:"actual_cost"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Equipment accumulates operator hours contributed by labour entries that
// name an equipment link.
type Equipment struct {
	ID            int64     `json:"id"`
	ProjectID     int64     `json:"project_id"`
	Name          string    `json:"name"`
	OperatorHours float64   `json:"operator_hours"`
	CreatedAt     time.Time `json:"created_at"`
}
