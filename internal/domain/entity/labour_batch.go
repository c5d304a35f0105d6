package entity

import "time"

// LabourBatch is the aggregate container created atomically alongside the
// labour entries of an approved supervisor submission. TotalCost equals the
// sum of its entries' costs at creation time.
type LabourBatch struct {
	ID           int64     `json:"id"`
	Reference    string    `json:"reference"`
	ProjectID    int64     `json:"project_id"`
	PhaseID      *int64    `json:"phase_id,omitempty"`
	SubmissionID *int64    `json:"submission_id,omitempty"`
	EntryIDs     []int64   `json:"entry_ids"`
	EntryCount   int       `json:"entry_count"`
	TotalCost    int64     `json:"total_cost"`
	CreatedAt    time.Time `json:"created_at"`
}
