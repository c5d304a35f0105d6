package entity

import "time"

// SupervisorSubmission is field-reported labour data awaiting review.
// On approval it is the origin of exactly one LabourBatch; BatchID is set
// once and never changes afterward.
type SupervisorSubmission struct {
	ID              int64     `json:"id"`
	ProjectID       int64     `json:"project_id"`
	PhaseID         *int64    `json:"phase_id,omitempty"`
	Supervisor      string    `json:"supervisor"`
	ReportDate      time.Time `json:"report_date"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	BatchID         *int64    `json:"batch_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Editable reports whether the submission may still be modified.
func (s *SupervisorSubmission) Editable() bool {
	return s.Status == SubmissionStatusDraft || s.Status == SubmissionStatusPendingReview
}

// SubmissionLine is one reported line of labour inside a submission.
// Lines become labour entries when the submission is approved.
type SubmissionLine struct {
	ID           int64   `json:"id"`
	SubmissionID int64   `json:"submission_id"`
	WorkerName   string  `json:"worker_name"`
	Employer     string  `json:"employer"`
	Trade        string  `json:"trade"`
	Hours        float64 `json:"hours"`
	HourlyRate   int64   `json:"hourly_rate"`
	WorkItemID   *int64  `json:"work_item_id,omitempty"`
	EquipmentID  *int64  `json:"equipment_id,omitempty"`
}

// Cost returns the line's total cost in cents.
func (l *SubmissionLine) Cost() int64 {
	return int64(l.Hours*float64(l.HourlyRate) + 0.5)
}
