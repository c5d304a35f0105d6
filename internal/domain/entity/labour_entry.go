package entity

import "time"

// LabourEntry represents one unit of paid work. A nil PhaseID marks overhead
// labour charged to an indirect-cost category instead of a phase. Approved
// entries are never hard-deleted; they exit via cancelled/rejected statuses.
type LabourEntry struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	PhaseID     *int64    `json:"phase_id,omitempty"`
	CategoryID  *int64    `json:"category_id,omitempty"`
	WorkerID    int64     `json:"worker_id"`
	WorkItemID  *int64    `json:"work_item_id,omitempty"`
	EquipmentID *int64    `json:"equipment_id,omitempty"`
	BatchID     *int64    `json:"batch_id,omitempty"`
	WorkDate    time.Time `json:"work_date"`
	Hours       float64   `json:"hours"`
	HourlyRate  int64     `json:"hourly_rate"`
	TotalCost   int64     `json:"total_cost"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOverhead reports whether the entry is indirect/overhead labour.
func (e *LabourEntry) IsOverhead() bool {
	return e.PhaseID == nil
}

// CountsTowardSpending reports whether the entry contributes to scope spending.
func (e *LabourEntry) CountsTowardSpending() bool {
	return e.Status == EntryStatusApproved || e.Status == EntryStatusPaid
}

// Editable reports whether the entry may still be modified or deleted.
func (e *LabourEntry) Editable() bool {
	return e.Status == EntryStatusDraft || e.Status == EntryStatusRejected
}
