package entity

import "time"

// Project is the top-level budget scope. BudgetTotal is nil when no budget
// has been configured; spending is still tracked in that case.
type Project struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	BudgetTotal    *int64    `json:"budget_total,omitempty"`
	ActualSpending int64     `json:"actual_spending"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Phase is a construction-phase budget scope under a project.
type Phase struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	Name           string    `json:"name"`
	BudgetTotal    *int64    `json:"budget_total,omitempty"`
	ActualSpending int64     `json:"actual_spending"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IndirectCategory is an indirect-cost budget scope (overhead labour lands
// here instead of a phase).
type IndirectCategory struct {
	ID             int64     `json:"id"`
	ProjectID      int64     `json:"project_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	BudgetTotal    *int64    `json:"budget_total,omitempty"`
	ActualSpending int64     `json:"actual_spending"`
	CreatedAt      time.Time `json:"created_at"`
}
