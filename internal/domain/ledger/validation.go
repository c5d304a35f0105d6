package ledger

import "fmt"

// BudgetValidation is the result of checking a proposed cost against one
// budget scope. When BudgetNotSet is true the scope has no configured budget
// and the check passes; the cost is still tracked so that later
// budget-setting can reconcile against real history.
type BudgetValidation struct {
	Scope        ScopeRef `json:"scope"`
	IsValid      bool     `json:"is_valid"`
	BudgetNotSet bool     `json:"budget_not_set"`
	Available    int64    `json:"available"`
	Required     int64    `json:"required"`
	Shortfall    int64    `json:"shortfall"`
	Message      string   `json:"message,omitempty"`
}

// Passed returns a passing validation for a scope with budget configured.
func Passed(scope ScopeRef, available, required int64) *BudgetValidation {
	return &BudgetValidation{
		Scope:     scope,
		IsValid:   true,
		Available: available,
		Required:  required,
	}
}

// NoBudget returns a passing validation for a scope without a budget.
func NoBudget(scope ScopeRef, required int64) *BudgetValidation {
	return &BudgetValidation{
		Scope:        scope,
		IsValid:      true,
		BudgetNotSet: true,
		Required:     required,
		Message:      fmt.Sprintf("no budget configured for %s; spending will be tracked", scope),
	}
}

// Exceeded returns a failing validation with the exact shortfall.
func Exceeded(scope ScopeRef, available, required int64) *BudgetValidation {
	shortfall := required - available
	return &BudgetValidation{
		Scope:     scope,
		IsValid:   false,
		Available: available,
		Required:  required,
		Shortfall: shortfall,
		Message: fmt.Sprintf("budget exceeded for %s: required %d, available %d, shortfall %d",
			scope, required, available, shortfall),
	}
}
