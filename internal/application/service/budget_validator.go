package service

import (
	"context"
	"fmt"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

// BudgetValidator checks a proposed cost against a budget scope's remaining
// allocation. It reads without locking; callers accept the small race window
// and rely on post-commit reconciliation for exact correctness.
type BudgetValidator struct {
	projects   port.ProjectRepository
	phases     port.PhaseRepository
	categories port.IndirectCategoryRepository
	logger     Logger
}

// NewBudgetValidator creates a new budget validator
func NewBudgetValidator(
	projects port.ProjectRepository,
	phases port.PhaseRepository,
	categories port.IndirectCategoryRepository,
	logger Logger,
) *BudgetValidator {
	return &BudgetValidator{
		projects:   projects,
		phases:     phases,
		categories: categories,
		logger:     logger,
	}
}

// Validate checks one scope. A scope with no budget configured (nil or zero
// total) passes with BudgetNotSet; spending is tracked regardless.
func (v *BudgetValidator) Validate(ctx context.Context, scope ledger.ScopeRef, proposedCents int64) (*ledger.BudgetValidation, error) {
	budgetTotal, actualSpending, err := v.loadScope(ctx, scope)
	if err != nil {
		return nil, err
	}

	if budgetTotal == nil || *budgetTotal == 0 {
		return ledger.NoBudget(scope, proposedCents), nil
	}

	available := *budgetTotal - actualSpending
	if proposedCents <= available {
		return ledger.Passed(scope, available, proposedCents), nil
	}

	v.logger.Info("Budget validation failed",
		"scope", scope.String(),
		"available", available,
		"required", proposedCents)
	return ledger.Exceeded(scope, available, proposedCents), nil
}

// ValidateAll checks each scope in order and returns the first failing
// validation, or the first scope's validation when all pass.
func (v *BudgetValidator) ValidateAll(ctx context.Context, scopes []ledger.ScopeRef, proposedCents int64) (*ledger.BudgetValidation, error) {
	var primary *ledger.BudgetValidation
	for _, scope := range scopes {
		result, err := v.Validate(ctx, scope, proposedCents)
		if err != nil {
			return nil, err
		}
		if !result.IsValid {
			return result, nil
		}
		if primary == nil {
			primary = result
		}
	}
	return primary, nil
}

func (v *BudgetValidator) loadScope(ctx context.Context, scope ledger.ScopeRef) (*int64, int64, error) {
	switch scope.Kind {
	case ledger.ScopeProject:
		p, err := v.projects.GetByID(ctx, scope.ID)
		if err != nil {
			return nil, 0, err
		}
		if p == nil {
			return nil, 0, &ledger.NotFoundError{Entity: "project", ID: scope.ID}
		}
		return p.BudgetTotal, p.ActualSpending, nil

	case ledger.ScopePhase:
		ph, err := v.phases.GetByID(ctx, scope.ID)
		if err != nil {
			return nil, 0, err
		}
		if ph == nil {
			return nil, 0, &ledger.NotFoundError{Entity: "phase", ID: scope.ID}
		}
		return ph.BudgetTotal, ph.ActualSpending, nil

	case ledger.ScopeIndirectCategory:
		c, err := v.categories.GetByID(ctx, scope.ID)
		if err != nil {
			return nil, 0, err
		}
		if c == nil {
			return nil, 0, &ledger.NotFoundError{Entity: "indirect category", ID: scope.ID}
		}
		return c.BudgetTotal, c.ActualSpending, nil
	}

	return nil, 0, fmt.Errorf("unknown scope kind %q", scope.Kind)
}
