package service

import (
	"context"
	"fmt"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

// ReconcileService re-derives a scope's actual spending directly from its
// committed labour entries and overwrites the aggregate with that sum. This
// is the correctness backstop for the additive-delta approach: concurrent
// commits racing each other, or entries voided out of band, drift the
// aggregate and reconciliation corrects it. Idempotent.
type ReconcileService struct {
	entries    port.LabourEntryRepository
	projects   port.ProjectRepository
	phases     port.PhaseRepository
	categories port.IndirectCategoryRepository
	logger     Logger
}

// NewReconcileService creates a new reconciliation service
func NewReconcileService(
	entries port.LabourEntryRepository,
	projects port.ProjectRepository,
	phases port.PhaseRepository,
	categories port.IndirectCategoryRepository,
	logger Logger,
) *ReconcileService {
	return &ReconcileService{
		entries:    entries,
		projects:   projects,
		phases:     phases,
		categories: categories,
		logger:     logger,
	}
}

// Reconcile recomputes and persists the scope's spending total, returning it.
func (s *ReconcileService) Reconcile(ctx context.Context, scope ledger.ScopeRef) (int64, error) {
	totals, err := s.entries.TotalsForScope(ctx, scope)
	if err != nil {
		return 0, fmt.Errorf("sum entries for %s: %w", scope, err)
	}

	switch scope.Kind {
	case ledger.ScopeProject:
		err = s.projects.SetActualSpending(ctx, scope.ID, totals.TotalCost)
	case ledger.ScopePhase:
		err = s.phases.SetActualSpending(ctx, scope.ID, totals.TotalCost)
	case ledger.ScopeIndirectCategory:
		err = s.categories.SetActualSpending(ctx, scope.ID, totals.TotalCost)
	default:
		return 0, fmt.Errorf("unknown scope kind %q", scope.Kind)
	}
	if err != nil {
		return 0, fmt.Errorf("write reconciled total for %s: %w", scope, err)
	}

	s.logger.Info("Scope reconciled", "scope", scope.String(), "total", totals.TotalCost)
	return totals.TotalCost, nil
}

// ReconcileAll reconciles each scope in order, logging failures without
// stopping; the caller's commit has already succeeded.
func (s *ReconcileService) ReconcileAll(ctx context.Context, scopes []ledger.ScopeRef) {
	for _, scope := range scopes {
		if _, err := s.Reconcile(ctx, scope); err != nil {
			s.logger.Error("Post-commit reconciliation failed", "scope", scope.String(), "error", err)
		}
	}
}
