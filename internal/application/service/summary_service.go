package service

import (
	"context"
	"time"

	"github.com/hardhat-systems/siteledger/internal/application/port"
	"github.com/hardhat-systems/siteledger/internal/domain/entity"
	"github.com/hardhat-systems/siteledger/internal/domain/ledger"
)

// SummaryService maintains the denormalized cost summary cache used by fast
// read paths and exports. Refreshes run detached from the triggering commit;
// a stale summary is acceptable, a failed commit is not.
type SummaryService struct {
	entries   port.LabourEntryRepository
	summaries port.SummaryRepository
	logger    Logger
}

// NewSummaryService creates a new summary service
func NewSummaryService(entries port.LabourEntryRepository, summaries port.SummaryRepository, logger Logger) *SummaryService {
	return &SummaryService{
		entries:   entries,
		summaries: summaries,
		logger:    logger,
	}
}

// RefreshScope recomputes and upserts the summary row for one scope.
func (s *SummaryService) RefreshScope(ctx context.Context, scope ledger.ScopeRef) error {
	totals, err := s.entries.TotalsForScope(ctx, scope)
	if err != nil {
		return err
	}

	return s.summaries.Upsert(ctx, &entity.CostSummary{
		ScopeType:  string(scope.Kind),
		ScopeID:    scope.ID,
		TotalCost:  totals.TotalCost,
		EntryCount: totals.EntryCount,
		UpdatedAt:  time.Now(),
	})
}

// Get returns the cached summary for a scope, or nil when none exists yet.
func (s *SummaryService) Get(ctx context.Context, scopeType string, scopeID int64) (*entity.CostSummary, error) {
	return s.summaries.Get(ctx, scopeType, scopeID)
}
