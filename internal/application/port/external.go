package port

import (
	"context"

	"github.com/hardhat-systems/siteledger/internal/domain/entity"
)

// AuditSink is the write-only audit-log side channel. The ledger records an
// event for every commit; a sink failure is logged by the caller, never raised.
type AuditSink interface {
	RecordAuditEvent(ctx context.Context, event *entity.AuditEvent) error
}

// RefreshDispatcher dispatches best-effort post-commit refresh work (derived
// work-item status, cost summary cache) detached from the request. Dispatch
// never blocks and never reports failure to the caller.
type RefreshDispatcher interface {
	DispatchWorkItemRefresh(workItemID int64)
	DispatchSummaryRefresh(projectID int64, phaseID *int64)
}
