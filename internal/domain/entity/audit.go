package entity

import "time"

// AuditEvent is a write-only record of a ledger action. The engine treats
// the audit log as a side channel; failures to record are logged, not raised.
type AuditEvent struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	Detail     string    `json:"detail"`
	CreatedAt  time.Time `json:"created_at"`
}

// CostSummary is a denormalized rollup of committed entry costs for one
// scope, refreshed asynchronously for fast read paths.
type CostSummary struct {
	ScopeType  string    `json:"scope_type"`
	ScopeID    int64     `json:"scope_id"`
	TotalCost  int64     `json:"total_cost"`
	EntryCount int       `json:"entry_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}
