package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hardhat-systems/siteledger/internal/domain/entity"
)

// newAuditEvent builds an audit record for a ledger action. Detail is a
// small diff-style map serialized to JSON.
func newAuditEvent(actor, action, entityType string, entityID int64, detail map[string]interface{}) *entity.AuditEvent {
	payload := "{}"
	if detail != nil {
		if raw, err := json.Marshal(detail); err == nil {
			payload = string(raw)
		}
	}

	return &entity.AuditEvent{
		ID:         uuid.NewString(),
		Actor:      actor,
		Action:     action,
		EntityType: entityType,
		EntityID:   fmt.Sprintf("%d", entityID),
		Detail:     payload,
		CreatedAt:  time.Now(),
	}
}
