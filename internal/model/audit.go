package model

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records who touched which clinical entity. Best-effort side
// channel: a failed audit insert never masks the outcome of the write it
// describes.
type AuditLog struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ActorID    uuid.UUID `json:"actor_id" db:"actor_id"`
	TenantID   string    `json:"tenant_id" db:"tenant_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   string    `json:"entity_id" db:"entity_id"`
	Metadata   JSONMap   `json:"metadata" db:"metadata"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// AuditFilters narrows audit listings.
type AuditFilters struct {
	DateFilter
	ActorID    string `json:"actor_id" form:"actor_id"`
	EntityType string `json:"entity_type" form:"entity_type"`
	Limit      int    `json:"limit" form:"limit"`
}
