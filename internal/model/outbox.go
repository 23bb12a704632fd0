package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Outbox event types. Account events drive the live session/license
// monitors; visit events feed downstream consumers (reports, folders).
const (
	EventAccountUpdated = "ACCOUNT_UPDATED"
	EventVisitCreated   = "VISIT_CREATED"
)

// Outbox statuses
const (
	OutboxStatusPending   = "pending"
	OutboxStatusProcessed = "processed"
	OutboxStatusFailed    = "failed"
)

// OutboxEvent is written in the same transaction as the state change it
// describes and relayed to the broker by the worker binary.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	EventType   string          `json:"event_type" db:"event_type"`
	AggregateID string          `json:"aggregate_id" db:"aggregate_id"`
	Payload     json.RawMessage `json:"payload" db:"payload"`
	Status      string          `json:"status" db:"status"`
	Retries     int             `json:"retries" db:"retries"`
	LastError   *string         `json:"last_error,omitempty" db:"last_error"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

// AccountChangedEvent is the broker payload for account mutations. The
// session monitor compares CurrentSessionID against the locally held
// token and forces sign-out on mismatch or on a blocked/expired license.
type AccountChangedEvent struct {
	UID                  uuid.UUID  `json:"uid"`
	Email                string     `json:"email"`
	Role                 string     `json:"role"`
	Status               string     `json:"status"`
	LicenseStatus        string     `json:"license_status"`
	LicenseExpiry        *time.Time `json:"license_expiry"`
	CurrentSessionID     string     `json:"current_session_id"`
	MustChangePassword   bool       `json:"must_change_password"`
	LastPasswordChangeAt *time.Time `json:"last_password_change_at"`
}
