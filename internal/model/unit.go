package model

import "time"

// Unit status constants
const (
	UnitStatusActive   = "ativa"
	UnitStatusInactive = "inativa"
)

// TenantUnit is an independently managed school. Its id is a slug derived
// from the display name; accounts and person records reference it and are
// never cascading-deleted with it.
type TenantUnit struct {
	UnitID      string    `json:"unit_id" db:"unit_id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// CreateUnitRequest registers a new school unit.
type CreateUnitRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}
