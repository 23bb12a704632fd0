package model

import (
	"time"

	"github.com/google/uuid"
)

// Prenatal care answers reported by the coordination on the monitoring
// form.
const (
	PrenatalUpToDate   = "sim"
	PrenatalNotStarted = "nao"
	PrenatalUnknown    = "nao_soube"
)

// Monitoring lifecycle. A record stays active until the coordination
// closes the follow-up.
const (
	MaternityStatusActive = "ativa"
	MaternityStatusClosed = "encerrada"
)

// MaternityRecord tracks the gestational follow-up of a student: prenatal
// care state, weeks of gestation and coordination notes. Text fields
// follow the lowercase storage convention.
type MaternityRecord struct {
	ID             uuid.UUID `json:"id" db:"id"`
	TenantID       string    `json:"tenant_id" db:"tenant_id"`
	StudentName    string    `json:"student_name" db:"student_name"`
	SchoolClass    string    `json:"school_class" db:"school_class"`
	PrenatalStatus string    `json:"prenatal_status" db:"prenatal_status"`
	GestationWeeks int       `json:"gestation_weeks" db:"gestation_weeks"`
	PrenatalSite   string    `json:"prenatal_site" db:"prenatal_site"`
	Notes          string    `json:"notes" db:"notes"`
	Status         string    `json:"status" db:"status"`

	// DisplayName is derived on reads, never stored.
	DisplayName string `json:"display_name" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CreateMaternityRequest is the monitoring form payload.
type CreateMaternityRequest struct {
	StudentName    string `json:"student_name" binding:"required,fullname"`
	SchoolClass    string `json:"school_class"`
	PrenatalStatus string `json:"prenatal_status" binding:"omitempty,oneof=sim nao nao_soube"`
	GestationWeeks int    `json:"gestation_weeks" binding:"omitempty,min=1,max=45"`
	PrenatalSite   string `json:"prenatal_site"`
	Notes          string `json:"notes"`
}

// MaternityFilters narrows monitoring listings within a tenant.
type MaternityFilters struct {
	Status string `json:"status" form:"status" binding:"omitempty,oneof=ativa encerrada"`
	Limit  int    `json:"limit" form:"limit"`
}
