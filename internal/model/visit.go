package model

import (
	"time"

	"github.com/google/uuid"
)

// Visit status constants
const (
	VisitStatusConcluded = "concluido"
	VisitStatusRemoval   = "removido"
)

// Visit type constants
const (
	VisitTypeLocal   = "local"
	VisitTypeRemoval = "remocao"
)

// VisitRecord is one nursing encounter ("atendimento"). Visits are
// append-only: each encounter is its own row, never updated by later
// encounters, and carries the person key of the patient for the reverse
// join "all visits for this person".
type VisitRecord struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Code      string    `json:"code" db:"code"`
	PersonKey string    `json:"person_key" db:"person_key"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`

	VisitType   string `json:"visit_type" db:"visit_type"`
	Status      string `json:"status" db:"status"`
	VisitDate   string `json:"visit_date" db:"visit_date"`
	VisitTime   string `json:"visit_time" db:"visit_time"`
	Temperature string `json:"temperature" db:"temperature"`
	Weight      string `json:"weight" db:"weight"`
	Height      string `json:"height" db:"height"`
	BMI         string `json:"bmi" db:"bmi"`
	Reason      string `json:"reason" db:"reason"`
	Procedures  string `json:"procedures" db:"procedures"`
	Medicated   string `json:"medicated" db:"medicated"`
	Notes       string `json:"notes" db:"notes"`

	ProfessionalID       uuid.UUID `json:"professional_id" db:"professional_id"`
	ProfessionalName     string    `json:"professional_name" db:"professional_name"`
	ProfessionalRegistry string    `json:"professional_registry" db:"professional_registry"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CreateVisitRequest is the nursing visit form. Patient identity fields
// feed the person key so the visit lands on (or creates) the right record.
type CreateVisitRequest struct {
	Profile      string `json:"profile" binding:"omitempty,oneof=aluno funcionario"`
	FullName     string `json:"full_name" binding:"required,fullname"`
	GuardianName string `json:"guardian_name"`
	BirthDate    string `json:"birth_date"`
	Sex          string `json:"sex"`
	SchoolClass  string `json:"school_class"`
	JobTitle     string `json:"job_title"`

	VisitType   string `json:"visit_type" binding:"omitempty,oneof=local remocao"`
	VisitDate   string `json:"visit_date"`
	VisitTime   string `json:"visit_time"`
	Temperature string `json:"temperature"`
	Weight      string `json:"weight"`
	Height      string `json:"height"`
	Reason      string `json:"reason"`
	Procedures  string `json:"procedures"`
	Medicated   string `json:"medicated" binding:"omitempty,oneof=sim não nao"`
	Notes       string `json:"notes"`

	Health  *HealthProfile    `json:"health"`
	Contact *EmergencyContact `json:"contact"`
}

// VisitFilters narrows visit listings.
type VisitFilters struct {
	DateFilter
	PersonKey string `json:"person_key" form:"person_key"`
	Status    string `json:"status" form:"status"`
	Limit     int    `json:"limit" form:"limit"`
}

// FolderEntry is the record-folder ("pasta digital") index row written in
// the same batch as each visit, so the person's folder lists every
// document without scanning the visit table.
type FolderEntry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	PersonKey string    `json:"person_key" db:"person_key"`
	TenantID  string    `json:"tenant_id" db:"tenant_id"`
	DocType   string    `json:"doc_type" db:"doc_type"`
	Title     string    `json:"title" db:"title"`
	DocDate   string    `json:"doc_date" db:"doc_date"`
	Author    string    `json:"author" db:"author"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// FolderDocTypeVisit tags visit-derived folder entries.
const FolderDocTypeVisit = "atendimento_enfermagem"
