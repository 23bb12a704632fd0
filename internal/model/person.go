package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Person profile constants. A record belongs either to a student or to a
// staff member of the unit; both share the same keyed storage.
const (
	PersonProfileStudent = "aluno"
	PersonProfileStaff   = "funcionario"
)

// HealthProfile carries the structured clinical flags kept on the person
// record and copied into the visit form when a patient is selected.
type HealthProfile struct {
	CIDs            StringSlice `json:"cids"`
	Accessibilities StringSlice `json:"accessibilities"`
	HasAllergy      string      `json:"has_allergy"`
	AllergyNotes    string      `json:"allergy_notes"`
	UsesMedication  string      `json:"uses_medication"`
	MedicationNotes string      `json:"medication_notes"`
}

func (h HealthProfile) Value() (driver.Value, error) {
	return json.Marshal(h)
}

func (h *HealthProfile) Scan(src interface{}) error {
	return scanJSON(src, h)
}

// EmergencyContact is the primary guardian contact on file.
type EmergencyContact struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Relation string `json:"relation"`
}

func (c EmergencyContact) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func (c *EmergencyContact) Scan(src interface{}) error {
	return scanJSON(src, c)
}

func scanJSON(src, dst interface{}) error {
	if src == nil {
		return nil
	}
	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("unsupported jsonb source: %T", src)
	}
}

// PersonRecord is a student or staff member identified by the deterministic
// person key. Records are merged on every re-registration or visit, never
// overwritten wholesale and never hard-deleted by normal flows.
type PersonRecord struct {
	PersonKey    string `json:"person_key" db:"person_key"`
	TenantID     string `json:"tenant_id" db:"tenant_id"`
	Profile      string `json:"profile" db:"profile"`
	FullName     string `json:"full_name" db:"full_name"`
	GuardianName string `json:"guardian_name" db:"guardian_name"`
	BirthDate    string `json:"birth_date" db:"birth_date"`
	Sex          string `json:"sex" db:"sex"`
	Ethnicity    string `json:"ethnicity" db:"ethnicity"`
	SchoolClass  string `json:"school_class" db:"school_class"`
	JobTitle     string `json:"job_title" db:"job_title"`
	Weight       string `json:"weight" db:"weight"`
	Height       string `json:"height" db:"height"`
	BMI          string `json:"bmi" db:"bmi"`

	// Age and DisplayName are derived on reads, never stored.
	Age         int    `json:"age" db:"-"`
	DisplayName string `json:"display_name" db:"-"`

	Health  HealthProfile    `json:"health" db:"health"`
	Contact EmergencyContact `json:"contact" db:"contact"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UpsertPersonRequest is the registration form payload. Name, birth date
// and guardian name feed the person key; everything else is merged into
// the stored record.
type UpsertPersonRequest struct {
	Profile      string `json:"profile" binding:"omitempty,oneof=aluno funcionario"`
	FullName     string `json:"full_name" binding:"required,fullname"`
	GuardianName string `json:"guardian_name"`
	BirthDate    string `json:"birth_date"`
	Sex          string `json:"sex"`
	Ethnicity    string `json:"ethnicity"`
	SchoolClass  string `json:"school_class"`
	JobTitle     string `json:"job_title"`
	Weight       string `json:"weight"`
	Height       string `json:"height"`

	Health  *HealthProfile    `json:"health"`
	Contact *EmergencyContact `json:"contact"`
}

// PersonSearchRequest recomputes the person key from raw intake input.
type PersonSearchRequest struct {
	FullName     string `json:"full_name" form:"full_name" binding:"required"`
	GuardianName string `json:"guardian_name" form:"guardian_name"`
	BirthDate    string `json:"birth_date" form:"birth_date"`
}

// PersonFilters narrows person listings within a tenant.
type PersonFilters struct {
	Profile    string `json:"profile" form:"profile"`
	NamePrefix string `json:"name_prefix" form:"name_prefix"`
	Limit      int    `json:"limit" form:"limit"`
}
