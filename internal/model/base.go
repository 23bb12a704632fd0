package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// JSONMap represents a generic JSON object stored in a jsonb column
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(src interface{}) error {
	if src == nil {
		*m = nil
		return nil
	}
	return scanJSON(src, m)
}

// StringSlice is a jsonb-backed list of strings (CID codes, accessibility needs)
type StringSlice []string

func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal(s)
}

func (s *StringSlice) Scan(src interface{}) error {
	if src == nil {
		*s = nil
		return nil
	}
	return scanJSON(src, s)
}

// DateFilter bounds list queries by creation time
type DateFilter struct {
	StartDate time.Time `json:"start_date" form:"start_date" time_format:"2006-01-02"`
	EndDate   time.Time `json:"end_date" form:"end_date" time_format:"2006-01-02"`
}
