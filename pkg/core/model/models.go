package model

import (
	"encoding/json"
	"time"
)

// Custom field types as reported by the tracker
const (
	FieldTypeDropDown  = "drop_down"
	FieldTypeLabels    = "labels"
	FieldTypeDate      = "date"
	FieldTypeNumber    = "number"
	FieldTypeCurrency  = "currency"
	FieldTypeFormula   = "formula"
	FieldTypeUsers     = "users"
	FieldTypeText      = "text"
	FieldTypeShortText = "short_text"
)

// Task is a task record as fetched from the tracker
type Task struct {
	ID           string
	Name         string
	Status       string
	Tags         []string
	DateDone     *time.Time
	DateClosed   *time.Time
	DateUpdated  *time.Time
	ListID       string
	CustomFields []CustomField
}

// CustomField is a single custom field on a task. Value is kept raw because
// its shape depends on Type.
type CustomField struct {
	ID      string
	Name    string
	Type    string
	Options []FieldOption
	Value   json.RawMessage
}

// FieldOption is an entry in a drop-down or labels option table
type FieldOption struct {
	ID         string
	Name       string
	OrderIndex int
}

// HasValue reports whether the field carries a non-null value
func (f *CustomField) HasValue() bool {
	return len(f.Value) > 0 && string(f.Value) != "null"
}

// Person is a tracker user resolved to a display name
type Person struct {
	ID   string
	Name string
}

// StatusTransition is one entry of a task's status history
type StatusTransition struct {
	Status string
	Since  *time.Time
}
