package tasks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/model"
)

// Resolver extracts typed values from a task's custom fields.
// The editor list only ever comes from the dedicated editor field: the
// task's generic assignees may include non-editor accounts.
type Resolver struct {
	fields  config.FieldNames
	aliases map[string]string
	loc     *time.Location
}

// NewResolver creates a Resolver for the given field names and alias table.
// Dates are converted to loc so calendar days follow the tracker's time zone.
func NewResolver(inc *config.Incentives, loc *time.Location) *Resolver {
	aliases := make(map[string]string, len(inc.Aliases))
	for raw, display := range inc.Aliases {
		aliases[Normalize(raw)] = display
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{
		fields:  inc.Fields,
		aliases: aliases,
		loc:     loc,
	}
}

// Location returns the time zone used for calendar days
func (r *Resolver) Location() *time.Location {
	return r.loc
}

// FindField looks a field up by name. Names are compared normalised: an
// exact match wins, otherwise the first field whose name contains the query.
func FindField(task *model.Task, name string) *model.CustomField {
	query := Normalize(name)
	if query == "" {
		return nil
	}

	for i := range task.CustomFields {
		if Normalize(task.CustomFields[i].Name) == query {
			return &task.CustomFields[i]
		}
	}

	for i := range task.CustomFields {
		if strings.Contains(Normalize(task.CustomFields[i].Name), query) {
			return &task.CustomFields[i]
		}
	}

	return nil
}

// field returns the first candidate field that is present and set
func (r *Resolver) field(task *model.Task, candidates []string) *model.CustomField {
	for _, name := range candidates {
		if f := FindField(task, name); f != nil && f.HasValue() {
			return f
		}
	}
	return nil
}

// Editors returns the people in the editor field with aliases applied.
// Duplicate user ids are dropped.
func (r *Resolver) Editors(task *model.Task) []model.Person {
	f := r.field(task, r.fields.Editor)
	if f == nil {
		return nil
	}

	people := FieldUsers(f)
	seen := make(map[string]bool, len(people))
	editors := make([]model.Person, 0, len(people))
	for _, p := range people {
		if seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		p.Name = r.alias(p.Name)
		editors = append(editors, p)
	}
	return editors
}

// CompletionDate resolves the calendar instant a task was delivered.
// The completion-date field wins; date_done and date_closed are fallbacks.
func (r *Resolver) CompletionDate(task *model.Task) (time.Time, bool) {
	if f := r.field(task, r.fields.CompletionDate); f != nil {
		if t, ok := FieldDate(f); ok {
			return t.In(r.loc), true
		}
	}
	if task.DateDone != nil {
		return task.DateDone.In(r.loc), true
	}
	if task.DateClosed != nil {
		return task.DateClosed.In(r.loc), true
	}
	return time.Time{}, false
}

// Product returns the product field as text
func (r *Resolver) Product(task *model.Task) (string, bool) {
	f := r.field(task, r.fields.Product)
	if f == nil {
		return "", false
	}
	return FieldText(f)
}

// WeightText returns the explicit weight field as text
func (r *Resolver) WeightText(task *model.Task) (string, bool) {
	f := r.field(task, r.fields.Weight)
	if f == nil {
		return "", false
	}
	return FieldText(f)
}

func (r *Resolver) alias(name string) string {
	if display, ok := r.aliases[Normalize(name)]; ok {
		return display
	}
	return name
}

// FieldText decodes any scalar-ish field to text. Drop-downs resolve to the
// option label, labels join their option names, numbers are formatted.
func FieldText(f *model.CustomField) (string, bool) {
	v, ok := decodeValue(f.Value)
	if !ok {
		return "", false
	}

	switch f.Type {
	case model.FieldTypeDropDown:
		return optionLabel(f, v)
	case model.FieldTypeLabels:
		labels := FieldLabels(f)
		if len(labels) == 0 {
			return "", false
		}
		return strings.Join(labels, ", "), true
	case model.FieldTypeUsers:
		return "", false
	}

	v = unwrapCurrentValue(v)
	switch val := v.(type) {
	case string:
		val = strings.TrimSpace(val)
		return val, val != ""
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	}
	return "", false
}

// FieldNumber decodes number, currency and formula fields, unwrapping a
// nested {"current_value": ...} shape when present
func FieldNumber(f *model.CustomField) (float64, bool) {
	v, ok := decodeValue(f.Value)
	if !ok {
		return 0, false
	}
	return toFloat(unwrapCurrentValue(v))
}

// FieldDate decodes a date field holding epoch milliseconds
func FieldDate(f *model.CustomField) (time.Time, bool) {
	v, ok := decodeValue(f.Value)
	if !ok {
		return time.Time{}, false
	}
	ms, ok := toFloat(v)
	if !ok || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(int64(ms)), true
}

// FieldUsers decodes a users field. The display name falls back from
// username to email to "User {id}".
func FieldUsers(f *model.CustomField) []model.Person {
	v, ok := decodeValue(f.Value)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	people := make([]model.Person, 0, len(items))
	for _, item := range items {
		user, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id := scalarString(user["id"])
		if id == "" {
			continue
		}
		name := strings.TrimSpace(scalarString(user["username"]))
		if name == "" {
			name = strings.TrimSpace(scalarString(user["email"]))
		}
		if name == "" {
			name = fmt.Sprintf("User %s", id)
		}
		people = append(people, model.Person{ID: id, Name: name})
	}
	return people
}

// FieldLabels decodes a labels field to its option names
func FieldLabels(f *model.CustomField) []string {
	v, ok := decodeValue(f.Value)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	var labels []string
	for _, item := range items {
		if label, ok := optionLabel(f, item); ok {
			labels = append(labels, label)
		}
	}
	return labels
}

func decodeValue(raw json.RawMessage) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// optionLabel resolves a drop-down value, which is either the option's
// order index or its id
func optionLabel(f *model.CustomField, v any) (string, bool) {
	switch val := v.(type) {
	case float64:
		for _, opt := range f.Options {
			if opt.OrderIndex == int(val) {
				return opt.Name, true
			}
		}
	case string:
		for _, opt := range f.Options {
			if opt.ID == val {
				return opt.Name, true
			}
		}
		if idx, err := strconv.Atoi(val); err == nil {
			for _, opt := range f.Options {
				if opt.OrderIndex == idx {
					return opt.Name, true
				}
			}
		}
	}
	return "", false
}

func unwrapCurrentValue(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["current_value"]; ok {
			return inner
		}
	}
	return v
}

func toFloat(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	}
	return ""
}
