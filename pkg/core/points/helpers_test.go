package points

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/model"
)

var march2025 = Month{Year: 2025, Month: time.March}

func rawJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func day(d int) time.Time {
	return time.Date(2025, time.March, d, 12, 0, 0, 0, time.UTC)
}

// editorID derives a stable tracker user id from a display name
func editorID(name string) string {
	return "u-" + strings.ToLower(strings.ReplaceAll(name, " ", "-"))
}

type taskOption func(*model.Task)

func onList(listID string) taskOption {
	return func(t *model.Task) { t.ListID = listID }
}

func withTags(tags ...string) taskOption {
	return func(t *model.Task) { t.Tags = tags }
}

func withStatus(status string) taskOption {
	return func(t *model.Task) { t.Status = status }
}

func withoutDate() taskOption {
	return func(t *model.Task) {
		fields := t.CustomFields[:0]
		for _, f := range t.CustomFields {
			if f.Name != "Data de Entrega" {
				fields = append(fields, f)
			}
		}
		t.CustomFields = fields
	}
}

// newTask builds a task with an explicit weight (0 leaves the field unset),
// a completion date and an editor field
func newTask(id, name string, weight int, completed time.Time, editors []string, opts ...taskOption) model.Task {
	users := make([]map[string]any, 0, len(editors))
	for _, e := range editors {
		users = append(users, map[string]any{"id": editorID(e), "username": e})
	}

	t := model.Task{
		ID:     id,
		Name:   name,
		Status: "complete",
		ListID: "list-main",
		CustomFields: []model.CustomField{
			{ID: "f-editor", Name: "👤 Editor", Type: model.FieldTypeUsers, Value: rawJSON(users)},
			{ID: "f-date", Name: "Data de Entrega", Type: model.FieldTypeDate, Value: rawJSON(strconv.FormatInt(completed.UnixMilli(), 10))},
		},
	}
	if weight != 0 {
		t.CustomFields = append(t.CustomFields, model.CustomField{
			ID: "f-weight", Name: "Peso", Type: model.FieldTypeText, Value: rawJSON(strconv.Itoa(weight)),
		})
	}
	for _, opt := range opts {
		opt(&t)
	}
	return t
}

func testIncentives() *config.Incentives {
	inc := config.DefaultIncentives()
	inc.Roster = config.Roster{
		Fixed:      []string{"Ana", "Bruno", "Carla"},
		AIAssisted: []string{"Diego"},
	}
	return &inc
}

// fakeLookup serves status histories from a map and fails selected calls
type fakeLookup struct {
	histories map[string][]model.StatusTransition
	// cleanByDefault answers ids absent from histories with a clean history
	cleanByDefault bool
	failCalls      map[int]error
	calls          [][]string
}

func (f *fakeLookup) StatusHistories(ctx context.Context, taskIDs []string) (map[string][]model.StatusTransition, error) {
	call := len(f.calls)
	f.calls = append(f.calls, append([]string(nil), taskIDs...))
	if err, ok := f.failCalls[call]; ok {
		return nil, err
	}

	out := make(map[string][]model.StatusTransition, len(taskIDs))
	for _, id := range taskIDs {
		if h, ok := f.histories[id]; ok {
			out[id] = h
			continue
		}
		if f.cleanByDefault {
			out[id] = []model.StatusTransition{{Status: "in progress"}, {Status: "complete"}}
		}
	}
	return out, nil
}

func adjustedHistory() []model.StatusTransition {
	return []model.StatusTransition{{Status: "in progress"}, {Status: "Em Ajuste"}, {Status: "complete"}}
}

// fixedEditor builds a finalised fixed-team editor owning the given tasks outright
func fixedEditor(name string, taskIDs ...string) *Editor {
	e := &Editor{ID: editorID(name), Name: name, Team: TeamFixed, Daily: map[string]float64{}}
	for _, id := range taskIDs {
		e.Contributions = append(e.Contributions, Contribution{TaskID: id, Weight: 1, Owners: 1, Share: 1, Points: 1})
	}
	return e
}
