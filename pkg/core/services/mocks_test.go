package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/clients/sheetsclient"
	"github.com/jakechorley/editor-points/pkg/core/model"
	"github.com/jakechorley/editor-points/pkg/db"
)

var reportNow = time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	inc := config.DefaultIncentives()
	inc.Roster = config.Roster{Fixed: []string{"Ana", "Bruno"}}
	return &config.Config{
		Timezone: "UTC",
		Tracker: config.TrackerConfig{
			Lists: []config.TrackerList{
				{ID: "list-main"},
				{ID: "list-queue", FreelanceQueue: true},
				{ID: "list-broken"},
			},
		},
		ReportSheetID:    "sheet-1",
		NotifyRecipients: []string{"ops@example.com"},
		Incentives:       inc,
	}
}

func rawJSON(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}

func task(id string, weight, day int, listID string, editors ...string) model.Task {
	users := make([]map[string]any, 0, len(editors))
	for _, e := range editors {
		users = append(users, map[string]any{"id": "u-" + e, "username": e})
	}
	completed := time.Date(2025, time.March, day, 12, 0, 0, 0, time.UTC)
	return model.Task{
		ID:     id,
		Name:   "Edit " + id,
		Status: "complete",
		ListID: listID,
		CustomFields: []model.CustomField{
			{ID: "f-editor", Name: "Editor", Type: model.FieldTypeUsers, Value: rawJSON(users)},
			{ID: "f-date", Name: "Data de Entrega", Type: model.FieldTypeDate, Value: rawJSON(strconv.FormatInt(completed.UnixMilli(), 10))},
			{ID: "f-weight", Name: "Peso", Type: model.FieldTypeText, Value: rawJSON(strconv.Itoa(weight))},
		},
	}
}

type fakeTaskSource struct {
	lists map[string][]model.Task
	fail  map[string]error
	calls []string
	since []time.Time
}

func (f *fakeTaskSource) ListTasks(ctx context.Context, listID string, since time.Time) ([]model.Task, error) {
	f.calls = append(f.calls, listID)
	f.since = append(f.since, since)
	if err, ok := f.fail[listID]; ok {
		return nil, err
	}
	return f.lists[listID], nil
}

func marchSource() *fakeTaskSource {
	return &fakeTaskSource{
		lists: map[string][]model.Task{
			"list-main": {
				task("t1", 5, 3, "list-main", "Ana"),
				task("t2", 5, 3, "list-main", "Ana"),
				task("t3", 4, 5, "list-main", "Bruno"),
			},
			"list-queue": {
				task("t4", 2, 6, "list-queue", "Fabio"),
			},
		},
		fail: map[string]error{"list-broken": errors.New("502 bad gateway")},
	}
}

type cleanLookup struct {
	calls int
}

func (l *cleanLookup) StatusHistories(ctx context.Context, taskIDs []string) (map[string][]model.StatusTransition, error) {
	l.calls++
	out := make(map[string][]model.StatusTransition, len(taskIDs))
	for _, id := range taskIDs {
		out[id] = []model.StatusTransition{{Status: "in progress"}, {Status: "complete"}}
	}
	return out, nil
}

type fakeReportStore struct {
	runs         []db.ReportRun
	insertErr    error
	publishedIDs []string
}

func (s *fakeReportStore) InsertReportRun(ctx context.Context, run *db.ReportRun) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.runs = append(s.runs, *run)
	return nil
}

func (s *fakeReportStore) GetReportRuns(ctx context.Context) ([]db.ReportRun, error) {
	return append([]db.ReportRun(nil), s.runs...), nil
}

func (s *fakeReportStore) GetLatestReportRun(ctx context.Context, month string) (*db.ReportRun, error) {
	var latest *db.ReportRun
	for i := range s.runs {
		if s.runs[i].Month != month {
			continue
		}
		if latest == nil || s.runs[i].GeneratedAt.After(latest.GeneratedAt) {
			latest = &s.runs[i]
		}
	}
	if latest == nil {
		return nil, db.ErrReportNotFound
	}
	run := *latest
	return &run, nil
}

func (s *fakeReportStore) SetReportPublishedAt(ctx context.Context, id string, publishedAt time.Time) error {
	for i := range s.runs {
		if s.runs[i].ID == id {
			s.runs[i].PublishedAt = &publishedAt
			s.publishedIDs = append(s.publishedIDs, id)
			return nil
		}
	}
	return db.ErrReportNotFound
}

type fakeSheetWriter struct {
	spreadsheetID string
	tabs          []*sheetsclient.ReportTab
	err           error
}

func (w *fakeSheetWriter) PublishReport(spreadsheetID string, tab *sheetsclient.ReportTab) error {
	if w.err != nil {
		return w.err
	}
	w.spreadsheetID = spreadsheetID
	w.tabs = append(w.tabs, tab)
	return nil
}

type sentEmail struct {
	to      []string
	subject string
	body    string
}

type fakeMailer struct {
	sent []sentEmail
	err  error
}

func (m *fakeMailer) SendEmail(ctx context.Context, to []string, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentEmail{to: to, subject: subject, body: body})
	return nil
}
