package trackerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/editor-points/pkg/core/model"
)

type taskPage struct {
	Tasks    []apiTask `json:"tasks"`
	LastPage bool      `json:"last_page"`
}

type apiTask struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Status       apiStatus        `json:"status"`
	Tags         []apiTag         `json:"tags"`
	DateDone     epochMillis      `json:"date_done"`
	DateClosed   epochMillis      `json:"date_closed"`
	DateUpdated  epochMillis      `json:"date_updated"`
	List         apiRef           `json:"list"`
	CustomFields []apiCustomField `json:"custom_fields"`
}

type apiStatus struct {
	Status string `json:"status"`
}

type apiTag struct {
	Name string `json:"name"`
}

type apiRef struct {
	ID string `json:"id"`
}

type apiCustomField struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	TypeConfig apiTypeConfig   `json:"type_config"`
	Value      json.RawMessage `json:"value"`
}

type apiTypeConfig struct {
	Options []apiOption `json:"options"`
}

type apiOption struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Label      string   `json:"label"`
	OrderIndex flexible `json:"orderindex"`
}

// epochMillis decodes timestamps sent as millisecond strings or numbers
type epochMillis struct {
	t *time.Time
}

func (e *epochMillis) UnmarshalJSON(data []byte) error {
	ms, ok := parseFlexibleInt(data)
	if !ok || ms <= 0 {
		e.t = nil
		return nil
	}
	t := time.UnixMilli(ms)
	e.t = &t
	return nil
}

// flexible decodes integers sent either as JSON numbers or strings
type flexible int

func (f *flexible) UnmarshalJSON(data []byte) error {
	n, _ := parseFlexibleInt(data)
	*f = flexible(n)
	return nil
}

func parseFlexibleInt(data []byte) (int64, bool) {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "" || s == "null" {
		return 0, false
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0, false
		}
		return int64(f), true
	}
	return n, true
}

// ListTasks fetches every task in a list updated after since, closed tasks
// and subtasks included. Pages are read until an empty or short page.
func (c *Client) ListTasks(ctx context.Context, listID string, since time.Time) ([]model.Task, error) {
	var tasks []model.Task

	for page := 0; ; page++ {
		query := url.Values{}
		query.Set("page", strconv.Itoa(page))
		query.Set("include_closed", "true")
		query.Set("subtasks", "true")
		if !since.IsZero() {
			query.Set("date_updated_gt", strconv.FormatInt(since.UnixMilli(), 10))
		}

		var resp taskPage
		if err := c.get(ctx, "/list/"+url.PathEscape(listID)+"/task", query, &resp); err != nil {
			return nil, fmt.Errorf("failed to fetch page %d of list %s: %w", page, listID, err)
		}

		for _, t := range resp.Tasks {
			tasks = append(tasks, t.toModel(listID))
		}

		if len(resp.Tasks) == 0 || len(resp.Tasks) < c.pageSize || resp.LastPage {
			break
		}
	}

	return tasks, nil
}

func (t apiTask) toModel(listID string) model.Task {
	task := model.Task{
		ID:          t.ID,
		Name:        t.Name,
		Status:      t.Status.Status,
		DateDone:    t.DateDone.t,
		DateClosed:  t.DateClosed.t,
		DateUpdated: t.DateUpdated.t,
		ListID:      listID,
	}
	if task.ListID == "" {
		task.ListID = t.List.ID
	}
	for _, tag := range t.Tags {
		task.Tags = append(task.Tags, tag.Name)
	}
	for _, f := range t.CustomFields {
		field := model.CustomField{
			ID:    f.ID,
			Name:  f.Name,
			Type:  f.Type,
			Value: f.Value,
		}
		for _, opt := range f.TypeConfig.Options {
			name := opt.Name
			if name == "" {
				name = opt.Label
			}
			field.Options = append(field.Options, model.FieldOption{ID: opt.ID, Name: name, OrderIndex: int(opt.OrderIndex)})
		}
		task.CustomFields = append(task.CustomFields, field)
	}
	return task
}
