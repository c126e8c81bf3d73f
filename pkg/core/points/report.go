package points

import (
	"encoding/json"
	"fmt"
	"time"
)

// Report is the monthly points and incentive document.
// StreakDays and NoRework are keyed by editor id since display names may collide.
type Report struct {
	Meta       Meta                      `json:"meta"`
	Editors    []EditorReport            `json:"editors"`
	StreakDays map[string][]StreakDay    `json:"streakDays"`
	NoRework   map[string]NoReworkDetail `json:"noRework"`
	Summary    Summary                   `json:"summary"`
	Unmatched  []Unmatched               `json:"unmatched"`
}

// Meta describes how a report was produced
type Meta struct {
	RunID         string    `json:"runId"`
	Month         string    `json:"month"`
	GeneratedAt   time.Time `json:"generatedAt"`
	Timezone      string    `json:"timezone"`
	ConfigVersion string    `json:"configVersion"`
	Lists         []string  `json:"lists"`
	Rules         []string  `json:"classificationRules"`

	TasksFetched      int `json:"tasksFetched"`
	TasksConsidered   int `json:"tasksConsidered"`
	TasksOutOfWindow  int `json:"tasksOutOfWindow"`
	TasksNotCompleted int `json:"tasksNotCompleted"`
	DuplicateTasks    int `json:"duplicateTasks"`

	DailyThreshold       float64   `json:"dailyThreshold"`
	StreakBonusPerDay    float64   `json:"streakBonusPerDay"`
	NoReworkBonusPerTask float64   `json:"noReworkBonusPerTask"`
	RankBonuses          []float64 `json:"rankBonuses"`

	NoReworkSkipped           bool `json:"noReworkSkipped"`
	StatusLookupBatches       int  `json:"statusLookupBatches"`
	StatusLookupFailedBatches int  `json:"statusLookupFailedBatches"`
}

// EditorReport is one editor's section of the report
type EditorReport struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Team      Team               `json:"team"`
	Rank      int                `json:"rank,omitempty"`
	Points    float64            `json:"points"`
	TaskCount int                `json:"taskCount"`
	Daily     map[string]float64 `json:"daily"`
	Bonus     Bonus              `json:"bonus"`
	Tasks     []TaskEntry        `json:"tasks"`
}

// TaskEntry is one task credited to an editor
type TaskEntry struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Date        string  `json:"date,omitempty"`
	ListID      string  `json:"listId,omitempty"`
	Weight      int     `json:"weight"`
	Points      float64 `json:"points"`
	ProjectType string  `json:"projectType"`
	Rule        string  `json:"rule"`
	Weekend     bool    `json:"weekend,omitempty"`
}

// Summary holds the report totals and the fixed-team ranking
type Summary struct {
	TotalPoints  float64        `json:"totalPoints"`
	TotalEditors int            `json:"totalEditors"`
	TotalBonus   float64        `json:"totalBonus"`
	Ranking      []RankingEntry `json:"ranking"`
}

// RankingEntry is one row of the fixed-team ranking
type RankingEntry struct {
	Rank   int     `json:"rank"`
	Name   string  `json:"name"`
	Points float64 `json:"points"`
	Bonus  float64 `json:"bonus"`
}

// Encode renders the report as indented JSON
func (r *Report) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	return data, nil
}

// DecodeReport parses a report previously produced by Encode
func DecodeReport(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &r, nil
}

// Editor returns the editor section with the given name, or nil
func (r *Report) Editor(name string) *EditorReport {
	for i := range r.Editors {
		if r.Editors[i].Name == name {
			return &r.Editors[i]
		}
	}
	return nil
}

func buildEditorReport(e *Editor, bonus Bonus, days []string) EditorReport {
	daily := make(map[string]float64, len(days))
	for _, day := range days {
		daily[day] = 0
	}
	for day, value := range e.Daily {
		daily[day] = value
	}

	entries := make([]TaskEntry, 0, len(e.Contributions))
	for _, c := range e.Contributions {
		entries = append(entries, TaskEntry{
			ID:          c.TaskID,
			Name:        c.TaskName,
			Date:        c.Date,
			ListID:      c.ListID,
			Weight:      c.Weight,
			Points:      Round1(c.Points),
			ProjectType: c.ProjectType,
			Rule:        c.Rule,
			Weekend:     c.Weekend,
		})
	}

	return EditorReport{
		ID:        e.ID,
		Name:      e.Name,
		Team:      e.Team,
		Rank:      e.Rank,
		Points:    e.Points,
		TaskCount: int(e.TaskCount),
		Daily:     daily,
		Bonus:     bonus,
		Tasks:     entries,
	}
}
