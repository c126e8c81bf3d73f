package sheetsclient

import (
	"fmt"

	"google.golang.org/api/sheets/v4"
)

// RankingRow is one row of the fixed-team ranking block
type RankingRow struct {
	Rank   int
	Name   string
	Points float64
	Bonus  float64
}

// EditorRow is one row of the per-editor block
type EditorRow struct {
	Name         string
	Team         string
	Rank         int // 0 for editors outside the ranking
	Points       float64
	Tasks        int
	Productivity float64
	Streak       float64
	NoRework     float64
	Weekend      float64
	Freelance    float64
	Total        float64
}

// ReportTab is the content of one monthly report tab
type ReportTab struct {
	Month       string // YYYY-MM, also the tab title
	GeneratedAt string
	TotalPoints float64
	TotalBonus  float64
	Ranking     []RankingRow
	Editors     []EditorRow
}

var editorHeader = []interface{}{
	"Editor", "Team", "Rank", "Points", "Tasks",
	"Productivity", "Streak", "No rework", "Weekend", "Freelance", "Total",
}

// Rows lays the tab out as a title block, the ranking, then every editor.
// Blocks are separated by one empty row.
func (t *ReportTab) Rows() [][]interface{} {
	rows := [][]interface{}{
		{"Month", t.Month},
		{"Generated", t.GeneratedAt},
		{"Total points", t.TotalPoints},
		{"Total bonus", t.TotalBonus},
		{},
		{"Rank", "Editor", "Points", "Bonus"},
	}

	for _, r := range t.Ranking {
		rows = append(rows, []interface{}{r.Rank, r.Name, r.Points, r.Bonus})
	}

	rows = append(rows, []interface{}{}, editorHeader)
	for _, e := range t.Editors {
		rank := interface{}("")
		if e.Rank > 0 {
			rank = e.Rank
		}
		rows = append(rows, []interface{}{
			e.Name, e.Team, rank, e.Points, e.Tasks,
			e.Productivity, e.Streak, e.NoRework, e.Weekend, e.Freelance, e.Total,
		})
	}

	return rows
}

// PublishReport writes a report tab titled with its month. An existing tab
// with that title is cleared and overwritten so republishing is idempotent.
func (c *Client) PublishReport(spreadsheetID string, tab *ReportTab) error {
	if tab.Month == "" {
		return fmt.Errorf("report tab has no month")
	}

	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Context(c.ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	if findSheet(spreadsheet.Sheets, tab.Month) == nil {
		if _, err := c.CreateSheet(spreadsheetID, tab.Month); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	} else if err := c.ClearValues(spreadsheetID, tab.Month); err != nil {
		return fmt.Errorf("failed to clear existing tab: %w", err)
	}

	if err := c.WriteValues(spreadsheetID, fmt.Sprintf("%s!A1", tab.Month), tab.Rows()); err != nil {
		return fmt.Errorf("failed to write report to tab: %w", err)
	}

	return nil
}

func findSheet(sheetList []*sheets.Sheet, title string) *sheets.Sheet {
	for _, sheet := range sheetList {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return sheet
		}
	}
	return nil
}
