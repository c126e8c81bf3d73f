package db

import (
	"fmt"
	"sort"
	"time"
)

// ReportRun is a persisted report generation. Document holds the full JSON
// report; the remaining columns summarise it for listing.
type ReportRun struct {
	ID            string
	Month         string
	GeneratedAt   time.Time
	ConfigVersion string
	Lists         []string
	TasksFetched  int
	Editors       int
	Unmatched     int
	TotalPoints   float64
	TotalBonus    float64
	PublishedAt   *time.Time
	Document      []byte
}

// Validate checks the fields every store requires
func (r *ReportRun) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("report run id is required")
	}
	if _, err := time.Parse("2006-01", r.Month); err != nil {
		return fmt.Errorf("report run month %q is not YYYY-MM", r.Month)
	}
	if len(r.Document) == 0 {
		return fmt.Errorf("report run %s has no document", r.ID)
	}
	return nil
}

// SortReportRuns orders runs newest first by generation time
func SortReportRuns(runs []ReportRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].GeneratedAt.After(runs[j].GeneratedAt)
	})
}
