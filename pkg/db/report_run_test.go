package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReportRun_Validate(t *testing.T) {
	valid := ReportRun{ID: "run-1", Month: "2025-03", Document: []byte(`{}`)}

	tests := []struct {
		name    string
		mutate  func(r *ReportRun)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *ReportRun) {}},
		{name: "missing id", mutate: func(r *ReportRun) { r.ID = "" }, wantErr: true},
		{name: "bad month", mutate: func(r *ReportRun) { r.Month = "March" }, wantErr: true},
		{name: "no document", mutate: func(r *ReportRun) { r.Document = nil }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := valid
			tt.mutate(&run)
			err := run.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSortReportRuns(t *testing.T) {
	base := time.Date(2025, time.April, 1, 9, 0, 0, 0, time.UTC)
	runs := []ReportRun{
		{ID: "old", GeneratedAt: base},
		{ID: "new", GeneratedAt: base.Add(2 * time.Hour)},
		{ID: "mid", GeneratedAt: base.Add(time.Hour)},
	}

	SortReportRuns(runs)

	assert.Equal(t, []string{"new", "mid", "old"}, []string{runs[0].ID, runs[1].ID, runs[2].ID})
}
