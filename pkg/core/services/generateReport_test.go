package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/pkg/core/points"
	"github.com/jakechorley/editor-points/pkg/metrics"
)

func TestGenerateReport_Success(t *testing.T) {
	ctx := context.Background()
	source := marchSource()
	store := &fakeReportStore{}
	recorder := metrics.NewRecorder()
	cfg := testConfig()
	cfg.MetricsTextfile = filepath.Join(t.TempDir(), "editor_points.prom")

	result, err := GenerateReport(ctx, source, &cleanLookup{}, store, recorder, cfg, zap.NewNop(), GenerateOptions{
		Month: "2025-03",
		Now:   reportNow,
	})
	require.NoError(t, err)

	// Every configured list is fetched from the start of the month
	assert.Equal(t, []string{"list-main", "list-queue", "list-broken"}, source.calls)
	for _, since := range source.since {
		assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC), since)
	}
	assert.Equal(t, []string{"list-broken"}, result.FailedLists)

	report := result.Report
	assert.Equal(t, "2025-03", report.Meta.Month)
	assert.Equal(t, 4, report.Meta.TasksFetched)
	assert.Equal(t, 16.0, report.Summary.TotalPoints)
	assert.Equal(t, 3, report.Summary.TotalEditors)

	require.Len(t, report.Summary.Ranking, 2)
	// Ana: rank 1 (500) + one streak day (50) + two clean tasks (20)
	assert.Equal(t, points.RankingEntry{Rank: 1, Name: "Ana", Points: 10, Bonus: 570}, report.Summary.Ranking[0])
	// Bruno: rank 2 (300) + one clean task (10)
	assert.Equal(t, points.RankingEntry{Rank: 2, Name: "Bruno", Points: 4, Bonus: 310}, report.Summary.Ranking[1])

	fabio := report.Editor("Fabio")
	require.NotNil(t, fabio)
	assert.Equal(t, points.TeamFreelance, fabio.Team)
	assert.Equal(t, 80.0, fabio.Bonus.FreelancePayout)
	assert.Equal(t, 960.0, report.Summary.TotalBonus)

	// Stored with summary columns
	assert.True(t, result.Stored)
	require.Len(t, store.runs, 1)
	run := store.runs[0]
	assert.Equal(t, report.Meta.RunID, run.ID)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "2025-03", run.Month)
	assert.Equal(t, 3, run.Editors)
	assert.Equal(t, 960.0, run.TotalBonus)
	assert.Equal(t, []string{"list-main", "list-queue", "list-broken"}, run.Lists)

	decoded, err := points.DecodeReport(run.Document)
	require.NoError(t, err)
	assert.Equal(t, report.Summary, decoded.Summary)

	// Metrics
	fetched, err := testutil.GatherAndCount(recorder.Registry(), "editor_points_tasks_fetched_total")
	require.NoError(t, err)
	assert.Equal(t, 2, fetched, "one series per list that answered")
	failures, err := testutil.GatherAndCount(recorder.Registry(), "editor_points_list_fetch_failures_total")
	require.NoError(t, err)
	assert.Equal(t, 1, failures)
	_, err = os.Stat(cfg.MetricsTextfile)
	assert.NoError(t, err)
}

func TestGenerateReport_Preview(t *testing.T) {
	store := &fakeReportStore{}
	output := filepath.Join(t.TempDir(), "report.json")

	result, err := GenerateReport(context.Background(), marchSource(), nil, store, metrics.NewRecorder(), testConfig(), zap.NewNop(), GenerateOptions{
		Month:      "2025-03",
		ListIDs:    []string{"list-main"},
		Preview:    true,
		OutputPath: output,
		Now:        reportNow,
	})
	require.NoError(t, err)

	assert.False(t, result.Stored)
	assert.Empty(t, store.runs, "preview never stores")
	assert.Equal(t, []string{"list-main"}, result.Report.Meta.Lists)
	assert.True(t, result.Report.Meta.NoReworkSkipped)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	decoded, err := points.DecodeReport(data)
	require.NoError(t, err)
	assert.Equal(t, result.Report.Meta.RunID, decoded.Meta.RunID)
}

func TestGenerateReport_InvalidInputFailsBeforeFetch(t *testing.T) {
	tests := []struct {
		name string
		opts GenerateOptions
	}{
		{name: "bad month", opts: GenerateOptions{Month: "March"}},
		{name: "unknown list", opts: GenerateOptions{Month: "2025-03", ListIDs: []string{"list-other"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := marchSource()
			_, err := GenerateReport(context.Background(), source, nil, &fakeReportStore{}, metrics.NewRecorder(), testConfig(), zap.NewNop(), tt.opts)
			require.Error(t, err)
			assert.Empty(t, source.calls)
		})
	}
}

func TestGenerateReport_StoreFailure(t *testing.T) {
	store := &fakeReportStore{insertErr: errors.New("connection refused")}

	_, err := GenerateReport(context.Background(), marchSource(), nil, store, metrics.NewRecorder(), testConfig(), zap.NewNop(), GenerateOptions{
		Month: "2025-03",
		Now:   reportNow,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store report")
}

func TestGenerateReport_DefaultsToCurrentMonth(t *testing.T) {
	result, err := GenerateReport(context.Background(), marchSource(), nil, &fakeReportStore{}, metrics.NewRecorder(), testConfig(), zap.NewNop(), GenerateOptions{
		Preview: true,
		Now:     time.Date(2025, time.March, 20, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03", result.Report.Meta.Month)
}

func TestSelectLists(t *testing.T) {
	cfg := testConfig()

	ids, err := selectLists(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"list-main", "list-queue", "list-broken"}, ids)

	ids, err = selectLists(cfg, []string{"list-queue", "list-main", "list-queue"})
	require.NoError(t, err)
	assert.Equal(t, []string{"list-queue", "list-main"}, ids)

	_, err = selectLists(cfg, []string{"nope"})
	assert.Error(t, err)
}
