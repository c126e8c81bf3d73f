package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/model"
	"github.com/jakechorley/editor-points/pkg/core/points"
	"github.com/jakechorley/editor-points/pkg/db"
	"github.com/jakechorley/editor-points/pkg/metrics"
)

// TaskSource reads the tasks of one tracker list updated since a point in time
type TaskSource interface {
	ListTasks(ctx context.Context, listID string, since time.Time) ([]model.Task, error)
}

// GenerateOptions are the invocation parameters of a report run
type GenerateOptions struct {
	Month      string   // YYYY-MM; empty means the current month
	ListIDs    []string // empty means every configured list
	Preview    bool     // compute without storing
	OutputPath string   // optional JSON copy of the report
	Now        time.Time
}

// GenerateResult is a finished report run
type GenerateResult struct {
	Report      *points.Report
	Run         *db.ReportRun
	Stored      bool
	FailedLists []string
	Flipped     []string
}

// GenerateReport fetches the month's tasks from every selected list, runs
// the points engine and stores the report unless previewing.
// Bad input fails before any fetch; a failing list only loses its tasks.
func GenerateReport(
	ctx context.Context,
	source TaskSource,
	lookup points.StatusHistoryLookup,
	store db.ReportStore,
	recorder *metrics.Recorder,
	cfg *config.Config,
	logger *zap.Logger,
	opts GenerateOptions,
) (*GenerateResult, error) {
	started := time.Now()
	now := opts.Now
	if now.IsZero() {
		now = started
	}
	loc := cfg.Location()

	// Step 1: Resolve invocation parameters
	month := points.CurrentMonth(now, loc)
	if opts.Month != "" {
		var err error
		month, err = points.ParseMonth(opts.Month)
		if err != nil {
			return nil, err
		}
	}

	listIDs, err := selectLists(cfg, opts.ListIDs)
	if err != nil {
		return nil, err
	}

	engine, err := points.NewEngine(&cfg.Incentives, loc, lookup, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build points engine: %w", err)
	}

	logger.Debug("Generating report",
		zap.String("month", month.String()),
		zap.Strings("lists", listIDs),
		zap.Bool("preview", opts.Preview))

	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	// Step 2: Fetch tasks list by list
	since := month.Start(loc)
	var allTasks []model.Task
	var failedLists []string
	for _, listID := range listIDs {
		listTasks, err := source.ListTasks(ctx, listID, since)
		if err != nil {
			logger.Warn("Failed to fetch list, continuing without it",
				zap.String("list", listID),
				zap.Error(err))
			recorder.ListFetchFailed(listID)
			failedLists = append(failedLists, listID)
			continue
		}
		logger.Debug("Fetched list", zap.String("list", listID), zap.Int("tasks", len(listTasks)))
		recorder.TasksFetched(listID, len(listTasks))
		allTasks = append(allTasks, listTasks...)
	}

	// Step 3: Compute
	result, err := engine.Run(ctx, points.RunInput{
		RunID:          uuid.New().String(),
		Month:          month,
		Tasks:          allTasks,
		Lists:          listIDs,
		FreelanceLists: cfg.FreelanceListIDs(),
		GeneratedAt:    now.In(loc),
	})
	if err != nil {
		return nil, err
	}
	report := result.Report

	logger.Info("Report computed",
		zap.String("month", report.Meta.Month),
		zap.Int("editors", report.Summary.TotalEditors),
		zap.Float64("totalPoints", report.Summary.TotalPoints),
		zap.Int("unmatched", len(report.Unmatched)))

	run, err := newReportRun(report)
	if err != nil {
		return nil, err
	}

	// Step 4: Persist
	out := &GenerateResult{
		Report:      report,
		Run:         run,
		FailedLists: failedLists,
		Flipped:     result.FlippedEditors,
	}

	if !opts.Preview {
		if err := store.InsertReportRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to store report: %w", err)
		}
		out.Stored = true
		logger.Info("Report stored", zap.String("run_id", run.ID))
	}

	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, run.Document, 0644); err != nil {
			return nil, fmt.Errorf("failed to write report file: %w", err)
		}
		logger.Info("Report written", zap.String("path", opts.OutputPath))
	}

	recordRun(recorder, result, started)
	if cfg.MetricsTextfile != "" {
		if err := recorder.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn("Failed to write metrics", zap.Error(err))
		}
	}

	return out, nil
}

// selectLists validates a list selection against the configured lists
func selectLists(cfg *config.Config, requested []string) ([]string, error) {
	if len(requested) == 0 {
		ids := make([]string, 0, len(cfg.Tracker.Lists))
		for _, list := range cfg.Tracker.Lists {
			ids = append(ids, list.ID)
		}
		return ids, nil
	}

	seen := make(map[string]bool, len(requested))
	ids := make([]string, 0, len(requested))
	for _, id := range requested {
		if _, ok := cfg.FindList(id); !ok {
			return nil, fmt.Errorf("list %q is not configured", id)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

func newReportRun(report *points.Report) (*db.ReportRun, error) {
	document, err := report.Encode()
	if err != nil {
		return nil, err
	}

	return &db.ReportRun{
		ID:            report.Meta.RunID,
		Month:         report.Meta.Month,
		GeneratedAt:   report.Meta.GeneratedAt,
		ConfigVersion: report.Meta.ConfigVersion,
		Lists:         report.Meta.Lists,
		TasksFetched:  report.Meta.TasksFetched,
		Editors:       len(report.Editors),
		Unmatched:     len(report.Unmatched),
		TotalPoints:   report.Summary.TotalPoints,
		TotalBonus:    report.Summary.TotalBonus,
		Document:      document,
	}, nil
}

func recordRun(recorder *metrics.Recorder, result *points.Result, started time.Time) {
	for _, u := range result.Report.Unmatched {
		recorder.TaskUnmatched(u.Reason)
	}
	for _, batch := range result.State.LookupBatches {
		recorder.StatusBatch(batch.Err != nil)
	}
	if result.State.NoReworkSkipped {
		recorder.NoReworkSkipped()
	}

	perTeam := map[points.Team]int{
		points.TeamFixed:      0,
		points.TeamAIAssisted: 0,
		points.TeamFreelance:  0,
	}
	for _, editor := range result.Report.Editors {
		perTeam[editor.Team]++
	}
	for team, n := range perTeam {
		recorder.EditorsReported(string(team), n)
	}

	recorder.BonusTotal(result.Report.Summary.TotalBonus)
	recorder.RunCompleted(started, time.Now())
}
