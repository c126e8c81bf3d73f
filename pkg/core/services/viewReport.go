package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/core/points"
	"github.com/jakechorley/editor-points/pkg/db"
)

// StoredReport is a decoded report together with its stored run
type StoredReport struct {
	Run    *db.ReportRun
	Report *points.Report
}

// ViewReport loads the latest stored report for a month (default current)
func ViewReport(ctx context.Context, store db.ReportStore, cfg *config.Config, logger *zap.Logger, month string) (*StoredReport, error) {
	resolved, err := resolveMonth(cfg, month, time.Now())
	if err != nil {
		return nil, err
	}

	logger.Debug("Loading latest report", zap.String("month", resolved))
	run, err := store.GetLatestReportRun(ctx, resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to load report for %s: %w", resolved, err)
	}

	report, err := points.DecodeReport(run.Document)
	if err != nil {
		return nil, err
	}

	return &StoredReport{Run: run, Report: report}, nil
}

// ListReports returns every stored run, newest first
func ListReports(ctx context.Context, store db.ReportStore, logger *zap.Logger) ([]db.ReportRun, error) {
	runs, err := store.GetReportRuns(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	db.SortReportRuns(runs)
	logger.Debug("Listed reports", zap.Int("count", len(runs)))
	return runs, nil
}

func resolveMonth(cfg *config.Config, month string, now time.Time) (string, error) {
	if month == "" {
		return points.CurrentMonth(now, cfg.Location()).String(), nil
	}
	m, err := points.ParseMonth(month)
	if err != nil {
		return "", err
	}
	return m.String(), nil
}
