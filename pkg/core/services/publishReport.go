package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jakechorley/editor-points/internal/config"
	"github.com/jakechorley/editor-points/pkg/clients/sheetsclient"
	"github.com/jakechorley/editor-points/pkg/core/points"
	"github.com/jakechorley/editor-points/pkg/db"
)

// SheetWriter writes a report tab to a spreadsheet
type SheetWriter interface {
	PublishReport(spreadsheetID string, tab *sheetsclient.ReportTab) error
}

// Mailer sends a plain-text email
type Mailer interface {
	SendEmail(ctx context.Context, to []string, subject, body string) error
}

// PublishResult describes a published report
type PublishResult struct {
	Run      *db.ReportRun
	Tab      *sheetsclient.ReportTab
	Notified []string
}

// PublishReport writes the latest stored report for a month to the report
// spreadsheet and marks it published. With notify the summary is emailed to
// the configured recipients; mailer may be nil otherwise.
func PublishReport(
	ctx context.Context,
	store db.ReportStore,
	sheetWriter SheetWriter,
	mailer Mailer,
	cfg *config.Config,
	logger *zap.Logger,
	month string,
	notify bool,
) (*PublishResult, error) {
	if cfg.ReportSheetID == "" {
		return nil, fmt.Errorf("reportSheetID is not configured")
	}
	if notify && len(cfg.NotifyRecipients) == 0 {
		return nil, fmt.Errorf("notifyRecipients is not configured")
	}

	stored, err := ViewReport(ctx, store, cfg, logger, month)
	if err != nil {
		return nil, err
	}

	tab := BuildReportTab(stored.Report)
	logger.Debug("Publishing report",
		zap.String("run_id", stored.Run.ID),
		zap.String("tab", tab.Month),
		zap.Int("editors", len(tab.Editors)))

	if err := sheetWriter.PublishReport(cfg.ReportSheetID, tab); err != nil {
		return nil, fmt.Errorf("failed to publish report: %w", err)
	}

	publishedAt := time.Now()
	if err := store.SetReportPublishedAt(ctx, stored.Run.ID, publishedAt); err != nil {
		return nil, fmt.Errorf("failed to mark report published: %w", err)
	}
	stored.Run.PublishedAt = &publishedAt
	logger.Info("Report published", zap.String("run_id", stored.Run.ID), zap.String("tab", tab.Month))

	result := &PublishResult{Run: stored.Run, Tab: tab}
	if !notify {
		return result, nil
	}

	subject := fmt.Sprintf("Editor ranking %s", stored.Report.Meta.Month)
	if err := mailer.SendEmail(ctx, cfg.NotifyRecipients, subject, SummaryText(stored.Report)); err != nil {
		return nil, fmt.Errorf("report published but failed to send summary: %w", err)
	}
	result.Notified = cfg.NotifyRecipients
	logger.Info("Summary emailed", zap.Int("recipients", len(cfg.NotifyRecipients)))

	return result, nil
}

// BuildReportTab flattens a report into the sheet layout
func BuildReportTab(report *points.Report) *sheetsclient.ReportTab {
	tab := &sheetsclient.ReportTab{
		Month:       report.Meta.Month,
		GeneratedAt: report.Meta.GeneratedAt.Format("2006-01-02 15:04"),
		TotalPoints: report.Summary.TotalPoints,
		TotalBonus:  report.Summary.TotalBonus,
	}

	for _, r := range report.Summary.Ranking {
		tab.Ranking = append(tab.Ranking, sheetsclient.RankingRow{
			Rank:   r.Rank,
			Name:   r.Name,
			Points: r.Points,
			Bonus:  r.Bonus,
		})
	}

	for _, e := range report.Editors {
		tab.Editors = append(tab.Editors, sheetsclient.EditorRow{
			Name:         e.Name,
			Team:         string(e.Team),
			Rank:         e.Rank,
			Points:       e.Points,
			Tasks:        e.TaskCount,
			Productivity: e.Bonus.Productivity,
			Streak:       e.Bonus.Streak,
			NoRework:     e.Bonus.NoRework,
			Weekend:      e.Bonus.Weekend,
			Freelance:    e.Bonus.FreelancePayout,
			Total:        e.Bonus.Total,
		})
	}

	return tab
}

// SummaryText renders the ranking and totals as plain text for email
func SummaryText(report *points.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Editor points for %s\n\n", report.Meta.Month)

	if len(report.Summary.Ranking) > 0 {
		b.WriteString("Ranking\n")
		for _, r := range report.Summary.Ranking {
			fmt.Fprintf(&b, "%d. %s: %.1f points, bonus %.2f\n", r.Rank, r.Name, r.Points, r.Bonus)
		}
		b.WriteString("\n")
	}

	for _, e := range report.Editors {
		if e.Team == points.TeamFixed {
			continue
		}
		fmt.Fprintf(&b, "%s (%s): %.1f points, bonus %.2f\n", e.Name, e.Team, e.Points, e.Bonus.Total)
	}

	fmt.Fprintf(&b, "\nTotal points: %.1f\nEditors: %d\nTotal bonus: %.2f\n",
		report.Summary.TotalPoints, report.Summary.TotalEditors, report.Summary.TotalBonus)
	if n := len(report.Unmatched); n > 0 {
		fmt.Fprintf(&b, "Unmatched tasks: %d\n", n)
	}

	return b.String()
}
