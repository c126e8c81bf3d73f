package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jakechorley/editor-points/pkg/db"
)

const reportRunColumns = `id, month, generated_at, config_version, lists, tasks_fetched, editors,
	unmatched, total_points, total_bonus, published_at, document`

// InsertReportRun stores a generated report
func (d *DB) InsertReportRun(ctx context.Context, run *db.ReportRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	lists := run.Lists
	if lists == nil {
		lists = []string{}
	}

	_, err := d.pool.Exec(ctx, `
		INSERT INTO report_run (`+reportRunColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, run.ID, run.Month, run.GeneratedAt, run.ConfigVersion, lists, run.TasksFetched, run.Editors,
		run.Unmatched, run.TotalPoints, run.TotalBonus, run.PublishedAt, run.Document)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

// GetReportRuns retrieves every report run, newest first
func (d *DB) GetReportRuns(ctx context.Context) ([]db.ReportRun, error) {
	rows, err := d.pool.Query(ctx, `
		SELECT `+reportRunColumns+`
		FROM report_run
		ORDER BY generated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	var runs []db.ReportRun
	for rows.Next() {
		run, err := scanReportRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}

	return runs, nil
}

// GetLatestReportRun retrieves the most recent report for a month
func (d *DB) GetLatestReportRun(ctx context.Context, month string) (*db.ReportRun, error) {
	row := d.pool.QueryRow(ctx, `
		SELECT `+reportRunColumns+`
		FROM report_run
		WHERE month = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`, month)

	run, err := scanReportRun(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w for month %s", db.ErrReportNotFound, month)
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// SetReportPublishedAt records when a report was published
func (d *DB) SetReportPublishedAt(ctx context.Context, id string, publishedAt time.Time) error {
	tag, err := d.pool.Exec(ctx, `UPDATE report_run SET published_at = $2 WHERE id = $1`, id, publishedAt)
	if err != nil {
		return fmt.Errorf("failed to update report run %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", db.ErrReportNotFound, id)
	}
	return nil
}

func scanReportRun(row pgx.Row) (*db.ReportRun, error) {
	var run db.ReportRun
	err := row.Scan(&run.ID, &run.Month, &run.GeneratedAt, &run.ConfigVersion, &run.Lists, &run.TasksFetched,
		&run.Editors, &run.Unmatched, &run.TotalPoints, &run.TotalBonus, &run.PublishedAt, &run.Document)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan report run: %w", err)
	}
	return &run, nil
}

var _ db.Database = (*DB)(nil)
