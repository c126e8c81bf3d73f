// Package sqlite stores report runs in a local SQLite file for single-user
// deployments without a PostgreSQL server.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jakechorley/editor-points/pkg/db"
)

const schema = `
CREATE TABLE IF NOT EXISTS report_run (
	id TEXT PRIMARY KEY,
	month TEXT NOT NULL,
	generated_at TEXT NOT NULL,
	config_version TEXT NOT NULL,
	lists TEXT NOT NULL,
	tasks_fetched INTEGER NOT NULL,
	editors INTEGER NOT NULL,
	unmatched INTEGER NOT NULL,
	total_points REAL NOT NULL,
	total_bonus REAL NOT NULL,
	published_at TEXT,
	document BLOB NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_report_run_month_generated ON report_run(month, generated_at);
`

const reportRunColumns = `id, month, generated_at, config_version, lists, tasks_fetched, editors,
	unmatched, total_points, total_bonus, published_at, document`

// DB provides report storage backed by SQLite
type DB struct {
	path string
	db   *sql.DB
}

// Open opens or creates the database file at path
func Open(ctx context.Context, path string) (*DB, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite", absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if _, err := conn.ExecContext(ctx, schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &DB{path: absPath, db: conn}, nil
}

// Path returns the absolute database file path
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// InsertReportRun stores a generated report
func (d *DB) InsertReportRun(ctx context.Context, run *db.ReportRun) error {
	if err := run.Validate(); err != nil {
		return err
	}

	lists := run.Lists
	if lists == nil {
		lists = []string{}
	}
	listsJSON, err := json.Marshal(lists)
	if err != nil {
		return fmt.Errorf("failed to encode lists: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		INSERT INTO report_run (`+reportRunColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.Month, formatTime(run.GeneratedAt), run.ConfigVersion, string(listsJSON), run.TasksFetched,
		run.Editors, run.Unmatched, run.TotalPoints, run.TotalBonus, formatOptionalTime(run.PublishedAt), run.Document)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

// GetReportRuns retrieves every report run, newest first
func (d *DB) GetReportRuns(ctx context.Context) ([]db.ReportRun, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+reportRunColumns+` FROM report_run`)
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

	db.SortReportRuns(runs)
	return runs, nil
}

// GetLatestReportRun retrieves the most recent report for a month
func (d *DB) GetLatestReportRun(ctx context.Context, month string) (*db.ReportRun, error) {
	rows, err := d.db.QueryContext(ctx, `SELECT `+reportRunColumns+` FROM report_run WHERE month = ?`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query report runs: %w", err)
	}
	defer rows.Close()

	var latest *db.ReportRun
	for rows.Next() {
		run, err := scanReportRun(rows)
		if err != nil {
			return nil, err
		}
		if latest == nil || run.GeneratedAt.After(latest.GeneratedAt) {
			latest = run
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}

	if latest == nil {
		return nil, fmt.Errorf("%w for month %s", db.ErrReportNotFound, month)
	}
	return latest, nil
}

// SetReportPublishedAt records when a report was published
func (d *DB) SetReportPublishedAt(ctx context.Context, id string, publishedAt time.Time) error {
	result, err := d.db.ExecContext(ctx, `UPDATE report_run SET published_at = ? WHERE id = ?`, formatTime(publishedAt), id)
	if err != nil {
		return fmt.Errorf("failed to update report run %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update report run %s: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", db.ErrReportNotFound, id)
	}
	return nil
}

func scanReportRun(rows *sql.Rows) (*db.ReportRun, error) {
	var (
		run         db.ReportRun
		generatedAt string
		listsJSON   string
		publishedAt sql.NullString
	)
	if err := rows.Scan(&run.ID, &run.Month, &generatedAt, &run.ConfigVersion, &listsJSON, &run.TasksFetched,
		&run.Editors, &run.Unmatched, &run.TotalPoints, &run.TotalBonus, &publishedAt, &run.Document); err != nil {
		return nil, fmt.Errorf("failed to scan report run: %w", err)
	}

	var err error
	if run.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt); err != nil {
		return nil, fmt.Errorf("invalid generated_at for report run %s: %w", run.ID, err)
	}
	if publishedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, publishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("invalid published_at for report run %s: %w", run.ID, err)
		}
		run.PublishedAt = &t
	}
	if err := json.Unmarshal([]byte(listsJSON), &run.Lists); err != nil {
		return nil, fmt.Errorf("invalid lists for report run %s: %w", run.ID, err)
	}
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func formatOptionalTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

var _ db.Database = (*DB)(nil)
