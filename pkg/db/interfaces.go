package db

import (
	"context"
	"errors"
	"time"
)

// ErrReportNotFound is returned when no stored report matches a query
var ErrReportNotFound = errors.New("report not found")

// ReportStore defines the interface for report run database operations
type ReportStore interface {
	InsertReportRun(ctx context.Context, run *ReportRun) error
	GetReportRuns(ctx context.Context) ([]ReportRun, error)
	GetLatestReportRun(ctx context.Context, month string) (*ReportRun, error)
	SetReportPublishedAt(ctx context.Context, id string, publishedAt time.Time) error
}

// Database defines the interface for all database operations.
// Both postgres.DB and sqlite.DB implement this interface.
type Database interface {
	ReportStore
	Close() error
}
