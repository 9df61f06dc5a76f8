// Package store persists run history: one row per finished extraction job,
// keeping the chain of custody for every exported snapshot.
package store

import (
	"database/sql"
	"time"
)

// Run records one finished extraction job.
type Run struct {
	ID             string
	RootID         string
	IncludeTrashed bool
	Status         string
	ItemCount      int
	FailureCount   int
	Fingerprint    string
	Message        string
	StartedAt      time.Time
	FinishedAt     sql.NullTime
}

// Store is the run-history persistence interface.
type Store interface {
	// RecordRun inserts a finished run.
	RecordRun(run *Run) error

	// ListRuns returns the most recent runs, newest first.
	ListRuns(limit int) ([]*Run, error)

	// GetRun returns a run by ID, or nil if absent.
	GetRun(id string) (*Run, error)

	// CheckMigrations verifies the schema is up to date.
	CheckMigrations() error

	Close() error
}
