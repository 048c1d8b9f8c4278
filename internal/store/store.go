// Package store provides the run storage interface and SQLite implementation.
package store

import (
	"context"

	"github.com/rcliao/turnfarm/internal/model"
)

// StartRunParams holds parameters for recording a new run.
type StartRunParams struct {
	Mode     string
	Scenario string
}

// FinishRunParams holds the outcome of a run.
type FinishRunParams struct {
	ID           string
	Currency     int64
	ItemValue    float64
	Turns        int
	TargetFights int
	Error        string
}

// ListRunsParams holds parameters for listing runs.
type ListRunsParams struct {
	Mode   string
	Failed bool
	Limit  int
}

// Store defines the run storage interface.
type Store interface {
	// StartRun records a new run and returns it with a fresh ID.
	StartRun(ctx context.Context, p StartRunParams) (*model.Run, error)

	// FinishRun stamps the run's end time and totals.
	FinishRun(ctx context.Context, p FinishRunParams) error

	// GetRun retrieves a run by ID.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// ListRuns lists runs, newest first.
	ListRuns(ctx context.Context, p ListRunsParams) ([]model.Run, error)

	// SaveSnapshots stores a run's checkpoints. Checkpoints already stored for
	// the run are left unchanged.
	SaveSnapshots(ctx context.Context, runID string, snaps []model.Snapshot) error

	// Snapshots returns a run's checkpoints in capture order.
	Snapshots(ctx context.Context, runID string) ([]model.Snapshot, error)

	// AddDaily adds d to the accumulator for d.Date and returns the new totals.
	// A date with no row starts from zero.
	AddDaily(ctx context.Context, d model.Daily) (*model.Daily, error)

	// Daily returns the accumulator for date, zero when nothing was recorded.
	Daily(ctx context.Context, date string) (*model.Daily, error)

	// DeleteRun removes a run and its checkpoints. The daily accumulator is
	// left unchanged.
	DeleteRun(ctx context.Context, id string) error

	// Close closes the store.
	Close() error
}
