package store

import (
	"context"
	"fmt"
	"time"

	"github.com/rcliao/turnfarm/internal/model"
)

// RunExport is a run with its checkpoints.
type RunExport struct {
	model.Run
	Snapshots []model.Snapshot `json:"snapshots"`
}

// ExportAll returns every run with its snapshots, optionally filtered by mode.
func (s *SQLiteStore) ExportAll(ctx context.Context, mode string) ([]RunExport, error) {
	query := `SELECT ` + runColumns + ` FROM runs`
	args := []interface{}{}
	if mode != "" {
		query += ` WHERE mode = ?`
		args = append(args, mode)
	}
	query += ` ORDER BY started_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		runs = append(runs, r)
	}
	rows.Close()

	out := make([]RunExport, 0, len(runs))
	for _, r := range runs {
		snaps, err := s.Snapshots(ctx, r.ID)
		if err != nil {
			return nil, fmt.Errorf("snapshots for %s: %w", r.ID, err)
		}
		out = append(out, RunExport{Run: r, Snapshots: snaps})
	}
	return out, nil
}

// Import stores runs from an export. Runs whose ID already exists are skipped.
func (s *SQLiteStore) Import(ctx context.Context, runs []RunExport) (int, error) {
	imported := 0
	for _, r := range runs {
		var exists int
		s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs WHERE id = ?`, r.ID).Scan(&exists)
		if exists > 0 {
			continue
		}
		if !model.ValidModes[r.Mode] {
			return imported, fmt.Errorf("run %s: invalid mode %q", r.ID, r.Mode)
		}

		var scenario, endedAt, errText *string
		if r.Scenario != "" {
			scenario = &r.Scenario
		}
		if r.EndedAt != nil {
			e := r.EndedAt.UTC().Format(time.RFC3339Nano)
			endedAt = &e
		}
		if r.Error != "" {
			errText = &r.Error
		}
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Mode, scenario, r.StartedAt.UTC().Format(time.RFC3339Nano), endedAt,
			r.Currency, r.ItemValue, r.Turns, r.TargetFights, errText)
		if err != nil {
			return imported, fmt.Errorf("insert run %s: %w", r.ID, err)
		}
		if err := s.SaveSnapshots(ctx, r.ID, r.Snapshots); err != nil {
			return imported, fmt.Errorf("run %s: %w", r.ID, err)
		}
		imported++
	}
	return imported, nil
}
