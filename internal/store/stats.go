package store

import (
	"context"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath       string      `json:"db_path"`
	DBSizeBytes  int64       `json:"db_size_bytes"`
	TotalRuns    int         `json:"total_runs"`
	FinishedRuns int         `json:"finished_runs"`
	FailedRuns   int         `json:"failed_runs"`
	Snapshots    int         `json:"snapshots"`
	Days         int         `json:"days"`
	Modes        []ModeStats `json:"modes"`
}

// ModeStats holds per-mode totals.
type ModeStats struct {
	Mode     string `json:"mode"`
	Runs     int    `json:"runs"`
	Turns    int    `json:"turns"`
	Currency int64  `json:"currency"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	counts := []struct {
		dst   *int
		query string
	}{
		{&st.TotalRuns, `SELECT COUNT(*) FROM runs`},
		{&st.FinishedRuns, `SELECT COUNT(*) FROM runs WHERE ended_at IS NOT NULL`},
		{&st.FailedRuns, `SELECT COUNT(*) FROM runs WHERE error IS NOT NULL`},
		{&st.Snapshots, `SELECT COUNT(*) FROM snapshots`},
		{&st.Days, `SELECT COUNT(*) FROM daily_results`},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT mode, COUNT(*) AS cnt, COALESCE(SUM(turns), 0), COALESCE(SUM(currency), 0)
		FROM runs GROUP BY mode ORDER BY cnt DESC`)
	if err != nil {
		return nil, fmt.Errorf("mode totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m ModeStats
		if err := rows.Scan(&m.Mode, &m.Runs, &m.Turns, &m.Currency); err != nil {
			return nil, fmt.Errorf("scan mode totals: %w", err)
		}
		st.Modes = append(st.Modes, m)
	}
	return st, rows.Err()
}
