package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/turnfarm/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		mode          TEXT NOT NULL DEFAULT 'full',
		scenario      TEXT,
		started_at    TEXT NOT NULL,
		ended_at      TEXT,
		currency      INTEGER NOT NULL DEFAULT 0,
		item_value    REAL NOT NULL DEFAULT 0,
		turns         INTEGER NOT NULL DEFAULT 0,
		target_fights INTEGER NOT NULL DEFAULT 0,
		error         TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
	CREATE INDEX IF NOT EXISTS idx_runs_mode ON runs(mode);

	CREATE TABLE IF NOT EXISTS snapshots (
		run_id      TEXT NOT NULL REFERENCES runs(id),
		checkpoint  TEXT NOT NULL,
		seq         INTEGER NOT NULL,
		currency    INTEGER NOT NULL,
		items       TEXT NOT NULL,
		turns       INTEGER NOT NULL,
		taken_at    TEXT NOT NULL,
		PRIMARY KEY (run_id, checkpoint)
	);

	CREATE TABLE IF NOT EXISTS daily_results (
		date        TEXT PRIMARY KEY,
		currency    INTEGER NOT NULL DEFAULT 0,
		items       REAL NOT NULL DEFAULT 0,
		turns       INTEGER NOT NULL DEFAULT 0
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) StartRun(ctx context.Context, p StartRunParams) (*model.Run, error) {
	mode := p.Mode
	if mode == "" {
		mode = "full"
	}
	if !model.ValidModes[mode] {
		return nil, fmt.Errorf("invalid mode %q", mode)
	}

	now := time.Now().UTC()
	id := s.newID()

	var scenario *string
	if p.Scenario != "" {
		scenario = &p.Scenario
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, mode, scenario, started_at) VALUES (?, ?, ?, ?)`,
		id, mode, scenario, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return &model.Run{ID: id, Mode: mode, Scenario: p.Scenario, StartedAt: now}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, p FinishRunParams) error {
	var errText *string
	if p.Error != "" {
		errText = &p.Error
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET ended_at = ?, currency = ?, item_value = ?, turns = ?, target_fights = ?, error = ?
		 WHERE id = ? AND ended_at IS NULL`,
		now, p.Currency, p.ItemValue, p.Turns, p.TargetFights, errText, p.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found or already finished: %s", p.ID)
	}
	return nil
}

const runColumns = `id, mode, scenario, started_at, ended_at, currency, item_value, turns, target_fights, error`

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run not found: %s", id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListRunsParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	where := []string{"1 = 1"}
	args := []interface{}{}
	if p.Mode != "" {
		where = append(where, "mode = ?")
		args = append(args, p.Mode)
	}
	if p.Failed {
		where = append(where, "error IS NOT NULL")
	}

	query := fmt.Sprintf(`SELECT %s FROM runs WHERE %s ORDER BY started_at DESC, id DESC LIMIT ?`,
		runColumns, strings.Join(where, " AND "))
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *SQLiteStore) SaveSnapshots(ctx context.Context, runID string, snaps []model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i, snap := range snaps {
		if !model.ValidCheckpoints[snap.Checkpoint] {
			return fmt.Errorf("invalid checkpoint %q", snap.Checkpoint)
		}
		items, err := json.Marshal(snap.Items)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO snapshots (run_id, checkpoint, seq, currency, items, turns, taken_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, string(snap.Checkpoint), i, snap.Currency, string(items), snap.Turns,
			snap.TakenAt.UTC().Format(time.RFC3339Nano))
		if err != nil {
			return fmt.Errorf("insert snapshot: %w", err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Snapshots(ctx context.Context, runID string) ([]model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT checkpoint, currency, items, turns, taken_at FROM snapshots WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []model.Snapshot
	for rows.Next() {
		var snap model.Snapshot
		var cp, items, takenAt string
		if err := rows.Scan(&cp, &snap.Currency, &items, &snap.Turns, &takenAt); err != nil {
			return nil, err
		}
		snap.Checkpoint = model.Checkpoint(cp)
		if err := json.Unmarshal([]byte(items), &snap.Items); err != nil {
			return nil, fmt.Errorf("decode items for %s: %w", cp, err)
		}
		snap.TakenAt, _ = time.Parse(time.RFC3339Nano, takenAt)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("delete snapshots: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run not found: %s", id)
	}
	return tx.Commit()
}

func (s *SQLiteStore) AddDaily(ctx context.Context, d model.Daily) (*model.Daily, error) {
	if d.Date == "" {
		return nil, fmt.Errorf("daily result needs a date")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO daily_results (date, currency, items, turns) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO UPDATE SET
		   currency = currency + excluded.currency,
		   items = items + excluded.items,
		   turns = turns + excluded.turns`,
		d.Date, d.Currency, d.Items, d.Turns)
	if err != nil {
		return nil, fmt.Errorf("add daily: %w", err)
	}
	return s.Daily(ctx, d.Date)
}

func (s *SQLiteStore) Daily(ctx context.Context, date string) (*model.Daily, error) {
	d := &model.Daily{Date: date}
	err := s.db.QueryRowContext(ctx,
		`SELECT currency, items, turns FROM daily_results WHERE date = ?`, date).
		Scan(&d.Currency, &d.Items, &d.Turns)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return d, nil
}

// DailyHistory returns accumulators for the most recent days, newest first.
func (s *SQLiteStore) DailyHistory(ctx context.Context, limit int) ([]model.Daily, error) {
	if limit <= 0 {
		limit = 7
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT date, currency, items, turns FROM daily_results ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Daily
	for rows.Next() {
		var d model.Daily
		if err := rows.Scan(&d.Date, &d.Currency, &d.Items, &d.Turns); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner) (model.Run, error) {
	var r model.Run
	var scenario, endedAt, errText sql.NullString
	var startedAt string

	err := row.Scan(
		&r.ID, &r.Mode, &scenario, &startedAt, &endedAt,
		&r.Currency, &r.ItemValue, &r.Turns, &r.TargetFights, &errText,
	)
	if err != nil {
		return r, err
	}

	r.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if scenario.Valid {
		r.Scenario = scenario.String
	}
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, endedAt.String)
		r.EndedAt = &t
	}
	if errText.Valid {
		r.Error = errText.String
	}
	return r, nil
}
