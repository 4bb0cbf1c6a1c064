// Package store handles SQLite persistence of cut counter runs.
package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/procreport/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// ErrRunNotFound is returned when a run id does not exist or no run was stored yet.
var ErrRunNotFound = errors.New("run not found")

// Store wraps SQLite access for run data.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY,
			uuid TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS run_cut_stats (
			run_id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			processed INTEGER NOT NULL,
			accepted INTEGER NOT NULL,
			rejected INTEGER NOT NULL,
			PRIMARY KEY (run_id, name)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertRun stores the counters of one run, keeping their order.
func (s *Store) InsertRun(ctx context.Context, label string, createdAt time.Time, stats []model.CutStat) (run model.Run, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Run{}, err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	run = model.Run{
		UUID:      uuid.NewString(),
		Label:     label,
		CreatedAt: createdAt.UTC(),
		Cuts:      len(stats),
	}
	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (uuid, label, created_at) VALUES (?, ?, ?)`,
		run.UUID, run.Label, run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return model.Run{}, err
	}
	run.ID, err = res.LastInsertId()
	if err != nil {
		return model.Run{}, err
	}

	if len(stats) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_cut_stats (run_id, position, name, description, processed, accepted, rejected)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return model.Run{}, err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, cs := range stats {
			if _, err := stmt.ExecContext(ctx, run.ID, i, cs.Name, cs.Description,
				int64(cs.Processed), int64(cs.Accepted), int64(cs.Rejected)); err != nil {
				return model.Run{}, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return model.Run{}, err
	}
	return run, nil
}

// ListRuns returns every run, oldest first.
func (s *Store) ListRuns(ctx context.Context) ([]model.Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT r.id, r.uuid, r.label, r.created_at, COUNT(c.name)
		FROM runs r
		LEFT JOIN run_cut_stats c ON c.run_id = r.id
		GROUP BY r.id
		ORDER BY r.created_at ASC, r.id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var runs []model.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns the run with the given id.
func (s *Store) GetRun(ctx context.Context, id int64) (model.Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT r.id, r.uuid, r.label, r.created_at, COUNT(c.name)
		FROM runs r
		LEFT JOIN run_cut_stats c ON c.run_id = r.id
		WHERE r.id = ?
		GROUP BY r.id`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrRunNotFound
	}
	return run, err
}

// LatestRun returns the most recently created run.
func (s *Store) LatestRun(ctx context.Context) (model.Run, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Run{}, ErrRunNotFound
	}
	if err != nil {
		return model.Run{}, err
	}
	return s.GetRun(ctx, id)
}

// LoadRun returns the counters of a run in their stored order.
func (s *Store) LoadRun(ctx context.Context, id int64) ([]model.CutStat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, description, processed, accepted, rejected
		FROM run_cut_stats
		WHERE run_id = ?
		ORDER BY position ASC`, id)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var stats []model.CutStat
	for rows.Next() {
		var cs model.CutStat
		var processed, accepted, rejected int64
		if err := rows.Scan(&cs.Name, &cs.Description, &processed, &accepted, &rejected); err != nil {
			return nil, err
		}
		cs.Processed = uint64(processed)
		cs.Accepted = uint64(accepted)
		cs.Rejected = uint64(rejected)
		stats = append(stats, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.Run, error) {
	var run model.Run
	var createdAt string
	if err := sc.Scan(&run.ID, &run.UUID, &run.Label, &createdAt, &run.Cuts); err != nil {
		return model.Run{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.Run{}, err
	}
	run.CreatedAt = parsed
	return run, nil
}
