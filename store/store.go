// Package store keeps a history of solver runs in SQLite
package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/notargets/HeatKernel/solver"
	"github.com/notargets/HeatKernel/utils"
)

// schema.sql creates the runs table and its indexes
//
//go:embed schema.sql
var schemaSQL string

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
}

// Store wraps the run history database
type Store struct {
	*sql.DB
	now func() time.Time
}

// Run is one recorded solver run
type Run struct {
	ID        string
	CreatedAt time.Time
	solver.Metrics
	SnapshotPath string
}

// Open opens or creates the database at path and applies the schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run store: %w", err)
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply run store schema: %w", err)
	}

	utils.Logf("opened run store %s", path)
	return &Store{DB: db, now: time.Now}, nil
}

// Record stores m with an optional snapshot path and returns the new run ID
func (s *Store) Record(m solver.Metrics, snapshotPath string) (string, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO runs (run_id, created_unix_nanos, implementation, workers,
			nx, ny, nt, elapsed_seconds, throughput_mlups, center_value, snapshot_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.Exec(query, id, s.now().UnixNano(), m.Implementation, m.Workers,
		m.Nx, m.Ny, m.Nt, m.Elapsed, m.Throughput, m.CenterValue, snapshotPath)
	if err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

const selectRuns = `
	SELECT run_id, created_unix_nanos, implementation, workers, nx, ny, nt,
		elapsed_seconds, throughput_mlups, center_value, snapshot_path
	FROM runs
`

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var (
		r     Run
		nanos int64
	)
	err := row.Scan(&r.ID, &nanos, &r.Implementation, &r.Workers, &r.Nx, &r.Ny, &r.Nt,
		&r.Elapsed, &r.Throughput, &r.CenterValue, &r.SnapshotPath)
	if err != nil {
		return Run{}, err
	}
	r.CreatedAt = time.Unix(0, nanos)
	return r, nil
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(limit int) ([]Run, error) {
	query := selectRuns + " ORDER BY created_unix_nanos DESC, rowid DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Get returns the run with the given ID, or sql.ErrNoRows
func (s *Store) Get(id string) (Run, error) {
	r, err := scanRun(s.QueryRow(selectRuns+" WHERE run_id = ?", id))
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return r, nil
}

// Best returns the highest-throughput run per implementation for a grid
func (s *Store) Best(nx, ny, nt int) ([]Run, error) {
	query := selectRuns + `
		WHERE nx = ? AND ny = ? AND nt = ? AND rowid IN (
			SELECT rowid FROM runs r2
			WHERE r2.nx = runs.nx AND r2.ny = runs.ny AND r2.nt = runs.nt
				AND r2.implementation = runs.implementation
			ORDER BY r2.throughput_mlups DESC LIMIT 1
		)
		ORDER BY throughput_mlups DESC
	`

	rows, err := s.Query(query, nx, ny, nt)
	if err != nil {
		return nil, fmt.Errorf("failed to query best runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
