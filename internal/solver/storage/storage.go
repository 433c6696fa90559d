// Package storage indexes simulation runs and their mesh snapshots in a
// local sqlite database so past runs can be listed and reloaded without
// scanning the output tree.
package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Store struct {
	*sql.DB
}

// Run is one indexed layer simulation.
type Run struct {
	ID              string
	Name            string
	Segments        int
	PeakTemperature float64
	Elapsed         time.Duration
	CreatedAt       time.Time
}

// Snapshot points at one persisted mesh archive within a run.
type Snapshot struct {
	RunID        string
	SegmentIndex int
	Path         string
	CreatedAt    time.Time
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open run index %s: %w", path, err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			name TEXT,
			segments INTEGER,
			peak_temperature DOUBLE,
			elapsed_ns BIGINT,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS snapshots (
			run_id TEXT,
			segment_index INTEGER,
			path TEXT,
			timestamp TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY(run_id, segment_index),
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize run index schema: %w", err)
	}

	return &Store{db}, nil
}

func (s *Store) InsertRun(r Run) error {
	_, err := s.Exec("INSERT INTO runs (run_id, name, segments, peak_temperature, elapsed_ns) VALUES (?, ?, ?, ?, ?)",
		r.ID, r.Name, r.Segments, r.PeakTemperature, r.Elapsed.Nanoseconds())
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}
	return nil
}

func (s *Store) InsertSnapshot(runID string, segmentIndex int, path string) error {
	_, err := s.Exec("INSERT INTO snapshots (run_id, segment_index, path) VALUES (?, ?, ?)",
		runID, segmentIndex, path)
	if err != nil {
		return fmt.Errorf("failed to record snapshot %d of run %s: %w", segmentIndex, runID, err)
	}
	return nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.Query("SELECT run_id, name, segments, peak_temperature, elapsed_ns, timestamp FROM runs ORDER BY timestamp DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var elapsedNS int64
		if err := rows.Scan(&r.ID, &r.Name, &r.Segments, &r.PeakTemperature, &elapsedNS, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.Elapsed = time.Duration(elapsedNS)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Snapshots lists the persisted meshes of a run in segment order.
func (s *Store) Snapshots(runID string) ([]Snapshot, error) {
	rows, err := s.Query("SELECT run_id, segment_index, path, timestamp FROM snapshots WHERE run_id = ? ORDER BY segment_index", runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(&sn.RunID, &sn.SegmentIndex, &sn.Path, &sn.CreatedAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, sn)
	}
	return snaps, rows.Err()
}
