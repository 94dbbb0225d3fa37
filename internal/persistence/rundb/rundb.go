// Package rundb is the sqlite results index for soak runs: one row per
// automated run plus its per-floor breakdown, appended from a single
// background writer so the sim loop never blocks on disk.
package rundb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"
)

// RunRecord summarizes one finished automated run.
type RunRecord struct {
	RunID     string
	Persona   string
	Seed      int64
	StartedAt string
	EndedAt   string
	Depth     int
	Turns     uint64
	Outcome   string // "died", "aborted", "turn_cap", "depth_cap"
	FinalHP   int

	// Floors carries the per-floor breakdown; rows land in the floors
	// table alongside the run row.
	Floors []FloorRecord
}

// FloorRecord is one visited floor of a run.
type FloorRecord struct {
	Depth       int
	EnteredTurn uint64
	ExitedTurn  uint64
}

type Store struct {
	db *sql.DB

	ch   chan RunRecord
	wg   sync.WaitGroup
	once sync.Once

	// mu orders RecordRun sends against the channel close so a record
	// racing Close is dropped instead of panicking.
	mu     sync.Mutex
	closed bool
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{
		db: db,
		ch: make(chan RunRecord, 1024),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL suits the append-only workload; NORMAL is enough durability
	// for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			persona TEXT NOT NULL,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			depth INTEGER NOT NULL,
			turns INTEGER NOT NULL,
			outcome TEXT NOT NULL,
			final_hp INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_runs_persona ON runs(persona);`,
		`CREATE TABLE IF NOT EXISTS floors (
			run_id TEXT NOT NULL,
			depth INTEGER NOT NULL,
			entered_turn INTEGER NOT NULL,
			exited_turn INTEGER NOT NULL,
			PRIMARY KEY (run_id, depth)
		);`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun enqueues a finished run. Safe to call from the sim loop and
// concurrently with Close; drops silently once closing has begun.
func (s *Store) RecordRun(rec RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.ch <- rec
}

func (s *Store) loop() {
	for rec := range s.ch {
		if _, err := s.db.Exec(
			`INSERT OR REPLACE INTO runs
			 (run_id, persona, seed, started_at, ended_at, depth, turns, outcome, final_hp)
			 VALUES (?,?,?,?,?,?,?,?,?)`,
			rec.RunID, rec.Persona, rec.Seed, rec.StartedAt, rec.EndedAt,
			rec.Depth, rec.Turns, rec.Outcome, rec.FinalHP,
		); err != nil {
			// Secondary index: losing a row is preferable to stalling.
			fmt.Fprintf(os.Stderr, "rundb: insert run: %v\n", err)
			continue
		}
		for _, fl := range rec.Floors {
			if _, err := s.db.Exec(
				`INSERT OR REPLACE INTO floors (run_id, depth, entered_turn, exited_turn)
				 VALUES (?,?,?,?)`,
				rec.RunID, fl.Depth, fl.EnteredTurn, fl.ExitedTurn,
			); err != nil {
				fmt.Fprintf(os.Stderr, "rundb: insert floor: %v\n", err)
			}
		}
	}
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(ctx context.Context, limit int) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, persona, seed, started_at, ended_at, depth, turns, outcome, final_hp
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.RunID, &r.Persona, &r.Seed, &r.StartedAt, &r.EndedAt,
			&r.Depth, &r.Turns, &r.Outcome, &r.FinalHP); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Run fetches one run by ID.
func (s *Store) Run(ctx context.Context, runID string) (RunRecord, error) {
	var r RunRecord
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, persona, seed, started_at, ended_at, depth, turns, outcome, final_hp
		 FROM runs WHERE run_id = ?`, runID).
		Scan(&r.RunID, &r.Persona, &r.Seed, &r.StartedAt, &r.EndedAt,
			&r.Depth, &r.Turns, &r.Outcome, &r.FinalHP)
	return r, err
}

// Floors returns a run's per-floor breakdown, shallowest first.
func (s *Store) Floors(ctx context.Context, runID string) ([]FloorRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT depth, entered_turn, exited_turn FROM floors
		 WHERE run_id = ? ORDER BY depth ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []FloorRecord
	for rows.Next() {
		var fl FloorRecord
		if err := rows.Scan(&fl.Depth, &fl.EnteredTurn, &fl.ExitedTurn); err != nil {
			return nil, err
		}
		out = append(out, fl)
	}
	return out, rows.Err()
}

func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?,?)`, key, value)
	return err
}

// Close drains pending writes and closes the database.
func (s *Store) Close() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}
