// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dataset persists synthesis results. The store consumes only
// the flat run/pair/record shapes from pkg/types; the synthesis loop
// has no knowledge of it.
package dataset

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/synth-engine/pkg/types"
)

const (
	indexDir    = "index"
	exportedDir = "exported"
	dbFile      = "synth.db"
)

// Store manages the synthesis SQLite database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the database at dir/index/synth.db,
// creating the schema if it does not exist.
func NewStore(cfg types.DatasetConfig) (*Store, error) {
	dbDir := filepath.Join(cfg.Dir, indexDir)
	if err := os.MkdirAll(dbDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	dbPath := filepath.Join(dbDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir}

	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			category TEXT,
			iterations INTEGER,
			accepted INTEGER,
			accept_rate REAL,
			min_difficulty REAL,
			max_difficulty REAL,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS pairs (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			iteration INTEGER NOT NULL,
			question TEXT NOT NULL,
			answer TEXT NOT NULL,
			difficulty REAL NOT NULL,
			score REAL NOT NULL,
			accepted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pairs_run_id ON pairs(run_id)`,
		`CREATE TABLE IF NOT EXISTS records (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			iteration INTEGER NOT NULL,
			target_difficulty REAL NOT NULL,
			accepted INTEGER NOT NULL,
			cause TEXT,
			trace TEXT,
			completed_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	return nil
}

// recordTrace is the JSON blob holding a record's role outputs.
type recordTrace struct {
	Proposed *types.ProposedPair      `json:"proposed,omitempty"`
	Attempt  *types.SolverAttempt     `json:"attempt,omitempty"`
	Verdict  *types.ValidationVerdict `json:"verdict,omitempty"`
}

// SaveRun writes one run's dataset and audit trail in a single
// transaction. Saving the same run twice replaces its rows.
func (s *Store) SaveRun(ctx context.Context, category types.TaskCategory, res *types.RunResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"pairs", "records"} {
		if _, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE run_id = ?`, table), res.RunID); err != nil {
			return fmt.Errorf("clearing old %s: %w", table, err)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, status, category, iterations, accepted, accept_rate, min_difficulty, max_difficulty, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, category=excluded.category,
			iterations=excluded.iterations, accepted=excluded.accepted,
			accept_rate=excluded.accept_rate,
			min_difficulty=excluded.min_difficulty, max_difficulty=excluded.max_difficulty`,
		res.RunID, string(res.Status), string(category),
		res.Summary.Iterations, res.Summary.Accepted, res.Summary.AcceptRate,
		res.Summary.MinDifficulty, res.Summary.MaxDifficulty,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	pairStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO pairs (run_id, iteration, question, answer, difficulty, score, accepted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing pair insert: %w", err)
	}
	defer pairStmt.Close()

	for _, p := range res.Pairs {
		_, err := pairStmt.ExecContext(ctx,
			res.RunID, p.Iteration, p.Question, p.Answer, p.Difficulty, p.Score,
			p.AcceptedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting pair %d: %w", p.Iteration, err)
		}
	}

	recStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO records (run_id, iteration, target_difficulty, accepted, cause, trace, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing record insert: %w", err)
	}
	defer recStmt.Close()

	for _, r := range res.Records {
		traceJSON, err := json.Marshal(recordTrace{Proposed: r.Proposed, Attempt: r.Attempt, Verdict: r.Verdict})
		if err != nil {
			return fmt.Errorf("marshaling record trace: %w", err)
		}
		_, err = recStmt.ExecContext(ctx,
			res.RunID, r.Iteration, r.TargetDifficulty, boolToInt(r.Accepted), r.Cause,
			string(traceJSON), r.CompletedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return fmt.Errorf("inserting record %d: %w", r.Iteration, err)
		}
	}

	return tx.Commit()
}

// LoadPairs returns a run's accepted pairs in acceptance order.
func (s *Store) LoadPairs(ctx context.Context, runID string) ([]types.AcceptedPair, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, question, answer, difficulty, score, accepted_at
		 FROM pairs WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying pairs: %w", err)
	}
	defer rows.Close()

	var pairs []types.AcceptedPair
	for rows.Next() {
		var p types.AcceptedPair
		var acceptedAt string
		if err := rows.Scan(&p.Iteration, &p.Question, &p.Answer, &p.Difficulty, &p.Score, &acceptedAt); err != nil {
			return nil, fmt.Errorf("scanning pair: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, acceptedAt); err == nil {
			p.AcceptedAt = t
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// LoadRecords returns a run's audit trail in execution order.
func (s *Store) LoadRecords(ctx context.Context, runID string) ([]types.IterationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT iteration, target_difficulty, accepted, cause, trace, completed_at
		 FROM records WHERE run_id = ? ORDER BY iteration`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var records []types.IterationRecord
	for rows.Next() {
		var (
			r           types.IterationRecord
			accepted    int
			traceJSON   string
			completedAt string
		)
		if err := rows.Scan(&r.Iteration, &r.TargetDifficulty, &accepted, &r.Cause, &traceJSON, &completedAt); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.Accepted = accepted != 0

		var trace recordTrace
		if err := json.Unmarshal([]byte(traceJSON), &trace); err != nil {
			return nil, fmt.Errorf("parsing record trace: %w", err)
		}
		r.Proposed, r.Attempt, r.Verdict = trace.Proposed, trace.Attempt, trace.Verdict

		if t, err := time.Parse(time.RFC3339Nano, completedAt); err == nil {
			r.CompletedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RunInfo summarizes one stored run for listings.
type RunInfo struct {
	RunID     string
	Status    types.RunStatus
	Category  types.TaskCategory
	Accepted  int
	CreatedAt string
}

// ListRuns returns stored runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]RunInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, category, accepted, created_at FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var infos []RunInfo
	for rows.Next() {
		var info RunInfo
		if err := rows.Scan(&info.RunID, &info.Status, &info.Category, &info.Accepted, &info.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
