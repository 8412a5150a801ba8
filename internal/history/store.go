// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history records digest runs and the papers they posted in a
// SQLite database so later runs can skip papers already announced.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// timeLayout is how UTC timestamps are stored. It has a fixed width so
// stored values sort in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// now is the clock used for run and post timestamps. Tests override it.
var now = time.Now

// Run is one pipeline run.
type Run struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty" yaml:"finished_at,omitempty"`
	DateExpr   string    `json:"date_expr" yaml:"date_expr"`
	Found      int       `json:"found" yaml:"found"`
	Posted     int       `json:"posted" yaml:"posted"`
	Skipped    int       `json:"skipped" yaml:"skipped"`
	Failed     int       `json:"failed" yaml:"failed"`
}

// Finished reports whether FinishRun has been called for the run.
func (r Run) Finished() bool {
	return !r.FinishedAt.IsZero()
}

// Counts are the totals stored when a run finishes.
type Counts struct {
	Found, Posted, Skipped, Failed int
}

// Entry is one posted paper.
type Entry struct {
	PaperID  string    `json:"paper_id" yaml:"paper_id"`
	Title    string    `json:"title" yaml:"title"`
	RunID    uuid.UUID `json:"run_id" yaml:"run_id"`
	PostedAt time.Time `json:"posted_at" yaml:"posted_at"`
}

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and creates the schema if it
// does not exist.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
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
			started_at TEXT NOT NULL,
			finished_at TEXT,
			date_expr TEXT,
			found INTEGER NOT NULL DEFAULT 0,
			posted INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS posted (
			paper_id TEXT PRIMARY KEY,
			title TEXT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			posted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_posted_run_id ON posted(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// StartRun inserts a new run and returns it.
func (s *Store) StartRun(ctx context.Context, dateExpr string) (Run, error) {
	r := Run{ID: uuid.New(), StartedAt: now().UTC(), DateExpr: dateExpr}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, date_expr) VALUES (?, ?, ?)`,
		r.ID.String(), r.StartedAt.Format(timeLayout), dateExpr)
	if err != nil {
		return Run{}, fmt.Errorf("inserting run: %w", err)
	}
	return r, nil
}

// FinishRun stores the run's totals and finish time.
func (s *Store) FinishRun(ctx context.Context, id uuid.UUID, c Counts) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, found = ?, posted = ?, skipped = ?, failed = ? WHERE id = ?`,
		now().UTC().Format(timeLayout), c.Found, c.Posted, c.Skipped, c.Failed, id.String())
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("run %s not found", id)
	}
	return nil
}

// MarkPosted records that paperID was posted during run. A paper posted
// again keeps its latest run.
func (s *Store) MarkPosted(ctx context.Context, run uuid.UUID, paperID, title string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO posted (paper_id, title, run_id, posted_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(paper_id) DO UPDATE SET title = excluded.title, run_id = excluded.run_id, posted_at = excluded.posted_at`,
		paperID, title, run.String(), now().UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("recording %s: %w", paperID, err)
	}
	return nil
}

// IsPosted reports whether any run posted paperID.
func (s *Store) IsPosted(ctx context.Context, paperID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM posted WHERE paper_id = ?`, paperID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying %s: %w", paperID, err)
	}
	return true, nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]Run, error) {
	if n <= 0 {
		n = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, date_expr, found, posted, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r                 Run
			id, started       string
			finished, dateArg sql.NullString
		)
		if err := rows.Scan(&id, &started, &finished, &dateArg, &r.Found, &r.Posted, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parsing run id %q: %w", id, err)
		}
		r.StartedAt, _ = time.Parse(timeLayout, started)
		if finished.Valid {
			r.FinishedAt, _ = time.Parse(timeLayout, finished.String)
		}
		r.DateExpr = dateArg.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Entries returns posted papers, oldest first.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, title, run_id, posted_at FROM posted ORDER BY posted_at, paper_id`)
	if err != nil {
		return nil, fmt.Errorf("querying posted papers: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e             Entry
			title         sql.NullString
			runID, posted string
		)
		if err := rows.Scan(&e.PaperID, &title, &runID, &posted); err != nil {
			return nil, fmt.Errorf("scanning posted paper: %w", err)
		}
		e.Title = title.String
		if e.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("parsing run id %q: %w", runID, err)
		}
		e.PostedAt, _ = time.Parse(timeLayout, posted)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
