// ABOUTME: SQLite-backed archive of completed training runs, keyed by ULID.
// ABOUTME: Stores params and summary columns for listing plus JSON blobs of the history and dataset.
package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2389-research/sapling/dtree"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"
)

// ErrNotFound is returned when no run has the requested ID.
var ErrNotFound = errors.New("run not found")

const timeLayout = "2006-01-02T15:04:05.000Z07:00"

// Run is one archived training run.
type Run struct {
	ID        string
	Dataset   string
	Params    dtree.Params
	History   dtree.History
	X         [][2]float64
	Y         []int
	CreatedAt time.Time
}

// Steps is the number of snapshots in the run.
func (r Run) Steps() int {
	return len(r.History)
}

// Summary is a run without its history or data, for list queries.
type Summary struct {
	ID        string
	Dataset   string
	Params    dtree.Params
	Steps     int
	CreatedAt time.Time
}

// Archive is a SQLite run archive.
type Archive struct {
	db *sql.DB
}

// NewID generates a new run ULID using crypto/rand entropy.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// Open opens or creates the archive database at path and migrates the schema.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL,
			max_depth INTEGER NOT NULL,
			min_samples_split INTEGER NOT NULL,
			criterion TEXT NOT NULL,
			steps INTEGER NOT NULL,
			history TEXT NOT NULL,
			data TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);`

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}

type runData struct {
	X [][2]float64 `json:"X"`
	Y []int        `json:"y"`
}

// Save inserts run, assigning an ID and creation time when they are unset.
// It returns the stored run.
func (a *Archive) Save(run Run) (Run, error) {
	if run.ID == "" {
		run.ID = NewID()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	history, err := json.Marshal(run.History)
	if err != nil {
		return Run{}, fmt.Errorf("encode history: %w", err)
	}
	data, err := json.Marshal(runData{X: run.X, Y: run.Y})
	if err != nil {
		return Run{}, fmt.Errorf("encode data: %w", err)
	}

	_, err = a.db.Exec(
		`INSERT INTO runs (run_id, dataset, max_depth, min_samples_split, criterion, steps, history, data, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.Dataset,
		run.Params.MaxDepth,
		run.Params.MinSamplesSplit,
		string(run.Params.Criterion),
		run.Steps(),
		string(history),
		string(data),
		run.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// Get loads the run with id.
func (a *Archive) Get(id string) (Run, error) {
	var (
		run           Run
		criterion     string
		history, data string
		createdAt     string
		steps         int
	)
	err := a.db.QueryRow(
		`SELECT run_id, dataset, max_depth, min_samples_split, criterion, steps, history, data, created_at
		 FROM runs WHERE run_id = ?`, id,
	).Scan(&run.ID, &run.Dataset, &run.Params.MaxDepth, &run.Params.MinSamplesSplit, &criterion, &steps, &history, &data, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("query run: %w", err)
	}

	run.Params.Criterion = dtree.Criterion(criterion)
	if err := json.Unmarshal([]byte(history), &run.History); err != nil {
		return Run{}, fmt.Errorf("decode history: %w", err)
	}
	var rd runData
	if err := json.Unmarshal([]byte(data), &rd); err != nil {
		return Run{}, fmt.Errorf("decode data: %w", err)
	}
	run.X, run.Y = rd.X, rd.Y
	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	return run, nil
}

// List returns up to limit run summaries, newest first. A non-positive limit returns all runs.
func (a *Archive) List(limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := a.db.Query(
		`SELECT run_id, dataset, max_depth, min_samples_split, criterion, steps, created_at
		 FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s         Summary
			criterion string
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.Dataset, &s.Params.MaxDepth, &s.Params.MinSamplesSplit, &criterion, &s.Steps, &createdAt); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.Params.Criterion = dtree.Criterion(criterion)
		if s.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the run with id.
func (a *Archive) Delete(id string) error {
	res, err := a.db.Exec("DELETE FROM runs WHERE run_id = ?", id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}
