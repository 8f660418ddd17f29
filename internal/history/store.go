package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"oszimport/internal/config"
)

// ErrNotFound is returned when no run matches an identifier.
var ErrNotFound = errors.New("run not found")

// ErrAmbiguous is returned when an identifier prefix matches several runs.
var ErrAmbiguous = errors.New("run id prefix is ambiguous")

// Status is the final (or current) state of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// Run is a persisted import run.
type Run struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	StagingDir     string    `json:"staging_dir,omitempty"`
	Temporary      bool      `json:"temporary"`
	BatchSize      int       `json:"batch_size"`
	Status         Status    `json:"status"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	LaunchFailures int       `json:"launch_failures"`
	Error          string    `json:"error,omitempty"`
	CleanupError   string    `json:"cleanup_error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	FinishedAt     time.Time `json:"finished_at,omitzero"`
}

// Item is the launch outcome of one dispatched item.
type Item struct {
	Position int    `json:"position"`
	Batch    int    `json:"batch"`
	Name     string `json:"name"`
	Launched bool   `json:"launched"`
	Error    string `json:"error,omitempty"`
}

// Store manages run history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenFromConfig opens the history database under the configured state_dir.
func OpenFromConfig(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return Open(cfg.HistoryPath())
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure history directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a run in the running state.
func (s *Store) BeginRun(ctx context.Context, run Run) error {
	if strings.TrimSpace(run.ID) == "" {
		return errors.New("begin run: empty id")
	}
	started := run.StartedAt
	if started.IsZero() {
		started = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, batch_size, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		run.Source,
		run.BatchSize,
		StatusRunning,
		formatTime(started),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// RecordItems stores per-item launch outcomes for a run.
func (s *Store) RecordItems(ctx context.Context, runID string, outcomes []Item) error {
	if len(outcomes) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin items tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO run_items (run_id, position, batch, name, launched, error) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare items insert: %w", err)
	}
	defer stmt.Close()

	for _, item := range outcomes {
		if _, err := stmt.ExecContext(ctx, runID, item.Position, item.Batch, item.Name, boolToInt(item.Launched), nullableString(item.Error)); err != nil {
			return fmt.Errorf("insert item %s: %w", item.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit items: %w", err)
	}
	return nil
}

// FinishRun stores the final status and tally of a run.
func (s *Store) FinishRun(ctx context.Context, run Run) error {
	finished := run.FinishedAt
	if finished.IsZero() {
		finished = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET staging_dir = ?, temporary = ?, status = ?, total = ?, completed = ?,
            launch_failures = ?, error = ?, cleanup_error = ?, finished_at = ?
        WHERE id = ?`,
		nullableString(run.StagingDir),
		boolToInt(run.Temporary),
		run.Status,
		run.Total,
		run.Completed,
		run.LaunchFailures,
		nullableString(run.Error),
		nullableString(run.CleanupError),
		formatTime(finished),
		run.ID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, ErrNotFound)
	}
	return nil
}

const runColumns = `id, source, staging_dir, temporary, batch_size, status, total, completed,
    launch_failures, error, cleanup_error, started_at, finished_at`

// List returns the most recent runs first. A non-positive limit returns all runs.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get returns the run whose ID equals or starts with id, and its items.
func (s *Store) Get(ctx context.Context, id string) (Run, []Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Run{}, nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id LIMIT 2`,
		id, len(id), id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("get run: %w", err)
	}
	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return Run{}, nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return Run{}, nil, err
	}
	rows.Close()

	switch {
	case len(matches) == 0:
		return Run{}, nil, fmt.Errorf("%s: %w", id, ErrNotFound)
	case len(matches) > 1 && matches[0].ID != id:
		return Run{}, nil, fmt.Errorf("%s: %w", id, ErrAmbiguous)
	}
	run := matches[0]

	items, err := s.items(ctx, run.ID)
	if err != nil {
		return Run{}, nil, err
	}
	return run, items, nil
}

func (s *Store) items(ctx context.Context, runID string) ([]Item, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT position, batch, name, launched, error FROM run_items WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var (
			item     Item
			launched int
			errText  sql.NullString
		)
		if err := rows.Scan(&item.Position, &item.Batch, &item.Name, &launched, &errText); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		item.Launched = launched != 0
		item.Error = errText.String
		items = append(items, item)
	}
	return items, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run                              Run
		stagingDir, errText, cleanupText sql.NullString
		started                          string
		finished                         sql.NullString
		temporary                        int
		status                           string
	)
	if err := row.Scan(
		&run.ID,
		&run.Source,
		&stagingDir,
		&temporary,
		&run.BatchSize,
		&status,
		&run.Total,
		&run.Completed,
		&run.LaunchFailures,
		&errText,
		&cleanupText,
		&started,
		&finished,
	); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.StagingDir = stagingDir.String
	run.Temporary = temporary != 0
	run.Status = Status(status)
	run.Error = errText.String
	run.CleanupError = cleanupText.String
	run.StartedAt = parseTime(started)
	if finished.Valid {
		run.FinishedAt = parseTime(finished.String)
	}
	return run, nil
}

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
