package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a job ID is unknown.
var ErrNotFound = errors.New("job not found")

// Store persists render and preview jobs in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
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
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Begin records a job as running.
func (s *Store) Begin(ctx context.Context, job Job) error {
	if job.ID == "" {
		return errors.New("job id required")
	}
	now := time.Now().UTC()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.Status == "" {
		job.Status = StatusRunning
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (
            id, kind, input_path, cue_path, output_path, status, progress_percent,
            width, height, duration_seconds, cue_count, exit_code, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		string(job.Kind),
		job.InputPath,
		nullableString(job.CuePath),
		job.OutputPath,
		string(job.Status),
		job.ProgressPercent,
		job.Width,
		job.Height,
		job.DurationSeconds,
		job.CueCount,
		-1,
		formatTime(job.CreatedAt),
		formatTime(now),
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// UpdateProgress stores the latest progress percentage of a running job.
func (s *Store) UpdateProgress(ctx context.Context, id string, percent int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET progress_percent = ?, updated_at = ? WHERE id = ? AND status = ?`,
		percent, formatTime(time.Now().UTC()), id, string(StatusRunning))
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return expectRow(res, id)
}

// Finish records the terminal outcome of a job.
func (s *Store) Finish(ctx context.Context, id string, outcome Outcome) error {
	now := formatTime(time.Now().UTC())
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, progress_percent = ?, error_message = ?, exit_code = ?,
            retryable = ?, output_bytes = ?, updated_at = ?, finished_at = ?
        WHERE id = ?`,
		string(outcome.Status),
		outcome.ProgressPercent,
		nullableString(outcome.ErrorMessage),
		outcome.ExitCode,
		boolToInt(outcome.Retryable),
		outcome.OutputBytes,
		now,
		now,
		id,
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	return expectRow(res, id)
}

// Get returns one job by ID.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return job, nil
}

// Recent returns up to limit jobs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, selectColumns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate jobs: %w", err)
	}
	return jobs, nil
}

// MarkAbandoned fails running jobs created before cutoff, e.g. after a crash.
func (s *Store) MarkAbandoned(ctx context.Context, cutoff time.Time) (int64, error) {
	now := formatTime(time.Now().UTC())
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, error_message = ?, updated_at = ?, finished_at = ?
        WHERE status = ? AND created_at < ?`,
		string(StatusFailed), "abandoned", now, now, string(StatusRunning), formatTime(cutoff.UTC()))
	if err != nil {
		return 0, fmt.Errorf("mark abandoned: %w", err)
	}
	return res.RowsAffected()
}

const selectColumns = `SELECT id, kind, input_path, cue_path, output_path, status, progress_percent,
    width, height, duration_seconds, cue_count, error_message, exit_code, retryable,
    output_bytes, created_at, updated_at, finished_at FROM jobs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*Job, error) {
	var (
		job                     Job
		kind, status            string
		cuePath, errorMessage   sql.NullString
		width, height, cueCount sql.NullInt64
		exitCode, outputBytes   sql.NullInt64
		duration                sql.NullFloat64
		retryable               int
		createdAt, updatedAt    string
		finishedAt              sql.NullString
	)
	if err := row.Scan(&job.ID, &kind, &job.InputPath, &cuePath, &job.OutputPath, &status, &job.ProgressPercent,
		&width, &height, &duration, &cueCount, &errorMessage, &exitCode, &retryable,
		&outputBytes, &createdAt, &updatedAt, &finishedAt); err != nil {
		return nil, err
	}
	job.Kind = Kind(kind)
	job.Status = Status(status)
	job.CuePath = cuePath.String
	job.ErrorMessage = errorMessage.String
	job.Width = int(width.Int64)
	job.Height = int(height.Int64)
	job.CueCount = int(cueCount.Int64)
	job.DurationSeconds = duration.Float64
	job.ExitCode = -1
	if exitCode.Valid {
		job.ExitCode = int(exitCode.Int64)
	}
	job.OutputBytes = outputBytes.Int64
	job.Retryable = retryable != 0
	job.CreatedAt = parseTime(createdAt)
	job.UpdatedAt = parseTime(updatedAt)
	if finishedAt.Valid {
		job.FinishedAt = parseTime(finishedAt.String)
	}
	return &job, nil
}

func expectRow(res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}
