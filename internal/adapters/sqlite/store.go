package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"pihub/internal/domain"
	"pihub/internal/ports"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements ports.TaskStore on a single SQLite file.
type Store struct {
	db   *sql.DB
	path string
}

// Ensure Store implements TaskStore
var _ ports.TaskStore = (*Store)(nil)

// Open creates (or reuses) the task database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// WAL mode for better concurrency between the reconciler and
	// dashboard reads.
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Performance pragmas + schema in single batch (reduces round-trips)
	_, err = db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA busy_timeout = 5000;

		CREATE TABLE IF NOT EXISTS tasks (
			task_id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			title TEXT NOT NULL,
			due_date TEXT,
			completed INTEGER NOT NULL DEFAULT 0,
			pending_sync INTEGER NOT NULL DEFAULT 0,
			last_synced_at TEXT,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_tasks_identity ON tasks(label, title);
		CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks(due_date);
		CREATE INDEX IF NOT EXISTS idx_tasks_pending ON tasks(pending_sync);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// FindLive returns the live record for the identity, nil when absent.
func (s *Store) FindLive(key domain.TaskKey) (*domain.TaskRecord, error) {
	row := s.db.QueryRow(`
		SELECT task_id, label, title, due_date, completed, pending_sync, last_synced_at
		FROM tasks
		WHERE label = ? AND title = ? AND completed = 0
		ORDER BY updated_at DESC
		LIMIT 1
	`, key.Label, key.Title)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Upsert inserts or replaces a record by task_id.
func (s *Store) Upsert(rec *domain.TaskRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO tasks (task_id, label, title, due_date, completed, pending_sync, last_synced_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(task_id) DO UPDATE SET
			label = excluded.label,
			title = excluded.title,
			due_date = excluded.due_date,
			completed = excluded.completed,
			pending_sync = excluded.pending_sync,
			last_synced_at = excluded.last_synced_at,
			updated_at = excluded.updated_at
	`, rec.TaskID, rec.Label, rec.Title, dateOrNull(rec.DueDate),
		boolToInt(rec.Completed), boolToInt(rec.PendingSync),
		timeOrNull(rec.LastSyncedAt), time.Now().UTC().Format(time.RFC3339))
	return err
}

// Delete removes a record by task_id.
func (s *Store) Delete(taskID string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE task_id = ?`, taskID)
	return err
}

// Pending returns records awaiting remote confirmation, oldest first.
func (s *Store) Pending() ([]domain.TaskRecord, error) {
	rows, err := s.db.Query(`
		SELECT task_id, label, title, due_date, completed, pending_sync, last_synced_at
		FROM tasks
		WHERE pending_sync = 1
		ORDER BY updated_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// WeekTasks returns live tasks due in the Monday-to-Sunday week
// containing today, due date ascending.
func (s *Store) WeekTasks(today time.Time, limit int) ([]domain.TaskRecord, error) {
	start, end := weekRange(today)
	rows, err := s.db.Query(`
		SELECT task_id, label, title, due_date, completed, pending_sync, last_synced_at
		FROM tasks
		WHERE completed = 0
		  AND due_date IS NOT NULL
		  AND due_date >= ? AND due_date <= ?
		ORDER BY due_date ASC, updated_at DESC
		LIMIT ?
	`, start.Format(time.DateOnly), end.Format(time.DateOnly), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

// weekRange returns the Monday and Sunday of the week containing day.
func weekRange(day time.Time) (time.Time, time.Time) {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	// time.Weekday has Sunday = 0; shift so Monday = 0.
	offset := (int(d.Weekday()) + 6) % 7
	start := d.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 6)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.TaskRecord, error) {
	var (
		rec       domain.TaskRecord
		due       sql.NullString
		synced    sql.NullString
		completed int
		pending   int
	)
	err := row.Scan(&rec.TaskID, &rec.Label, &rec.Title, &due, &completed, &pending, &synced)
	if err != nil {
		return nil, err
	}
	rec.Completed = completed != 0
	rec.PendingSync = pending != 0
	if due.Valid {
		if d, err := time.Parse(time.DateOnly, due.String); err == nil {
			rec.DueDate = d
		}
	}
	if synced.Valid {
		if t, err := time.Parse(time.RFC3339, synced.String); err == nil {
			rec.LastSyncedAt = t
		}
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]domain.TaskRecord, error) {
	var out []domain.TaskRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func dateOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.DateOnly)
}

func timeOrNull(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
