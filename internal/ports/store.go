package ports

import (
	"time"

	"pihub/internal/domain"
)

// TaskStore is the durable local mirror of the remote task set.
// Reconciliation runs under a single logical owner (the hub mutex), so
// implementations only need to be safe for concurrent reads against
// one writer.
type TaskStore interface {
	// FindLive returns the live (not completed) record for the
	// identity, or nil when there is none.
	FindLive(key domain.TaskKey) (*domain.TaskRecord, error)

	// Upsert inserts or replaces a record by TaskID.
	Upsert(rec *domain.TaskRecord) error

	// Delete removes a record by TaskID. Used when a locally minted ID
	// is replaced by the remote one.
	Delete(taskID string) error

	// Pending returns records awaiting remote confirmation, oldest
	// first.
	Pending() ([]domain.TaskRecord, error)

	// WeekTasks returns live tasks due in the Monday–Sunday week
	// containing today, due date ascending.
	WeekTasks(today time.Time, limit int) ([]domain.TaskRecord, error)

	Close() error
}
