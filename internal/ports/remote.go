package ports

import (
	"context"
	"time"

	"pihub/internal/domain"
)

// RemoteTasks is the remote task-management API surface the
// reconciler depends on. Implementations convert transport failures
// into application.RemoteError so callers can branch on
// application.ErrRemoteUnavailable without knowing the wire details.
type RemoteTasks interface {
	// CreateTask creates a task and returns the remote-assigned ID.
	CreateTask(ctx context.Context, label, title string, due time.Time) (string, error)

	// CompleteTask marks an existing remote task completed.
	CompleteTask(ctx context.Context, taskID string) error

	// ListTasks returns the remote task set for mirroring.
	ListTasks(ctx context.Context) ([]domain.TaskRecord, error)
}
