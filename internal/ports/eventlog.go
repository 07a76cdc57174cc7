package ports

import "pihub/internal/domain"

// EventLog is the append-only record of task and posture activity.
// Appends never fail the caller: implementations report write errors
// through a side channel supplied at construction.
type EventLog interface {
	AppendTask(ev domain.TaskEvent)
	AppendPosture(ev domain.PostureEvent)

	// RecentTasks returns up to limit task events, most recent first.
	RecentTasks(limit int) ([]domain.TaskEvent, error)

	// RecentPosture returns up to limit posture events, most recent
	// first.
	RecentPosture(limit int) ([]domain.PostureEvent, error)

	// TaskTotals counts every appended task event exactly once.
	TaskTotals() (domain.TaskAggregate, error)

	// PostureTotals counts every appended posture event exactly once.
	PostureTotals() (domain.PostureAggregate, error)
}
