package commands

import (
	"context"
	"errors"
	"time"

	"pihub/internal/application"
	"pihub/internal/domain"
	"pihub/internal/ports"
)

// ReconcileResult reports what one batch actually did. Events are in
// application order; Errors collects the non-fatal conditions
// (remote failures that left records pending, persistence failures)
// encountered along the way.
type ReconcileResult struct {
	Events []domain.TaskEvent
	Errors []error
}

// ReconcileCommand applies one capture's parsed intents against the
// local store and the remote task API. Intents are processed strictly
// in parse order: a Create earlier in the batch satisfies a Complete
// later in the same batch.
//
// Callers must not run two ReconcileCommands concurrently against the
// same store; the hub serializes them.
type ReconcileCommand struct {
	store  ports.TaskStore
	remote ports.RemoteTasks
	log    ports.EventLog

	Intents []domain.TaskIntent
	Now     time.Time
}

// NewReconcileCommand creates a new ReconcileCommand.
func NewReconcileCommand(store ports.TaskStore, remote ports.RemoteTasks, log ports.EventLog, intents []domain.TaskIntent, now time.Time) *ReconcileCommand {
	return &ReconcileCommand{
		store:   store,
		remote:  remote,
		log:     log,
		Intents: intents,
		Now:     now,
	}
}

// Execute runs the batch. The returned error is non-nil only when at
// least one remote call failed; it satisfies
// errors.Is(err, application.ErrRemoteUnavailable), and the result
// still carries every locally-applied event. Local effects are never
// rolled back.
func (c *ReconcileCommand) Execute(ctx context.Context) (*ReconcileResult, error) {
	res := &ReconcileResult{}
	var remoteErrs []error

	record := func(err error) {
		res.Errors = append(res.Errors, err)
		if errors.Is(err, application.ErrRemoteUnavailable) {
			remoteErrs = append(remoteErrs, err)
		}
	}

	for _, intent := range c.Intents {
		key := domain.TaskKey{Label: intent.SectionTitle, Title: intent.TaskName}
		live, err := c.store.FindLive(key)
		if err != nil {
			record(&application.PersistenceError{Op: "find live task", Err: err})
			continue
		}

		switch intent.Action {
		case domain.ActionCreate:
			if live != nil {
				// Idempotent: the task already exists and is live.
				continue
			}
			c.create(ctx, intent, res, record)

		case domain.ActionComplete:
			if live == nil {
				// Completing an unseen task still gets recorded:
				// create first, then complete, so the audit trail
				// shows both.
				live = c.create(ctx, intent, res, record)
				if live == nil {
					continue
				}
			}
			c.complete(ctx, intent, live, res, record)
		}
	}

	if len(remoteErrs) > 0 {
		return res, errors.Join(remoteErrs...)
	}
	return res, nil
}

// create inserts a new live record, calling the remote API first. A
// failed remote call degrades to a locally minted ID flagged pending
// sync; the local effect is kept either way.
func (c *ReconcileCommand) create(ctx context.Context, intent domain.TaskIntent, res *ReconcileResult, record func(error)) *domain.TaskRecord {
	rec := &domain.TaskRecord{
		Label:   intent.SectionTitle,
		Title:   intent.TaskName,
		DueDate: intent.DueDate,
	}
	id, err := c.remote.CreateTask(ctx, intent.SectionTitle, intent.TaskName, intent.DueDate)
	if err != nil {
		record(err)
		rec.TaskID = domain.LocalTaskID(intent.SectionTitle, intent.TaskName)
		rec.PendingSync = true
	} else {
		rec.TaskID = id
		rec.LastSyncedAt = c.Now
	}

	if err := c.store.Upsert(rec); err != nil {
		record(&application.PersistenceError{Op: "insert task", Err: err})
		return nil
	}
	res.Events = append(res.Events, c.emit(domain.TaskCreated, intent))
	return rec
}

// complete marks a live record completed. Records whose creation is
// itself pending sync skip the remote call; the deferred create will
// replay the completion.
func (c *ReconcileCommand) complete(ctx context.Context, intent domain.TaskIntent, rec *domain.TaskRecord, res *ReconcileResult, record func(error)) {
	if !domain.IsLocalTaskID(rec.TaskID) {
		if err := c.remote.CompleteTask(ctx, rec.TaskID); err != nil {
			record(err)
			rec.PendingSync = true
		} else {
			rec.LastSyncedAt = c.Now
		}
	}
	rec.Completed = true

	if err := c.store.Upsert(rec); err != nil {
		record(&application.PersistenceError{Op: "complete task", Err: err})
		return
	}
	res.Events = append(res.Events, c.emit(domain.TaskCompleted, intent))
}

func (c *ReconcileCommand) emit(action domain.TaskEventAction, intent domain.TaskIntent) domain.TaskEvent {
	ev := domain.TaskEvent{
		Timestamp:    c.Now,
		Action:       action,
		Task:         intent.TaskName,
		SectionTitle: intent.SectionTitle,
	}
	c.log.AppendTask(ev)
	return ev
}
