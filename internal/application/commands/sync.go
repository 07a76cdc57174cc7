package commands

import (
	"context"
	"errors"
	"time"

	"pihub/internal/application"
	"pihub/internal/domain"
	"pihub/internal/ports"
)

// SyncPendingResult reports a pending-sync pass.
type SyncPendingResult struct {
	Synced    int
	Remaining int
}

// SyncPendingCommand retries local mutations the remote system has not
// confirmed yet. It runs before new intents are accepted for the same
// task identity, so a deferred create cannot race a fresh one.
type SyncPendingCommand struct {
	store  ports.TaskStore
	remote ports.RemoteTasks

	Now time.Time
}

// NewSyncPendingCommand creates a new SyncPendingCommand.
func NewSyncPendingCommand(store ports.TaskStore, remote ports.RemoteTasks, now time.Time) *SyncPendingCommand {
	return &SyncPendingCommand{store: store, remote: remote, Now: now}
}

// Execute retries every pending record. Failures leave the record
// pending and are joined into the returned error, which satisfies
// errors.Is(err, application.ErrRemoteUnavailable) when remote calls
// failed.
func (c *SyncPendingCommand) Execute(ctx context.Context) (*SyncPendingResult, error) {
	pending, err := c.store.Pending()
	if err != nil {
		return nil, &application.PersistenceError{Op: "list pending tasks", Err: err}
	}

	res := &SyncPendingResult{}
	var errs []error
	for i := range pending {
		rec := pending[i]
		if err := c.syncOne(ctx, &rec); err != nil {
			res.Remaining++
			errs = append(errs, err)
			continue
		}
		res.Synced++
	}
	if len(errs) > 0 {
		return res, errors.Join(errs...)
	}
	return res, nil
}

func (c *SyncPendingCommand) syncOne(ctx context.Context, rec *domain.TaskRecord) error {
	if domain.IsLocalTaskID(rec.TaskID) {
		// Deferred create; replays the completion too when the record
		// was completed while offline.
		id, err := c.remote.CreateTask(ctx, rec.Label, rec.Title, rec.DueDate)
		if err != nil {
			return err
		}
		oldID := rec.TaskID
		rec.TaskID = id
		if rec.Completed {
			if err := c.remote.CompleteTask(ctx, id); err != nil {
				// Creation confirmed, completion still pending. Keep
				// the remote ID so the next pass only retries the
				// completion.
				rec.LastSyncedAt = c.Now
				c.replace(oldID, rec)
				return err
			}
		}
		rec.PendingSync = false
		rec.LastSyncedAt = c.Now
		return c.replace(oldID, rec)
	}

	// Deferred completion on a known remote task.
	if err := c.remote.CompleteTask(ctx, rec.TaskID); err != nil {
		return err
	}
	rec.PendingSync = false
	rec.LastSyncedAt = c.Now
	if err := c.store.Upsert(rec); err != nil {
		return &application.PersistenceError{Op: "confirm synced task", Err: err}
	}
	return nil
}

func (c *SyncPendingCommand) replace(oldID string, rec *domain.TaskRecord) error {
	if err := c.store.Delete(oldID); err != nil {
		return &application.PersistenceError{Op: "drop local task id", Err: err}
	}
	if err := c.store.Upsert(rec); err != nil {
		return &application.PersistenceError{Op: "store synced task", Err: err}
	}
	return nil
}

// PullResult reports a remote mirror pass.
type PullResult struct {
	Upserted int
	Skipped  int
}

// PullCommand mirrors the remote task set into the local store. Local
// records still pending sync are never overwritten by the pull: the
// deferred mutation wins until it is confirmed.
type PullCommand struct {
	store  ports.TaskStore
	remote ports.RemoteTasks

	Now time.Time
}

// NewPullCommand creates a new PullCommand.
func NewPullCommand(store ports.TaskStore, remote ports.RemoteTasks, now time.Time) *PullCommand {
	return &PullCommand{store: store, remote: remote, Now: now}
}

// Execute lists the remote tasks and upserts them locally.
func (c *PullCommand) Execute(ctx context.Context) (*PullResult, error) {
	tasks, err := c.remote.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	pending, err := c.store.Pending()
	if err != nil {
		return nil, &application.PersistenceError{Op: "list pending tasks", Err: err}
	}
	hold := make(map[domain.TaskKey]bool, len(pending))
	for _, rec := range pending {
		hold[rec.Key()] = true
	}

	res := &PullResult{}
	for i := range tasks {
		rec := tasks[i]
		if hold[rec.Key()] {
			res.Skipped++
			continue
		}
		rec.LastSyncedAt = c.Now
		if err := c.store.Upsert(&rec); err != nil {
			return res, &application.PersistenceError{Op: "mirror remote task", Err: err}
		}
		res.Upserted++
	}
	return res, nil
}
