package commands

import (
	"context"
	"fmt"
	"time"

	"pihub/internal/application"
	"pihub/internal/domain"
)

// fakeStore is an in-memory ports.TaskStore.
type fakeStore struct {
	recs  map[string]domain.TaskRecord
	order []string

	failFind   error
	failUpsert error
}

func newFakeStore() *fakeStore {
	return &fakeStore{recs: map[string]domain.TaskRecord{}}
}

func (s *fakeStore) FindLive(key domain.TaskKey) (*domain.TaskRecord, error) {
	if s.failFind != nil {
		return nil, s.failFind
	}
	for _, id := range s.order {
		rec := s.recs[id]
		if rec.Key() == key && rec.Live() {
			out := rec
			return &out, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Upsert(rec *domain.TaskRecord) error {
	if s.failUpsert != nil {
		return s.failUpsert
	}
	if _, ok := s.recs[rec.TaskID]; !ok {
		s.order = append(s.order, rec.TaskID)
	}
	s.recs[rec.TaskID] = *rec
	return nil
}

func (s *fakeStore) Delete(taskID string) error {
	delete(s.recs, taskID)
	for i, id := range s.order {
		if id == taskID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

func (s *fakeStore) Pending() ([]domain.TaskRecord, error) {
	var out []domain.TaskRecord
	for _, id := range s.order {
		if rec := s.recs[id]; rec.PendingSync {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (s *fakeStore) WeekTasks(today time.Time, limit int) ([]domain.TaskRecord, error) {
	var out []domain.TaskRecord
	for _, id := range s.order {
		if rec := s.recs[id]; rec.Live() {
			out = append(out, rec)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

// fakeRemote is an in-memory ports.RemoteTasks with injectable
// failures.
type fakeRemote struct {
	nextID    int
	created   []domain.TaskKey
	completed []string
	listing   []domain.TaskRecord

	failCreate   error
	failComplete error
	failList     error
}

func (r *fakeRemote) CreateTask(_ context.Context, label, title string, _ time.Time) (string, error) {
	if r.failCreate != nil {
		return "", r.failCreate
	}
	r.nextID++
	r.created = append(r.created, domain.TaskKey{Label: label, Title: title})
	return fmt.Sprintf("rt-%d", r.nextID), nil
}

func (r *fakeRemote) CompleteTask(_ context.Context, taskID string) error {
	if r.failComplete != nil {
		return r.failComplete
	}
	r.completed = append(r.completed, taskID)
	return nil
}

func (r *fakeRemote) ListTasks(_ context.Context) ([]domain.TaskRecord, error) {
	if r.failList != nil {
		return nil, r.failList
	}
	return r.listing, nil
}

// fakeLog is an in-memory ports.EventLog.
type fakeLog struct {
	tasks   []domain.TaskEvent
	posture []domain.PostureEvent
}

func (l *fakeLog) AppendTask(ev domain.TaskEvent)       { l.tasks = append(l.tasks, ev) }
func (l *fakeLog) AppendPosture(ev domain.PostureEvent) { l.posture = append(l.posture, ev) }

func (l *fakeLog) RecentTasks(limit int) ([]domain.TaskEvent, error) {
	out := make([]domain.TaskEvent, 0, limit)
	for i := len(l.tasks) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.tasks[i])
	}
	return out, nil
}

func (l *fakeLog) RecentPosture(limit int) ([]domain.PostureEvent, error) {
	out := make([]domain.PostureEvent, 0, limit)
	for i := len(l.posture) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.posture[i])
	}
	return out, nil
}

func (l *fakeLog) TaskTotals() (domain.TaskAggregate, error) {
	agg := domain.TaskAggregate{Total: len(l.tasks)}
	for _, ev := range l.tasks {
		switch ev.Action {
		case domain.TaskCreated:
			agg.Created++
		case domain.TaskCompleted:
			agg.Completed++
		}
	}
	return agg, nil
}

func (l *fakeLog) PostureTotals() (domain.PostureAggregate, error) {
	agg := domain.PostureAggregate{Total: len(l.posture)}
	for _, ev := range l.posture {
		if !ev.OK {
			agg.Adjustments++
		}
	}
	return agg, nil
}

func remoteDown(op string) *application.RemoteError {
	return &application.RemoteError{
		Op:   op,
		Kind: application.RemoteKindNetwork,
		Err:  fmt.Errorf("connection refused"),
	}
}
