package hub

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"pihub/internal/application"
	"pihub/internal/domain"
	"pihub/internal/ports"
)

var clock = time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC) // Monday

type fakeStore struct {
	records map[string]domain.TaskRecord
	order   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]domain.TaskRecord{}}
}

func (s *fakeStore) FindLive(key domain.TaskKey) (*domain.TaskRecord, error) {
	for _, id := range s.order {
		r, ok := s.records[id]
		if ok && r.Key() == key && !r.Completed {
			rec := r
			return &rec, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) Upsert(rec *domain.TaskRecord) error {
	if _, ok := s.records[rec.TaskID]; !ok {
		s.order = append(s.order, rec.TaskID)
	}
	s.records[rec.TaskID] = *rec
	return nil
}

func (s *fakeStore) Delete(taskID string) error {
	delete(s.records, taskID)
	return nil
}

func (s *fakeStore) Pending() ([]domain.TaskRecord, error) {
	var out []domain.TaskRecord
	for _, id := range s.order {
		if r, ok := s.records[id]; ok && r.PendingSync {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) WeekTasks(today time.Time, limit int) ([]domain.TaskRecord, error) {
	var out []domain.TaskRecord
	for _, id := range s.order {
		if r, ok := s.records[id]; ok && !r.Completed && !r.DueDate.IsZero() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) Close() error { return nil }

type fakeRemote struct {
	next    int
	down    bool
	created []string
}

func (r *fakeRemote) CreateTask(ctx context.Context, label, title string, due time.Time) (string, error) {
	if r.down {
		return "", &application.RemoteError{Op: "create task", Kind: application.RemoteKindNetwork, Err: errors.New("dial refused")}
	}
	r.next++
	r.created = append(r.created, title)
	return fmt.Sprintf("rt-%d", r.next), nil
}

func (r *fakeRemote) CompleteTask(ctx context.Context, taskID string) error {
	if r.down {
		return &application.RemoteError{Op: "complete task", Kind: application.RemoteKindNetwork, Err: errors.New("dial refused")}
	}
	return nil
}

func (r *fakeRemote) ListTasks(ctx context.Context) ([]domain.TaskRecord, error) {
	if r.down {
		return nil, &application.RemoteError{Op: "list tasks", Kind: application.RemoteKindNetwork, Err: errors.New("dial refused")}
	}
	return nil, nil
}

type fakeLog struct {
	tasks    []domain.TaskEvent
	postures []domain.PostureEvent
}

func (l *fakeLog) AppendTask(ev domain.TaskEvent)       { l.tasks = append(l.tasks, ev) }
func (l *fakeLog) AppendPosture(ev domain.PostureEvent) { l.postures = append(l.postures, ev) }

func (l *fakeLog) RecentTasks(limit int) ([]domain.TaskEvent, error) {
	var out []domain.TaskEvent
	for i := len(l.tasks) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.tasks[i])
	}
	return out, nil
}

func (l *fakeLog) RecentPosture(limit int) ([]domain.PostureEvent, error) {
	var out []domain.PostureEvent
	for i := len(l.postures) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, l.postures[i])
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
	agg := domain.PostureAggregate{Total: len(l.postures)}
	for _, ev := range l.postures {
		if !ev.OK {
			agg.Adjustments++
		}
	}
	return agg, nil
}

type fakeCapture struct {
	text string
	err  error
}

func (c *fakeCapture) CaptureAndExtract(ctx context.Context) (ports.CaptureResult, error) {
	if c.err != nil {
		return ports.CaptureResult{}, c.err
	}
	return ports.CaptureResult{ImagePath: "/notes/x.png", Text: c.text, CapturedAt: clock}, nil
}

type fixedPosture struct {
	reading domain.PostureReading
}

func (p *fixedPosture) Read(ctx context.Context) (domain.PostureReading, error) {
	return p.reading, nil
}

type testClock struct {
	now time.Time
}

func (c *testClock) time() time.Time         { return c.now }
func (c *testClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newHub(t *testing.T, opts ...Option) (*Hub, *fakeStore, *fakeRemote, *fakeLog, *testClock) {
	t.Helper()
	store := newFakeStore()
	remote := &fakeRemote{}
	log := &fakeLog{}
	tc := &testClock{now: clock}
	all := append([]Option{WithClock(tc.time)}, opts...)
	h := New(store, remote, log, 2, all...)
	return h, store, remote, log, tc
}

func TestParseAndReconcileCountsCompletions(t *testing.T) {
	h, _, _, _, _ := newHub(t)

	res, err := h.ParseAndReconcile(context.Background(),
		"Chores\n- [ ] sweep\n- [x] dishes\nDUE: 2025-01-08", clock)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(res.Events) != 3 {
		t.Fatalf("events = %+v", res.Events)
	}
	if st := h.Status(); st.CompletedToday != 1 {
		t.Errorf("completed today = %d", st.CompletedToday)
	}
}

func TestCompletedTodayResetsAtMidnight(t *testing.T) {
	h, _, _, _, tc := newHub(t)

	if _, err := h.ParseAndReconcile(context.Background(), "DONE: dishes", clock); err != nil {
		t.Fatal(err)
	}
	if st := h.Status(); st.CompletedToday != 1 {
		t.Fatalf("completed today = %d", st.CompletedToday)
	}

	tc.advance(24 * time.Hour)
	if st := h.Status(); st.CompletedToday != 0 {
		t.Errorf("counter survived midnight: %d", st.CompletedToday)
	}
}

func TestPendingReplayedBeforeNextBatch(t *testing.T) {
	h, store, remote, _, _ := newHub(t)
	remote.down = true

	_, err := h.ParseAndReconcile(context.Background(), "- [ ] call plumber", clock)
	if !errors.Is(err, application.ErrRemoteUnavailable) {
		t.Fatalf("err = %v", err)
	}
	pending, _ := store.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending = %+v", pending)
	}

	remote.down = false
	if _, err := h.ParseAndReconcile(context.Background(), "- [ ] water plants", clock); err != nil {
		t.Fatalf("second batch: %v", err)
	}

	pending, _ = store.Pending()
	if len(pending) != 0 {
		t.Errorf("pending not replayed: %+v", pending)
	}
	// The deferred create reached the remote before the new one.
	if len(remote.created) != 2 || remote.created[0] != "call plumber" {
		t.Errorf("remote creates = %v", remote.created)
	}
}

func TestCaptureNoteStoresLastText(t *testing.T) {
	const note = "- [ ] read chapter 4"
	h, _, _, _, _ := newHub(t, WithCapture(&fakeCapture{text: note}))

	cap, res, err := h.CaptureNote(context.Background())
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if cap.Text != note || h.LastCaptureText() != note {
		t.Errorf("last text = %q", h.LastCaptureText())
	}
	if len(res.Events) != 1 {
		t.Errorf("events = %+v", res.Events)
	}
}

func TestCaptureNoteWithoutAdapter(t *testing.T) {
	h, _, _, _, _ := newHub(t)
	_, _, err := h.CaptureNote(context.Background())
	if !errors.Is(err, application.ErrCaptureUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestPostureCheckAccumulatesAdjustments(t *testing.T) {
	h, _, _, log, _ := newHub(t, WithPostureSource(&fixedPosture{
		reading: domain.PostureReading{TiltDeg: 30, NodDeg: 0},
	}))

	for i := 0; i < 3; i++ {
		if _, err := h.PostureCheck(context.Background()); err != nil {
			t.Fatalf("check %d: %v", i, err)
		}
	}

	if st := h.Status(); st.Adjustments != 3 {
		t.Errorf("adjustments = %d", st.Adjustments)
	}
	// Each event snapshots the counter after its own check.
	if len(log.postures) != 3 || log.postures[2].SessionAdjustments != 3 {
		t.Errorf("postures = %+v", log.postures)
	}
}

func TestStatusAssemblesReadModel(t *testing.T) {
	h, _, _, _, _ := newHub(t)
	if _, err := h.ParseAndReconcile(context.Background(),
		"Studies\n- [ ] read paper\nDUE: 2025-01-08", clock); err != nil {
		t.Fatal(err)
	}

	st := h.Status()
	if st.TaskTotals.Created != 1 || st.TaskTotals.Completed != 0 {
		t.Errorf("totals = %+v", st.TaskTotals)
	}
	if len(st.Tasks) != 1 || st.Tasks[0].Title != "read paper" {
		t.Errorf("tasks = %+v", st.Tasks)
	}
	if st.Mode.Mode != domain.ModeIdle {
		t.Errorf("mode = %v", st.Mode.Mode)
	}
}

func TestSetModeByNameRejectsUnknown(t *testing.T) {
	h, _, _, _, _ := newHub(t)
	if _, err := h.SetModeByName("bogus"); err == nil {
		t.Error("unknown mode accepted")
	}
	if st, err := h.SetModeByName("sprint"); err != nil || st.Mode != domain.ModeSprint {
		t.Errorf("st = %+v, err = %v", st, err)
	}
}
