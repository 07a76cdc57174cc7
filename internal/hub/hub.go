// Package hub wires the core components behind one explicit context
// object owned by the process entry point. It replaces the ambient
// process-global state the hardware loop would otherwise accumulate:
// every collaborator is injected, and reconciliation is serialized
// here.
package hub

import (
	"context"
	"errors"
	"sync"
	"time"

	"pihub/internal/application"
	"pihub/internal/application/commands"
	"pihub/internal/domain"
	"pihub/internal/ports"
)

// Hub owns the task store, the remote API handle, the event logs and
// the mode machine. One reconciliation batch runs at a time; reads of
// cached state stay concurrent.
type Hub struct {
	store   ports.TaskStore
	remote  ports.RemoteTasks
	log     ports.EventLog
	capture ports.NoteCapture
	posture ports.PostureSource
	machine *domain.Machine
	clock   func() time.Time

	defaultDueDays int
	thresholds     domain.PostureThresholds

	reconcileMu sync.Mutex // one batch in flight per process

	mu             sync.Mutex // session counters + last capture
	adjustments    int
	completedToday int
	completedDay   time.Time
	lastText       string
}

// Option customizes hub construction.
type Option func(*Hub)

// WithClock injects a time source for deterministic tests.
func WithClock(clock func() time.Time) Option {
	return func(h *Hub) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithCapture attaches a camera/OCR adapter.
func WithCapture(c ports.NoteCapture) Option {
	return func(h *Hub) { h.capture = c }
}

// WithPostureSource attaches a posture sampling adapter.
func WithPostureSource(p ports.PostureSource) Option {
	return func(h *Hub) { h.posture = p }
}

// WithPostureThresholds overrides the default posture thresholds.
func WithPostureThresholds(t domain.PostureThresholds) Option {
	return func(h *Hub) { h.thresholds = t }
}

// New creates a hub. The store, remote handle and event log are
// required; capture hardware is optional.
func New(store ports.TaskStore, remote ports.RemoteTasks, log ports.EventLog, defaultDueDays int, opts ...Option) *Hub {
	h := &Hub{
		store:          store,
		remote:         remote,
		log:            log,
		clock:          func() time.Time { return time.Now().UTC() },
		defaultDueDays: defaultDueDays,
		thresholds:     domain.DefaultPostureThresholds,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.machine = domain.NewMachine(h.clock())
	return h
}

// Close releases the task store.
func (h *Hub) Close() error {
	return h.store.Close()
}

// ParseAndReconcile is the single entry point for the OCR pipeline:
// parse the raw text, retry pending syncs, then apply the batch. The
// returned result carries applied events even when err reports remote
// unavailability (partial success).
func (h *Hub) ParseAndReconcile(ctx context.Context, rawText string, captureTime time.Time) (*commands.ReconcileResult, error) {
	h.reconcileMu.Lock()
	defer h.reconcileMu.Unlock()

	now := h.clock()
	// Pending entries must be retried before new intents are accepted
	// for the same identity. Best effort: failures leave them pending.
	if _, err := commands.NewSyncPendingCommand(h.store, h.remote, now).Execute(ctx); err != nil &&
		!errors.Is(err, application.ErrRemoteUnavailable) {
		return nil, err
	}

	intents := domain.ParseNote(rawText, captureTime, h.defaultDueDays)
	res, err := commands.NewReconcileCommand(h.store, h.remote, h.log, intents, now).Execute(ctx)
	if res != nil {
		h.countCompleted(res.Events)
	}
	return res, err
}

// CaptureNote runs the camera/OCR pipeline once and reconciles the
// recognized text.
func (h *Hub) CaptureNote(ctx context.Context) (ports.CaptureResult, *commands.ReconcileResult, error) {
	if h.capture == nil {
		return ports.CaptureResult{}, nil, &application.CaptureError{
			Stage: "camera", Err: errors.New("no capture adapter configured"),
		}
	}
	cap, err := h.capture.CaptureAndExtract(ctx)
	if err != nil {
		return ports.CaptureResult{}, nil, err
	}

	h.mu.Lock()
	h.lastText = cap.Text
	h.mu.Unlock()

	res, err := h.ParseAndReconcile(ctx, cap.Text, cap.CapturedAt)
	return cap, res, err
}

// PostureCheck samples posture once and logs the outcome.
func (h *Hub) PostureCheck(ctx context.Context) (*commands.PostureCheckResult, error) {
	if h.posture == nil {
		return nil, &application.CaptureError{
			Stage: "camera", Err: errors.New("no posture adapter configured"),
		}
	}

	h.mu.Lock()
	h.rollDay(h.clock())
	cmd := commands.NewPostureCheckCommand(h.posture, h.log, h.clock())
	cmd.Thresholds = h.thresholds
	cmd.Adjustments = h.adjustments
	cmd.TasksCompletedToday = h.completedToday
	h.mu.Unlock()

	res, err := cmd.Execute(ctx)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	h.adjustments = res.Adjustments
	h.mu.Unlock()
	return res, nil
}

// SyncRemote mirrors the remote task set and retries pending entries.
func (h *Hub) SyncRemote(ctx context.Context) (*commands.PullResult, error) {
	h.reconcileMu.Lock()
	defer h.reconcileMu.Unlock()

	now := h.clock()
	if _, err := commands.NewSyncPendingCommand(h.store, h.remote, now).Execute(ctx); err != nil &&
		!errors.Is(err, application.ErrRemoteUnavailable) {
		return nil, err
	}
	return commands.NewPullCommand(h.store, h.remote, now).Execute(ctx)
}

// ModeState returns the current mode machine state.
func (h *Hub) ModeState() domain.ModeState {
	return h.machine.State()
}

// SetMode switches the machine immediately.
func (h *Hub) SetMode(mode domain.Mode) domain.ModeState {
	return h.machine.Set(mode, h.clock())
}

// SetModeByName parses and switches.
func (h *Hub) SetModeByName(name string) (domain.ModeState, error) {
	mode, err := domain.ParseMode(name)
	if err != nil {
		return h.machine.State(), err
	}
	return h.machine.Set(mode, h.clock()), nil
}

// Tick advances the mode machine to now.
func (h *Hub) Tick(now time.Time) domain.ModeState {
	return h.machine.Tick(now)
}

// WeekTasks lists live tasks due this week.
func (h *Hub) WeekTasks(limit int) ([]domain.TaskRecord, error) {
	return h.store.WeekTasks(h.clock(), limit)
}

// RecentTaskEvents returns the newest task events.
func (h *Hub) RecentTaskEvents(limit int) ([]domain.TaskEvent, error) {
	return h.log.RecentTasks(limit)
}

// RecentPostureEvents returns the newest posture events.
func (h *Hub) RecentPostureEvents(limit int) ([]domain.PostureEvent, error) {
	return h.log.RecentPosture(limit)
}

// LastCaptureText returns the text of the most recent capture, empty
// before the first one.
func (h *Hub) LastCaptureText() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastText
}

// Status is the read model served to the dashboard, the TUI and the
// MCP tools.
type Status struct {
	Mode           domain.ModeState
	Tasks          []domain.TaskRecord
	TaskTotals     domain.TaskAggregate
	PostureTotals  domain.PostureAggregate
	Adjustments    int
	CompletedToday int
	Timestamp      time.Time
}

// Status assembles the current read model. Log read errors degrade to
// zero aggregates rather than failing the dashboard.
func (h *Hub) Status() Status {
	now := h.clock()
	st := Status{
		Mode:      h.machine.State(),
		Timestamp: now,
	}
	if tasks, err := h.store.WeekTasks(now, 20); err == nil {
		st.Tasks = tasks
	}
	if agg, err := h.log.TaskTotals(); err == nil {
		st.TaskTotals = agg
	}
	if agg, err := h.log.PostureTotals(); err == nil {
		st.PostureTotals = agg
	}

	h.mu.Lock()
	h.rollDay(now)
	st.Adjustments = h.adjustments
	st.CompletedToday = h.completedToday
	h.mu.Unlock()
	return st
}

// countCompleted bumps the daily completion counter from a batch's
// events.
func (h *Hub) countCompleted(events []domain.TaskEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rollDay(h.clock())
	for _, ev := range events {
		if ev.Action == domain.TaskCompleted {
			h.completedToday++
		}
	}
}

// rollDay resets the daily counter at midnight. Callers hold h.mu.
func (h *Hub) rollDay(now time.Time) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if !day.Equal(h.completedDay) {
		h.completedDay = day
		h.completedToday = 0
	}
}
