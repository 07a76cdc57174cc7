// Package web serves the JSON dashboard API over HTTP.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"pihub/internal/application"
	"pihub/internal/domain"
	"pihub/internal/hub"
)

const maxIngestBytes = 64 << 10

// Logger is the minimal logging surface the server needs.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Server exposes the hub read model and the two write operations
// (mode switch, note ingest) as JSON endpoints.
type Server struct {
	hub    *hub.Hub
	addr   string
	logger Logger
	clock  func() time.Time

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewServer prepares a dashboard server bound to addr.
func NewServer(h *hub.Hub, addr string, opts ...Option) *Server {
	s := &Server{
		hub:    h,
		addr:   addr,
		logger: nopLogger{},
		clock:  func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the route table. Exposed for httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/week", s.handleWeek)
	mux.HandleFunc("/api/events/tasks", s.handleTaskEvents)
	mux.HandleFunc("/api/events/posture", s.handlePostureEvents)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/ingest", s.handleIngest)
	return mux
}

// Start binds the listener and serves in the background.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("web: server already started")
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("web: listen %s: %w", s.addr, err)
	}
	s.listener = listener

	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("web: serve error: %v", err)
		}
	}()
	s.logger.Printf("web: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.server == nil {
		return nil
	}
	if err := s.server.Shutdown(ctx); err != nil {
		return err
	}
	s.server = nil
	s.listener = nil
	return nil
}

// Addr returns the bound address once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

type modeJSON struct {
	Mode         string    `json:"mode"`
	Phase        string    `json:"phase"`
	PhaseStarted time.Time `json:"phase_started,omitzero"`
	CycleCount   int       `json:"cycle_count"`
	Warning      bool      `json:"warning"`
}

type taskJSON struct {
	TaskID      string `json:"task_id"`
	Label       string `json:"label"`
	Title       string `json:"title"`
	DueDate     string `json:"due_date,omitempty"`
	Completed   bool   `json:"completed"`
	PendingSync bool   `json:"pending_sync"`
}

type taskEventJSON struct {
	Timestamp    time.Time `json:"timestamp"`
	Action       string    `json:"action"`
	Task         string    `json:"task"`
	SectionTitle string    `json:"section_title,omitempty"`
}

type postureEventJSON struct {
	Timestamp           time.Time `json:"timestamp"`
	OK                  bool      `json:"ok"`
	Reason              string    `json:"reason,omitempty"`
	TiltDeg             float64   `json:"tilt_deg"`
	NodDeg              float64   `json:"nod_deg"`
	SessionAdjustments  int       `json:"session_adjustments"`
	TasksCompletedToday int       `json:"tasks_completed_today"`
}

type statusJSON struct {
	Mode           modeJSON   `json:"mode"`
	WeekTasks      []taskJSON `json:"week_tasks"`
	TasksCreated   int        `json:"tasks_created"`
	TasksCompleted int        `json:"tasks_completed"`
	PostureChecks  int        `json:"posture_checks"`
	Adjustments    int        `json:"session_adjustments"`
	CompletedToday int        `json:"tasks_completed_today"`
	Timestamp      time.Time  `json:"timestamp"`
}

func modeToJSON(st domain.ModeState) modeJSON {
	return modeJSON{
		Mode:         st.Mode.String(),
		Phase:        st.Phase.String(),
		PhaseStarted: st.PhaseStarted,
		CycleCount:   st.CycleCount,
		Warning:      st.Warning,
	}
}

func tasksToJSON(tasks []domain.TaskRecord) []taskJSON {
	out := make([]taskJSON, 0, len(tasks))
	for _, t := range tasks {
		tj := taskJSON{
			TaskID:      t.TaskID,
			Label:       t.Label,
			Title:       t.Title,
			Completed:   t.Completed,
			PendingSync: t.PendingSync,
		}
		if !t.DueDate.IsZero() {
			tj.DueDate = t.DueDate.Format(time.DateOnly)
		}
		out = append(out, tj)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet, http.MethodHead) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	st := s.hub.Status()
	writeJSON(w, http.StatusOK, statusJSON{
		Mode:           modeToJSON(st.Mode),
		WeekTasks:      tasksToJSON(st.Tasks),
		TasksCreated:   st.TaskTotals.Created,
		TasksCompleted: st.TaskTotals.Completed,
		PostureChecks:  st.PostureTotals.Total,
		Adjustments:    st.Adjustments,
		CompletedToday: st.CompletedToday,
		Timestamp:      st.Timestamp,
	})
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	tasks, err := s.hub.WeekTasks(50)
	if err != nil {
		s.logger.Printf("web: week tasks: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "task store unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasksToJSON(tasks)})
}

func (s *Server) handleTaskEvents(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	events, err := s.hub.RecentTaskEvents(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "event log unavailable"})
		return
	}
	out := make([]taskEventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, taskEventJSON{
			Timestamp:    ev.Timestamp,
			Action:       string(ev.Action),
			Task:         ev.Task,
			SectionTitle: ev.SectionTitle,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (s *Server) handlePostureEvents(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	events, err := s.hub.RecentPostureEvents(50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "event log unavailable"})
		return
	}
	out := make([]postureEventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, postureEventJSON{
			Timestamp:           ev.Timestamp,
			OK:                  ev.OK,
			Reason:              ev.Reason,
			TiltDeg:             ev.TiltDeg,
			NodDeg:              ev.NodDeg,
			SessionAdjustments:  ev.SessionAdjustments,
			TasksCompletedToday: ev.TasksCompletedToday,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": out})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	st, err := s.hub.SetModeByName(req.Mode)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, modeToJSON(st))
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Text        string    `json:"text"`
		CaptureTime time.Time `json:"capture_time,omitzero"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text must not be empty"})
		return
	}
	captureTime := req.CaptureTime
	if captureTime.IsZero() {
		captureTime = s.clock()
	}

	res, err := s.hub.ParseAndReconcile(r.Context(), req.Text, captureTime)
	if err != nil && !errors.Is(err, application.ErrRemoteUnavailable) {
		s.logger.Printf("web: ingest: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "reconciliation failed"})
		return
	}

	var applied []domain.TaskEvent
	if res != nil {
		applied = res.Events
	}
	events := make([]taskEventJSON, 0, len(applied))
	for _, ev := range applied {
		events = append(events, taskEventJSON{
			Timestamp:    ev.Timestamp,
			Action:       string(ev.Action),
			Task:         ev.Task,
			SectionTitle: ev.SectionTitle,
		})
	}
	resp := map[string]any{"events": events, "deferred": err != nil}
	writeJSON(w, http.StatusOK, resp)
}

func allowMethod(w http.ResponseWriter, r *http.Request, methods ...string) bool {
	for _, m := range methods {
		if r.Method == m {
			return true
		}
	}
	w.Header().Set("Allow", methods[0])
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("empty body")
	}
	reader := http.MaxBytesReader(w, r.Body, maxIngestBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("unable to read body")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
