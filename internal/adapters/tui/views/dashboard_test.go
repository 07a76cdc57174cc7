package views

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pihub/internal/application"
	"pihub/internal/application/commands"
	"pihub/internal/domain"
	"pihub/internal/hub"
	"pihub/internal/ports"
)

var now = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

type fakeController struct {
	status   hub.Status
	modes    []string
	ticks    []time.Time
	lastText string
}

func (f *fakeController) Status() hub.Status { return f.status }

func (f *fakeController) Tick(t time.Time) application.ModeState {
	f.ticks = append(f.ticks, t)
	return f.status.Mode
}

func (f *fakeController) SetModeByName(name string) (application.ModeState, error) {
	f.modes = append(f.modes, name)
	mode, err := application.ParseMode(name)
	if err != nil {
		return f.status.Mode, err
	}
	f.status.Mode = domain.ModeState{Mode: mode, Phase: domain.PhaseFocus, PhaseStarted: now}
	return f.status.Mode, nil
}

func (f *fakeController) CaptureNote(ctx context.Context) (ports.CaptureResult, *commands.ReconcileResult, error) {
	return ports.CaptureResult{}, &commands.ReconcileResult{}, nil
}

func (f *fakeController) SyncRemote(ctx context.Context) (*commands.PullResult, error) {
	return &commands.PullResult{Upserted: 3}, nil
}

func (f *fakeController) RecentTaskEvents(limit int) ([]application.TaskEvent, error) {
	return nil, nil
}

func (f *fakeController) LastCaptureText() string { return f.lastText }

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModeKeysSwitchModes(t *testing.T) {
	ctrl := &fakeController{status: hub.Status{Timestamp: now}}
	m := NewDashboardModel(ctrl)

	for _, k := range []string{"d", "s", "p", "a", "i"} {
		m.Update(keyMsg(k))
	}
	want := []string{"deep_work", "sprint", "pomodoro", "ambient", "idle"}
	if len(ctrl.modes) != len(want) {
		t.Fatalf("modes = %v", ctrl.modes)
	}
	for i, w := range want {
		if ctrl.modes[i] != w {
			t.Errorf("mode[%d] = %q, want %q", i, ctrl.modes[i], w)
		}
	}
}

func TestTickAdvancesMachineAndReschedules(t *testing.T) {
	ctrl := &fakeController{status: hub.Status{Timestamp: now}}
	m := NewDashboardModel(ctrl)

	_, cmd := m.Update(TickMsg(now))
	if len(ctrl.ticks) != 1 || !ctrl.ticks[0].Equal(now) {
		t.Errorf("ticks = %v", ctrl.ticks)
	}
	if cmd == nil {
		t.Error("tick did not reschedule")
	}
}

func TestYankWithoutCaptureShowsError(t *testing.T) {
	ctrl := &fakeController{status: hub.Status{Timestamp: now}}
	m := NewDashboardModel(ctrl)

	m.Update(keyMsg("y"))
	if !m.MessageErr || m.Message == "" {
		t.Errorf("message = %q err=%v", m.Message, m.MessageErr)
	}
}

func TestQuitKey(t *testing.T) {
	ctrl := &fakeController{status: hub.Status{Timestamp: now}}
	m := NewDashboardModel(ctrl)

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestViewRendersTasksAndTimer(t *testing.T) {
	due := time.Date(2025, 6, 4, 0, 0, 0, 0, time.UTC)
	ctrl := &fakeController{status: hub.Status{
		Mode: domain.ModeState{
			Mode:         domain.ModePomodoro,
			Phase:        domain.PhaseFocus,
			PhaseStarted: now.Add(-5 * time.Minute),
		},
		Tasks: []domain.TaskRecord{
			{TaskID: "rt-1", Label: "Studies", Title: "read paper", DueDate: due},
			{TaskID: "local:abc", Label: "Home", Title: "fix shelf", DueDate: due, PendingSync: true},
		},
		Timestamp: now,
	}}
	m := NewDashboardModel(ctrl)

	out := m.View()
	for _, want := range []string{"POMODORO", "focus", "15:00", "read paper", "fix shelf", "pending sync"} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSyncKeyReportsResult(t *testing.T) {
	ctrl := &fakeController{status: hub.Status{Timestamp: now}}
	m := NewDashboardModel(ctrl)

	_, cmd := m.Update(keyMsg("r"))
	if cmd == nil {
		t.Fatal("sync produced no command")
	}
	msg := cmd()
	done, ok := msg.(syncDoneMsg)
	if !ok {
		t.Fatalf("msg = %T", msg)
	}
	if done.pulled != 3 || done.err != nil {
		t.Errorf("done = %+v", done)
	}

	m.Update(done)
	if m.MessageErr || !strings.Contains(m.Message, "3") {
		t.Errorf("message = %q", m.Message)
	}
}
