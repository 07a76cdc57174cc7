package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pihub/internal/adapters/tui/styles"
	"pihub/internal/domain"
	"pihub/internal/hub"
)

// DashboardKeyMap defines key bindings for the dashboard view
type DashboardKeyMap struct {
	DeepWork key.Binding
	Sprint   key.Binding
	Pomodoro key.Binding
	Ambient  key.Binding
	Idle     key.Binding
	Capture  key.Binding
	Sync     key.Binding
	Yank     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var DashboardKeys = DashboardKeyMap{
	DeepWork: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "deep work")),
	Sprint:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sprint")),
	Pomodoro: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pomodoro")),
	Ambient:  key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "ambient")),
	Idle:     key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "idle")),
	Capture:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "capture note")),
	Sync:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sync remote")),
	Yank:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy last note")),
	Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// TickMsg drives the one-second refresh loop.
type TickMsg time.Time

type captureDoneMsg struct {
	created   int
	completed int
	err       error
}

type syncDoneMsg struct {
	pulled int
	err    error
}

// DashboardModel renders the mode panel, the week's task list and the
// recent event feed.
type DashboardModel struct {
	ViewState

	ctrl   Controller
	status hub.Status
	busy   bool
}

// NewDashboardModel creates the dashboard backed by ctrl.
func NewDashboardModel(ctrl Controller) *DashboardModel {
	return &DashboardModel{
		ctrl:   ctrl,
		status: ctrl.Status(),
	}
}

// Init starts the refresh loop.
func (m *DashboardModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// Update handles messages for the dashboard view
func (m *DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case TickMsg:
		m.ctrl.Tick(time.Time(msg))
		m.status = m.ctrl.Status()
		return m, tickCmd()

	case captureDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
		} else {
			m.SetMessage(fmt.Sprintf("captured: %d created, %d completed", msg.created, msg.completed), false)
		}
		m.status = m.ctrl.Status()
		return m, nil

	case syncDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.SetMessage(msg.err.Error(), true)
		} else {
			m.SetMessage(fmt.Sprintf("synced %d remote tasks", msg.pulled), false)
		}
		m.status = m.ctrl.Status()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *DashboardModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, DashboardKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, DashboardKeys.Help):
		return m, func() tea.Msg { return SwitchToHelpMsg{} }

	case key.Matches(msg, DashboardKeys.DeepWork):
		return m, m.setMode("deep_work")
	case key.Matches(msg, DashboardKeys.Sprint):
		return m, m.setMode("sprint")
	case key.Matches(msg, DashboardKeys.Pomodoro):
		return m, m.setMode("pomodoro")
	case key.Matches(msg, DashboardKeys.Ambient):
		return m, m.setMode("ambient")
	case key.Matches(msg, DashboardKeys.Idle):
		return m, m.setMode("idle")

	case key.Matches(msg, DashboardKeys.Capture):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.SetMessage("capturing...", false)
		return m, m.captureCmd()

	case key.Matches(msg, DashboardKeys.Sync):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.SetMessage("syncing...", false)
		return m, m.syncCmd()

	case key.Matches(msg, DashboardKeys.Yank):
		text := m.ctrl.LastCaptureText()
		if text == "" {
			m.SetMessage("nothing captured yet", true)
			return m, nil
		}
		if err := clipboard.WriteAll(text); err != nil {
			m.SetMessage("clipboard: "+err.Error(), true)
		} else {
			m.SetMessage("note text copied", false)
		}
		return m, nil
	}

	return m, nil
}

func (m *DashboardModel) setMode(name string) tea.Cmd {
	if _, err := m.ctrl.SetModeByName(name); err != nil {
		m.SetMessage(err.Error(), true)
		return nil
	}
	m.status = m.ctrl.Status()
	m.ClearMessage()
	return nil
}

func (m *DashboardModel) captureCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		_, res, err := ctrl.CaptureNote(context.Background())
		out := captureDoneMsg{err: err}
		if res != nil {
			for _, ev := range res.Events {
				switch ev.Action {
				case domain.TaskCreated:
					out.created++
				case domain.TaskCompleted:
					out.completed++
				}
			}
		}
		return out
	}
}

func (m *DashboardModel) syncCmd() tea.Cmd {
	ctrl := m.ctrl
	return func() tea.Msg {
		res, err := ctrl.SyncRemote(context.Background())
		out := syncDoneMsg{err: err}
		if res != nil {
			out.pulled = res.Upserted
		}
		return out
	}
}

// View renders the dashboard
func (m *DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("pihub"))
	b.WriteString("\n")
	b.WriteString(m.renderModePanel())
	b.WriteString("\n\n")
	b.WriteString(m.renderWeek())
	b.WriteString("\n")
	b.WriteString(m.renderEvents())
	b.WriteString("\n")

	if m.Message != "" {
		if m.MessageErr {
			b.WriteString(styles.ErrorMsg.Render(m.Message))
		} else {
			b.WriteString(styles.Success.Render(m.Message))
		}
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusBar())
	return styles.App.Render(b.String())
}

func (m *DashboardModel) renderModePanel() string {
	st := m.status.Mode
	var b strings.Builder

	b.WriteString(styles.ModeName.Render(strings.ToUpper(st.Mode.String())))
	if st.Phase != domain.PhaseNone {
		b.WriteString("  ")
		b.WriteString(styles.MutedText.Render(st.Phase.String()))
		b.WriteString("  ")
		b.WriteString(m.renderCountdown(st))
		if st.CycleCount > 0 {
			b.WriteString(styles.MutedText.Render(fmt.Sprintf("  cycle %d", st.CycleCount)))
		}
	}
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(fmt.Sprintf(
		"today: %d done  posture adjustments: %d",
		m.status.CompletedToday, m.status.Adjustments)))

	return styles.ModePanel.BorderForeground(styles.PhaseColor(st.Phase.String())).Render(b.String())
}

func (m *DashboardModel) renderCountdown(st domain.ModeState) string {
	total := domain.PhaseDuration(st)
	if total == 0 {
		return ""
	}
	remaining := total - m.status.Timestamp.Sub(st.PhaseStarted)
	if remaining < 0 {
		remaining = 0
	}
	text := fmt.Sprintf("%02d:%02d", int(remaining.Minutes()), int(remaining.Seconds())%60)
	if st.Warning {
		return styles.TimerWarning.Render(text)
	}
	return styles.TimerNormal.Render(text)
}

func (m *DashboardModel) renderWeek() string {
	var b strings.Builder
	b.WriteString(styles.SectionHeader.Render("This week"))
	b.WriteString("\n")
	if len(m.status.Tasks) == 0 {
		b.WriteString(styles.MutedText.Render("  no tasks due"))
		b.WriteString("\n")
		return b.String()
	}
	for _, t := range m.status.Tasks {
		b.WriteString("  ")
		if !t.DueDate.IsZero() {
			b.WriteString(styles.TaskDue.Render(t.DueDate.Format("Mon 02")))
			b.WriteString("  ")
		}
		b.WriteString(styles.TaskLabel.Render(t.Label))
		b.WriteString("  ")
		b.WriteString(styles.TaskTitle.Render(t.Title))
		if t.PendingSync {
			b.WriteString("  ")
			b.WriteString(styles.TaskPending.Render("(pending sync)"))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *DashboardModel) renderEvents() string {
	var b strings.Builder
	b.WriteString(styles.SectionHeader.Render("Recent activity"))
	b.WriteString("\n")

	events, err := m.ctrl.RecentTaskEvents(8)
	if err != nil || len(events) == 0 {
		b.WriteString(styles.MutedText.Render("  no activity yet"))
		b.WriteString("\n")
		return b.String()
	}
	for _, ev := range events {
		line := fmt.Sprintf("  %s  %s", ev.Timestamp.Format("15:04"), ev.Task)
		if ev.Action == domain.TaskCompleted {
			b.WriteString(styles.EventCompleted.Render(line))
		} else {
			b.WriteString(styles.EventCreated.Render(line))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m *DashboardModel) renderStatusBar() string {
	parts := []string{
		styles.HelpKey.Render("d/s/p/a/i") + styles.HelpDesc.Render(" mode"),
		styles.HelpKey.Render("c") + styles.HelpDesc.Render(" capture"),
		styles.HelpKey.Render("r") + styles.HelpDesc.Render(" sync"),
		styles.HelpKey.Render("y") + styles.HelpDesc.Render(" copy"),
		styles.HelpKey.Render("?") + styles.HelpDesc.Render(" help"),
		styles.HelpKey.Render("q") + styles.HelpDesc.Render(" quit"),
	}
	return strings.Join(parts, styles.MutedText.Render(" • "))
}
