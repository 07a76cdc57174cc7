package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"pihub/internal/adapters/tui/views"
)

// ViewState represents the current view
type ViewState int

const (
	ViewDashboard ViewState = iota
	ViewHelp
)

// App is the main TUI application model
type App struct {
	state     ViewState
	dashboard *views.DashboardModel
	help      *views.HelpModel

	width  int
	height int
}

// NewApp creates a new TUI application
func NewApp(ctrl views.Controller) *App {
	return &App{
		state:     ViewDashboard,
		dashboard: views.NewDashboardModel(ctrl),
		help:      views.NewHelpModel(),
	}
}

// Init initializes the application
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages for the application
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.dashboard.SetSize(msg.Width, msg.Height)
		a.help.SetSize(msg.Width, msg.Height)
		return a, nil

	// View switching messages
	case views.SwitchToHelpMsg:
		a.state = ViewHelp
		return a, nil

	case views.SwitchToDashboardMsg:
		a.state = ViewDashboard
		return a, nil
	}

	// The refresh loop keeps running while help is open, so ticks
	// always reach the dashboard.
	if _, ok := msg.(views.TickMsg); ok {
		_, cmd := a.dashboard.Update(msg)
		return a, cmd
	}

	// Delegate to current view
	var cmd tea.Cmd
	switch a.state {
	case ViewDashboard:
		_, cmd = a.dashboard.Update(msg)
	case ViewHelp:
		_, cmd = a.help.Update(msg)
	}

	return a, cmd
}

// View renders the current view
func (a *App) View() string {
	switch a.state {
	case ViewHelp:
		return a.help.View()
	default:
		return a.dashboard.View()
	}
}
