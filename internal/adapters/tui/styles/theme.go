package styles

import "github.com/charmbracelet/lipgloss"

var (
	// Colors
	Primary   = lipgloss.Color("#7C3AED") // Purple
	Secondary = lipgloss.Color("#10B981") // Green
	Muted     = lipgloss.Color("#6B7280") // Gray
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#EF4444") // Red
	White     = lipgloss.Color("#FFFFFF")
	Black     = lipgloss.Color("#000000")

	// Mode colors
	ModeFocus   = lipgloss.Color("#6366F1") // Indigo
	ModeBreak   = lipgloss.Color("#10B981") // Green
	ModeAmbient = lipgloss.Color("#8B5CF6") // Violet
	ModeIdle    = lipgloss.Color("#6B7280") // Gray

	// Base styles
	App = lipgloss.NewStyle().
		Padding(1, 2)

	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary).
		MarginBottom(1)

	Subtitle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true)

	// Mode panel
	ModePanel = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Primary).
			Padding(0, 2)

	ModeName = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	TimerNormal = lipgloss.NewStyle().
			Bold(true)

	TimerWarning = lipgloss.NewStyle().
			Bold(true).
			Foreground(Warning).
			Blink(true)

	// Task list
	TaskTitle = lipgloss.NewStyle()

	TaskLabel = lipgloss.NewStyle().
			Foreground(Secondary)

	TaskDue = lipgloss.NewStyle().
		Foreground(Muted)

	TaskPending = lipgloss.NewStyle().
			Foreground(Warning).
			Italic(true)

	// Event feed
	EventCreated = lipgloss.NewStyle().
			Foreground(Secondary)

	EventCompleted = lipgloss.NewStyle().
			Foreground(Muted).
			Strikethrough(true)

	// Status bar
	StatusBar = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(White).
			Padding(0, 1)

	StatusKey = lipgloss.NewStyle().
			Background(Primary).
			Foreground(White).
			Padding(0, 1).
			MarginRight(1)

	// Help styles
	HelpKey = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)

	HelpDesc = lipgloss.NewStyle().
			Foreground(Muted)

	// Section headers
	SectionHeader = lipgloss.NewStyle().
			Foreground(Secondary).
			Bold(true)

	// Message styles
	Success = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	ErrorMsg = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	// Muted text style (for using Muted color as a style)
	MutedText = lipgloss.NewStyle().
			Foreground(Muted)
)

// PhaseColor returns the accent color for a mode phase name.
func PhaseColor(phase string) lipgloss.Color {
	switch phase {
	case "focus":
		return ModeFocus
	case "break":
		return ModeBreak
	default:
		return ModeIdle
	}
}
