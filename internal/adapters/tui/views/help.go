package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"pihub/internal/adapters/tui/styles"
)

// HelpKeyMap defines key bindings for the help view
type HelpKeyMap struct {
	Close key.Binding
}

var HelpKeys = HelpKeyMap{
	Close: key.NewBinding(
		key.WithKeys("esc", "q", "?"),
		key.WithHelp("esc/q/?", "close"),
	),
}

// HelpModel is the model for the help view
type HelpModel struct {
	ViewState
}

// NewHelpModel creates a new help view model
func NewHelpModel() *HelpModel {
	return &HelpModel{}
}

// Init initializes the help view
func (m *HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view
func (m *HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, HelpKeys.Close) {
			return m, func() tea.Msg {
				return SwitchToDashboardMsg{}
			}
		}
	}

	return m, nil
}

// View renders the help view
func (m *HelpModel) View() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("pihub Help"))
	b.WriteString("\n\n")

	b.WriteString(styles.Subtitle.Render("Handwritten notes to tasks, plus a desk timer"))
	b.WriteString("\n\n")

	b.WriteString(styles.SectionHeader.Render("Modes"))
	b.WriteString("\n")
	b.WriteString(helpLine("d", "Deep work (60m blocks)"))
	b.WriteString(helpLine("s", "Sprint (30m, warning in the last 5)"))
	b.WriteString(helpLine("p", "Pomodoro (20m focus / 10m break)"))
	b.WriteString(helpLine("a", "Ambient"))
	b.WriteString(helpLine("i", "Idle"))
	b.WriteString("\n")

	b.WriteString(styles.SectionHeader.Render("Actions"))
	b.WriteString("\n")
	b.WriteString(helpLine("c", "Capture a note photo and reconcile tasks"))
	b.WriteString(helpLine("r", "Sync with the remote task list"))
	b.WriteString(helpLine("y", "Copy the last recognized note text"))
	b.WriteString("\n")

	b.WriteString(styles.SectionHeader.Render("Note grammar"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  - [ ] task     create"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  - [x] task     complete"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  TODO: / DONE:  same, without boxes"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render("  DUE: 2025-10-05 applies to the whole section"))
	b.WriteString("\n\n")

	b.WriteString(styles.SectionHeader.Render("General"))
	b.WriteString("\n")
	b.WriteString(helpLine("?", "Toggle help"))
	b.WriteString(helpLine("q / Ctrl+C", "Quit"))
	b.WriteString("\n")

	b.WriteString(styles.HelpDesc.Render("Press "))
	b.WriteString(styles.HelpKey.Render("esc"))
	b.WriteString(styles.HelpDesc.Render(" or "))
	b.WriteString(styles.HelpKey.Render("?"))
	b.WriteString(styles.HelpDesc.Render(" to close"))

	return styles.App.Render(b.String())
}

func helpLine(key, desc string) string {
	return "  " + styles.HelpKey.Render(padRight(key, 16)) + styles.HelpDesc.Render(desc) + "\n"
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
