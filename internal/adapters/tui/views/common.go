package views

import (
	"context"
	"time"

	"pihub/internal/application"
	"pihub/internal/application/commands"
	"pihub/internal/hub"
	"pihub/internal/ports"
)

// Controller is the hub surface the views depend on.
type Controller interface {
	Status() hub.Status
	Tick(now time.Time) application.ModeState
	SetModeByName(name string) (application.ModeState, error)
	CaptureNote(ctx context.Context) (ports.CaptureResult, *commands.ReconcileResult, error)
	SyncRemote(ctx context.Context) (*commands.PullResult, error)
	RecentTaskEvents(limit int) ([]application.TaskEvent, error)
	LastCaptureText() string
}

// ViewState contains common state shared by all view models.
// Embed this struct in view models to get width/height and message handling.
type ViewState struct {
	Width      int
	Height     int
	Message    string
	MessageErr bool
}

// SetSize updates the view dimensions
func (s *ViewState) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetMessage sets a message to display in the view
func (s *ViewState) SetMessage(msg string, isErr bool) {
	s.Message = msg
	s.MessageErr = isErr
}

// ClearMessage clears the current message
func (s *ViewState) ClearMessage() {
	s.Message = ""
	s.MessageErr = false
}

// SwitchToHelpMsg asks the app to show the help view.
type SwitchToHelpMsg struct{}

// SwitchToDashboardMsg asks the app to show the dashboard.
type SwitchToDashboardMsg struct{}
