package application

import "pihub/internal/domain"

// Re-export domain types for use by adapters
type (
	TaskIntent   = domain.TaskIntent
	TaskRecord   = domain.TaskRecord
	TaskEvent    = domain.TaskEvent
	PostureEvent = domain.PostureEvent
	Mode         = domain.Mode
	ModeState    = domain.ModeState
)

// ParseMode maps a mode name to its Mode.
func ParseMode(name string) (domain.Mode, error) {
	return domain.ParseMode(name)
}
