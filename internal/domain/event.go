package domain

import "time"

// TaskEventAction enumerates the task log actions.
type TaskEventAction string

const (
	TaskCreated   TaskEventAction = "created"
	TaskCompleted TaskEventAction = "completed"
)

// TaskEvent is one immutable row in the task event log.
type TaskEvent struct {
	Timestamp    time.Time
	Action       TaskEventAction
	Task         string
	SectionTitle string
}

// PostureEvent is one immutable row in the posture event log. The two
// session counters snapshot the hub's state at append time, matching
// the dashboard's CSV export.
type PostureEvent struct {
	Timestamp           time.Time
	OK                  bool
	Reason              string
	TiltDeg             float64
	NodDeg              float64
	SessionAdjustments  int
	TasksCompletedToday int
}

// TaskAggregate summarizes the task event log.
type TaskAggregate struct {
	Total     int
	Created   int
	Completed int
}

// PostureAggregate summarizes the posture event log.
type PostureAggregate struct {
	Total       int
	Adjustments int // rows with OK == false
}
