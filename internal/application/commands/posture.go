package commands

import (
	"context"
	"time"

	"pihub/internal/domain"
	"pihub/internal/ports"
)

// PostureCheckResult is one evaluated posture sample.
type PostureCheckResult struct {
	Event       domain.PostureEvent
	Adjustments int // session adjustment count after this check
}

// PostureCheckCommand samples the posture source, classifies the
// reading and appends a posture event. The session counters are
// snapshots owned by the hub.
type PostureCheckCommand struct {
	source ports.PostureSource
	log    ports.EventLog

	Thresholds          domain.PostureThresholds
	Adjustments         int // session count before this check
	TasksCompletedToday int
	Now                 time.Time
}

// NewPostureCheckCommand creates a new PostureCheckCommand.
func NewPostureCheckCommand(source ports.PostureSource, log ports.EventLog, now time.Time) *PostureCheckCommand {
	return &PostureCheckCommand{source: source, log: log, Now: now}
}

// Execute runs one check. Capture failures are returned unevaluated
// and nothing is logged; the caller's loop skips the cycle and tries
// again next interval.
func (c *PostureCheckCommand) Execute(ctx context.Context) (*PostureCheckResult, error) {
	reading, err := c.source.Read(ctx)
	if err != nil {
		return nil, err
	}

	ok, reason := domain.EvaluatePosture(reading, c.Thresholds)
	adjustments := c.Adjustments
	if !ok {
		adjustments++
	}
	ev := domain.PostureEvent{
		Timestamp:           c.Now,
		OK:                  ok,
		Reason:              reason,
		TiltDeg:             reading.TiltDeg,
		NodDeg:              reading.NodDeg,
		SessionAdjustments:  adjustments,
		TasksCompletedToday: c.TasksCompletedToday,
	}
	c.log.AppendPosture(ev)
	return &PostureCheckResult{Event: ev, Adjustments: adjustments}, nil
}
