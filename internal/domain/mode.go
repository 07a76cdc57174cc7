package domain

import (
	"fmt"
	"sync"
	"time"
)

// Mode enumerates every focus-hub mode. The set is closed: switches on
// Mode are exhaustive and unknown strings fail ParseMode instead of
// falling through.
type Mode int

const (
	ModeIdle Mode = iota
	ModePosture
	ModeOCR
	ModeDeepWork // 60-minute single phase, restarts when it elapses
	ModeSprint   // 30-minute repeating cycle with a 5-minute warning window
	ModePomodoro // 20-minute focus / 10-minute break, looping
	ModeAmbient  // continuous, no terminal condition
)

// AllModes lists modes in selector order.
var AllModes = []Mode{
	ModeIdle, ModePosture, ModeOCR,
	ModeDeepWork, ModeSprint, ModePomodoro, ModeAmbient,
}

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModePosture:
		return "posture"
	case ModeOCR:
		return "ocr"
	case ModeDeepWork:
		return "deep_work"
	case ModeSprint:
		return "sprint"
	case ModePomodoro:
		return "pomodoro"
	case ModeAmbient:
		return "ambient"
	default:
		return "unknown"
	}
}

// ParseMode maps a mode name to its Mode.
func ParseMode(name string) (Mode, error) {
	for _, m := range AllModes {
		if m.String() == name {
			return m, nil
		}
	}
	return ModeIdle, fmt.Errorf("unknown mode %q", name)
}

// Phase is the sub-state inside a timer mode.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseFocus
	PhaseBreak
)

func (p Phase) String() string {
	switch p {
	case PhaseFocus:
		return "focus"
	case PhaseBreak:
		return "break"
	default:
		return "none"
	}
}

// ModeState is the externally visible machine state. CycleCount is
// observability only; transitions never read it.
type ModeState struct {
	Mode         Mode
	Phase        Phase
	PhaseStarted time.Time
	CycleCount   int
	Warning      bool
}

// timerProfile configures one timer mode. A zero brk means a
// single-phase repeating timer; warn is the terminal flashing window
// at the end of the focus phase.
type timerProfile struct {
	focus time.Duration
	brk   time.Duration
	warn  time.Duration
}

func profileFor(m Mode) (timerProfile, bool) {
	switch m {
	case ModeDeepWork:
		return timerProfile{focus: 60 * time.Minute}, true
	case ModeSprint:
		return timerProfile{focus: 30 * time.Minute, warn: 5 * time.Minute}, true
	case ModePomodoro:
		return timerProfile{focus: 20 * time.Minute, brk: 10 * time.Minute, warn: time.Minute}, true
	default:
		return timerProfile{}, false
	}
}

// Machine owns the mode state. Manual Set always wins; automatic
// transitions happen only inside timer modes, driven by wall-clock
// time supplied through Tick.
type Machine struct {
	mu    sync.Mutex
	state ModeState
}

// NewMachine starts in Idle.
func NewMachine(now time.Time) *Machine {
	return &Machine{state: ModeState{Mode: ModeIdle, PhaseStarted: now}}
}

// State returns a copy of the current state.
func (m *Machine) State() ModeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Set transitions immediately to the requested mode, resetting the
// phase start and cycle count.
func (m *Machine) Set(mode Mode, now time.Time) ModeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	phase := PhaseNone
	if _, timed := profileFor(mode); timed {
		phase = PhaseFocus
	}
	m.state = ModeState{Mode: mode, Phase: phase, PhaseStarted: now}
	return m.state
}

// Tick re-evaluates elapsed time and applies any due automatic
// transition. Ticking twice with the same now is a no-op.
func (m *Machine) Tick(now time.Time) ModeState {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = advance(m.state, now)
	return m.state
}

// PhaseDuration returns the length of the state's current phase, zero
// for untimed modes. Used by displays to render a countdown.
func PhaseDuration(s ModeState) time.Duration {
	p, timed := profileFor(s.Mode)
	if !timed {
		return 0
	}
	if s.Phase == PhaseBreak {
		return p.brk
	}
	return p.focus
}

// advance is the pure transition function.
func advance(s ModeState, now time.Time) ModeState {
	p, timed := profileFor(s.Mode)
	if !timed {
		s.Warning = false
		return s
	}
	elapsed := now.Sub(s.PhaseStarted)
	if elapsed < 0 {
		return s
	}

	if p.brk == 0 {
		// Single-phase repeating timer: roll the start forward by
		// whole cycles so re-evaluation stays idempotent.
		cycles := int(elapsed / p.focus)
		s.PhaseStarted = s.PhaseStarted.Add(time.Duration(cycles) * p.focus)
		s.CycleCount += cycles
		remaining := p.focus - now.Sub(s.PhaseStarted)
		s.Warning = p.warn > 0 && remaining <= p.warn
		return s
	}

	for {
		dur := p.focus
		if s.Phase == PhaseBreak {
			dur = p.brk
		}
		if elapsed < dur {
			s.Warning = s.Phase == PhaseFocus && p.warn > 0 && dur-elapsed <= p.warn
			return s
		}
		elapsed -= dur
		s.PhaseStarted = s.PhaseStarted.Add(dur)
		if s.Phase == PhaseFocus {
			s.Phase = PhaseBreak
		} else {
			s.Phase = PhaseFocus
			s.CycleCount++
		}
	}
}
