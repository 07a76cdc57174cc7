package domain

import (
	"regexp"
	"strings"
	"time"
)

// UntitledSection labels checklist lines that appear before any header.
const UntitledSection = "Untitled"

// IntentAction is the operation a checklist line asks for.
type IntentAction int

const (
	ActionCreate IntentAction = iota
	ActionComplete
)

func (a IntentAction) String() string {
	switch a {
	case ActionCreate:
		return "create"
	case ActionComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// TaskIntent is one parsed, not-yet-applied task action. Intents are
// transient: the reconciler consumes them in parse order and they are
// never persisted as-is.
type TaskIntent struct {
	Action       IntentAction
	SectionTitle string
	TaskName     string
	DueDate      time.Time
}

// NoteSection is a contiguous block of note text under one header.
type NoteSection struct {
	Title string
	Lines []string
}

// Checklist markers. A leading bullet (-, * or •) is optional for all
// of them; matching is case-insensitive.
var (
	openBoxRe  = regexp.MustCompile(`(?i)^(?:[-*•]\s*)?\[\s?\]\s*(.*)$`)
	doneBoxRe  = regexp.MustCompile(`(?i)^(?:[-*•]\s*)?\[x\]\s*(.*)$`)
	todoWordRe = regexp.MustCompile(`(?i)^(?:[-*•]\s*)?todo:\s*(.*)$`)
	doneWordRe = regexp.MustCompile(`(?i)^(?:[-*•]\s*)?done:\s*(.*)$`)
	dueRe      = regexp.MustCompile(`(?i)^due:\s*(.+)$`)
	isoDateRe  = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
)

type checklistLine struct {
	action IntentAction
	name   string
}

// matchChecklist reports whether line is a checklist line and, if so,
// the action and remaining task text.
func matchChecklist(line string) (checklistLine, bool) {
	for _, m := range []struct {
		re     *regexp.Regexp
		action IntentAction
	}{
		{doneBoxRe, ActionComplete},
		{openBoxRe, ActionCreate},
		{doneWordRe, ActionComplete},
		{todoWordRe, ActionCreate},
	} {
		if got := m.re.FindStringSubmatch(line); got != nil {
			return checklistLine{action: m.action, name: strings.TrimSpace(got[1])}, true
		}
	}
	return checklistLine{}, false
}

// matchDue reports whether line is a DUE: line carrying a valid ISO
// date. Malformed dates are treated as absent.
func matchDue(line string) (time.Time, bool) {
	got := dueRe.FindStringSubmatch(line)
	if got == nil {
		return time.Time{}, false
	}
	raw := strings.TrimSpace(got[1])
	iso := isoDateRe.FindString(raw)
	if iso == "" {
		return time.Time{}, false
	}
	d, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// ParseNote turns raw OCR text into an ordered sequence of task
// intents. The grammar is deliberately small: checklist lines carry
// intents, a DUE: line sets the due date for its whole section (last
// one wins, applied retroactively), and any other non-empty line
// starts a new section whose trimmed text becomes the title. ParseNote
// never fails; arbitrary text degrades to fewer (or zero) intents.
func ParseNote(raw string, captureTime time.Time, defaultDueDays int) []TaskIntent {
	fallback := captureTime.AddDate(0, 0, defaultDueDays)
	fallback = time.Date(fallback.Year(), fallback.Month(), fallback.Day(), 0, 0, 0, 0, time.UTC)

	var (
		intents []TaskIntent
		section = UntitledSection
		due     time.Time
		hasDue  bool
		buf     []TaskIntent
	)

	flush := func() {
		d := fallback
		if hasDue {
			d = due
		}
		for i := range buf {
			buf[i].DueDate = d
		}
		intents = append(intents, buf...)
		buf = buf[:0]
	}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if cl, ok := matchChecklist(line); ok {
			if cl.name == "" {
				continue
			}
			buf = append(buf, TaskIntent{
				Action:       cl.action,
				SectionTitle: section,
				TaskName:     cl.name,
			})
			continue
		}
		if dueRe.MatchString(line) {
			if parsed, ok := matchDue(line); ok {
				due, hasDue = parsed, true
			}
			// Malformed DUE: lines are ignored, not promoted to headers.
			continue
		}
		// Anything else starts a new section.
		flush()
		section = line
		due, hasDue = time.Time{}, false
	}
	flush()
	return intents
}

// SplitSections groups raw note text into sections without deriving
// intents. Text before the first header lands in an Untitled section,
// which is omitted when empty.
func SplitSections(raw string) []NoteSection {
	var sections []NoteSection
	current := NoteSection{Title: UntitledSection}

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		_, isChecklist := matchChecklist(line)
		isDue := dueRe.MatchString(line)
		if isChecklist || isDue {
			current.Lines = append(current.Lines, line)
			continue
		}
		if current.Title != UntitledSection || len(current.Lines) > 0 {
			sections = append(sections, current)
		}
		current = NoteSection{Title: line}
	}
	if current.Title != UntitledSection || len(current.Lines) > 0 {
		sections = append(sections, current)
	}
	return sections
}
