// Package csvlog persists the task and posture event logs as
// append-only CSV files, one row per event with a header row written
// on first use. Rows are never rewritten, so concurrent readers never
// observe partial records.
package csvlog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"pihub/internal/domain"
	"pihub/internal/ports"
)

const timestampLayout = "2006-01-02 15:04:05"

var (
	taskHeader    = []string{"timestamp", "action", "task", "section_title"}
	postureHeader = []string{"timestamp", "ok", "reason", "tilt_deg", "nod_deg", "session_adjustments", "tasks_completed_today"}
)

// Log implements ports.EventLog over two CSV files. Append errors are
// routed to the onError callback instead of the caller; the
// reconciler's work must not fail because a log write did.
type Log struct {
	taskPath    string
	posturePath string
	onError     func(error)

	mu sync.Mutex
}

// Ensure Log implements EventLog
var _ ports.EventLog = (*Log)(nil)

// Option customizes log construction.
type Option func(*Log)

// WithErrorHandler routes append failures somewhere visible.
func WithErrorHandler(fn func(error)) Option {
	return func(l *Log) {
		if fn != nil {
			l.onError = fn
		}
	}
}

// New creates a log writing task_events.csv and posture_events.csv
// under dir.
func New(dir string, opts ...Option) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	l := &Log{
		taskPath:    filepath.Join(dir, "task_events.csv"),
		posturePath: filepath.Join(dir, "posture_events.csv"),
		onError:     func(error) {},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// AppendTask appends one task event row.
func (l *Log) AppendTask(ev domain.TaskEvent) {
	l.append(l.taskPath, taskHeader, []string{
		ev.Timestamp.Format(timestampLayout),
		string(ev.Action),
		ev.Task,
		ev.SectionTitle,
	})
}

// AppendPosture appends one posture event row.
func (l *Log) AppendPosture(ev domain.PostureEvent) {
	ok := "0"
	if ev.OK {
		ok = "1"
	}
	l.append(l.posturePath, postureHeader, []string{
		ev.Timestamp.Format(timestampLayout),
		ok,
		ev.Reason,
		fmt.Sprintf("%.1f", ev.TiltDeg),
		fmt.Sprintf("%.1f", ev.NodDeg),
		strconv.Itoa(ev.SessionAdjustments),
		strconv.Itoa(ev.TasksCompletedToday),
	})
}

// append opens, writes one row (plus the header on a fresh file) and
// closes, serialized under the mutex so interleaved writers cannot
// tear rows.
func (l *Log) append(path string, header, row []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, statErr := os.Stat(path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		l.onError(fmt.Errorf("csvlog: open %s: %w", path, err))
		return
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(header); err != nil {
			l.onError(fmt.Errorf("csvlog: write header: %w", err))
			return
		}
	}
	if err := w.Write(row); err != nil {
		l.onError(fmt.Errorf("csvlog: write row: %w", err))
		return
	}
	w.Flush()
	if err := w.Error(); err != nil {
		l.onError(fmt.Errorf("csvlog: flush %s: %w", path, err))
	}
}

// RecentTasks returns up to limit task events, most recent first.
func (l *Log) RecentTasks(limit int) ([]domain.TaskEvent, error) {
	rows, err := l.read(l.taskPath, len(taskHeader))
	if err != nil {
		return nil, err
	}
	var out []domain.TaskEvent
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		r := rows[i]
		ts, _ := time.Parse(timestampLayout, r[0])
		out = append(out, domain.TaskEvent{
			Timestamp:    ts,
			Action:       domain.TaskEventAction(r[1]),
			Task:         r[2],
			SectionTitle: r[3],
		})
	}
	return out, nil
}

// RecentPosture returns up to limit posture events, most recent first.
func (l *Log) RecentPosture(limit int) ([]domain.PostureEvent, error) {
	rows, err := l.read(l.posturePath, len(postureHeader))
	if err != nil {
		return nil, err
	}
	var out []domain.PostureEvent
	for i := len(rows) - 1; i >= 0 && len(out) < limit; i-- {
		r := rows[i]
		ts, _ := time.Parse(timestampLayout, r[0])
		tilt, _ := strconv.ParseFloat(r[3], 64)
		nod, _ := strconv.ParseFloat(r[4], 64)
		adjustments, _ := strconv.Atoi(r[5])
		completed, _ := strconv.Atoi(r[6])
		out = append(out, domain.PostureEvent{
			Timestamp:           ts,
			OK:                  r[1] == "1",
			Reason:              r[2],
			TiltDeg:             tilt,
			NodDeg:              nod,
			SessionAdjustments:  adjustments,
			TasksCompletedToday: completed,
		})
	}
	return out, nil
}

// TaskTotals counts every task event exactly once.
func (l *Log) TaskTotals() (domain.TaskAggregate, error) {
	rows, err := l.read(l.taskPath, len(taskHeader))
	if err != nil {
		return domain.TaskAggregate{}, err
	}
	agg := domain.TaskAggregate{Total: len(rows)}
	for _, r := range rows {
		switch domain.TaskEventAction(r[1]) {
		case domain.TaskCreated:
			agg.Created++
		case domain.TaskCompleted:
			agg.Completed++
		}
	}
	return agg, nil
}

// PostureTotals counts every posture event exactly once.
func (l *Log) PostureTotals() (domain.PostureAggregate, error) {
	rows, err := l.read(l.posturePath, len(postureHeader))
	if err != nil {
		return domain.PostureAggregate{}, err
	}
	agg := domain.PostureAggregate{Total: len(rows)}
	for _, r := range rows {
		if r[1] != "1" {
			agg.Adjustments++
		}
	}
	return agg, nil
}

// read returns the data rows of a log file, header stripped. A
// missing file is an empty log, not an error.
func (l *Log) read(path string, fields int) ([][]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("csvlog: open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = fields
	all, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("csvlog: read %s: %w", path, err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[1:], nil
}
