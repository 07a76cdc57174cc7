package csvlog

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"pihub/internal/domain"
)

var ts = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

func newTestLog(t *testing.T) (*Log, string) {
	t.Helper()
	dir := t.TempDir()
	l, err := New(dir)
	if err != nil {
		t.Fatalf("new log: %v", err)
	}
	return l, dir
}

func TestAppendTaskWritesHeaderOnce(t *testing.T) {
	l, dir := newTestLog(t)
	l.AppendTask(domain.TaskEvent{Timestamp: ts, Action: domain.TaskCreated, Task: "a", SectionTitle: "S"})
	l.AppendTask(domain.TaskEvent{Timestamp: ts, Action: domain.TaskCompleted, Task: "b", SectionTitle: "S"})

	raw, err := os.ReadFile(filepath.Join(dir, "task_events.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header + 2 rows:\n%s", len(lines), raw)
	}
	if lines[0] != "timestamp,action,task,section_title" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "created") || !strings.Contains(lines[2], "completed") {
		t.Errorf("rows out of order:\n%s", raw)
	}
}

func TestRecentTasksMostRecentFirst(t *testing.T) {
	l, _ := newTestLog(t)
	for i, name := range []string{"first", "second", "third"} {
		l.AppendTask(domain.TaskEvent{
			Timestamp: ts.Add(time.Duration(i) * time.Minute),
			Action:    domain.TaskCreated,
			Task:      name,
		})
	}
	got, err := l.RecentTasks(2)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Task != "third" || got[1].Task != "second" {
		t.Errorf("recent = %+v", got)
	}
}

func TestAggregatesCountExactly(t *testing.T) {
	l, _ := newTestLog(t)
	const creates, completes, postures = 5, 3, 4
	for i := 0; i < creates; i++ {
		l.AppendTask(domain.TaskEvent{Timestamp: ts, Action: domain.TaskCreated, Task: "c"})
	}
	for i := 0; i < postures; i++ {
		// Interleave posture appends; they must not affect task counts.
		l.AppendPosture(domain.PostureEvent{Timestamp: ts, OK: i%2 == 0, TiltDeg: 1.5, NodDeg: 2.5})
	}
	for i := 0; i < completes; i++ {
		l.AppendTask(domain.TaskEvent{Timestamp: ts, Action: domain.TaskCompleted, Task: "d"})
	}

	tasks, err := l.TaskTotals()
	if err != nil {
		t.Fatal(err)
	}
	if tasks.Created != creates || tasks.Completed != completes || tasks.Total != creates+completes {
		t.Errorf("task totals = %+v", tasks)
	}

	posture, err := l.PostureTotals()
	if err != nil {
		t.Fatal(err)
	}
	if posture.Total != postures || posture.Adjustments != 2 {
		t.Errorf("posture totals = %+v", posture)
	}
}

func TestPostureRoundTrip(t *testing.T) {
	l, _ := newTestLog(t)
	l.AppendPosture(domain.PostureEvent{
		Timestamp:           ts,
		OK:                  false,
		Reason:              "tilt 20.0 exceeds 12.0",
		TiltDeg:             20,
		NodDeg:              3.2,
		SessionAdjustments:  2,
		TasksCompletedToday: 7,
	})
	got, err := l.RecentPosture(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d events", len(got))
	}
	ev := got[0]
	if ev.OK || ev.TiltDeg != 20 || ev.NodDeg != 3.2 || ev.SessionAdjustments != 2 || ev.TasksCompletedToday != 7 {
		t.Errorf("round trip mismatch: %+v", ev)
	}
	if !ev.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", ev.Timestamp, ts)
	}
}

func TestFieldsWithCommasSurviveRoundTrip(t *testing.T) {
	l, _ := newTestLog(t)
	l.AppendTask(domain.TaskEvent{
		Timestamp:    ts,
		Action:       domain.TaskCreated,
		Task:         "buy milk, eggs, and bread",
		SectionTitle: "Groceries, weekly",
	})
	got, err := l.RecentTasks(1)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Task != "buy milk, eggs, and bread" || got[0].SectionTitle != "Groceries, weekly" {
		t.Errorf("round trip mismatch: %+v", got[0])
	}
}

func TestConcurrentAppends(t *testing.T) {
	l, _ := newTestLog(t)
	const writers, perWriter = 8, 25

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				l.AppendTask(domain.TaskEvent{Timestamp: ts, Action: domain.TaskCreated, Task: "t"})
				l.AppendPosture(domain.PostureEvent{Timestamp: ts, OK: true})
			}
		}()
	}
	wg.Wait()

	tasks, err := l.TaskTotals()
	if err != nil {
		t.Fatal(err)
	}
	if tasks.Total != writers*perWriter {
		t.Errorf("task total = %d, want %d", tasks.Total, writers*perWriter)
	}
	posture, err := l.PostureTotals()
	if err != nil {
		t.Fatal(err)
	}
	if posture.Total != writers*perWriter {
		t.Errorf("posture total = %d, want %d", posture.Total, writers*perWriter)
	}
}

func TestAppendErrorDoesNotPanicAndReports(t *testing.T) {
	dir := t.TempDir()
	var reported error
	l, err := New(dir, WithErrorHandler(func(e error) { reported = e }))
	if err != nil {
		t.Fatal(err)
	}
	// Turn the task log path into a directory to force open failures.
	if err := os.Mkdir(filepath.Join(dir, "task_events.csv"), 0755); err != nil {
		t.Fatal(err)
	}
	l.AppendTask(domain.TaskEvent{Timestamp: ts, Action: domain.TaskCreated, Task: "x"})
	if reported == nil {
		t.Error("append failure not reported through handler")
	}
}
