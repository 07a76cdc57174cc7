package domain

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"
)

// localIDPrefix marks task IDs minted locally while the remote system
// is unreachable. They are replaced by remote IDs on sync.
const localIDPrefix = "local:"

// TaskRecord is the canonical task representation. The remote system
// is the source of truth; the local store mirrors it read-through and
// write-through. At most one record per (Label, Title) pair may be
// live at a time.
type TaskRecord struct {
	TaskID       string
	Label        string // section title on the note
	Title        string // task text on the note
	DueDate      time.Time
	Completed    bool
	PendingSync  bool
	LastSyncedAt time.Time
}

// Live reports whether the record counts against the one-live-record
// invariant.
func (r TaskRecord) Live() bool {
	return !r.Completed
}

// Key returns the identity a record is matched on during
// reconciliation.
func (r TaskRecord) Key() TaskKey {
	return TaskKey{Label: r.Label, Title: r.Title}
}

// TaskKey is the (label, title) identity of a task.
type TaskKey struct {
	Label string
	Title string
}

// LocalTaskID derives a deterministic placeholder ID for a task that
// could not be created remotely yet. Deterministic so the same
// unsynced task never mints two IDs across batches.
func LocalTaskID(label, title string) string {
	sum := sha1.Sum([]byte(label + "\x00" + title))
	return localIDPrefix + hex.EncodeToString(sum[:])
}

// IsLocalTaskID reports whether id was minted by LocalTaskID.
func IsLocalTaskID(id string) bool {
	return strings.HasPrefix(id, localIDPrefix)
}
