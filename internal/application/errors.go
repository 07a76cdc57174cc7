package application

import (
	"errors"
	"fmt"
)

// Sentinel errors for common conditions
var (
	ErrRemoteUnavailable  = errors.New("remote task service unavailable")
	ErrCaptureUnavailable = errors.New("capture unavailable")
	ErrNotFound           = errors.New("not found")
)

// RemoteErrorKind classifies a remote API failure by its
// HTTP-status-derived subtype.
type RemoteErrorKind int

const (
	RemoteKindNetwork RemoteErrorKind = iota // connect/timeout, no response
	RemoteKindUnauthorized
	RemoteKindBadRequest
	RemoteKindServer
)

func (k RemoteErrorKind) String() string {
	switch k {
	case RemoteKindUnauthorized:
		return "unauthorized"
	case RemoteKindBadRequest:
		return "bad request"
	case RemoteKindServer:
		return "server error"
	default:
		return "network"
	}
}

// RemoteError reports a failed call to the remote task API.
type RemoteError struct {
	Op     string // e.g. "create task"
	Kind   RemoteErrorKind
	Status int // HTTP status, 0 when the request never completed
	Err    error
}

func (e *RemoteError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("remote %s: %s (status %d)", e.Op, e.Kind, e.Status)
	}
	return fmt.Sprintf("remote %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

func (e *RemoteError) Is(target error) bool {
	return target == ErrRemoteUnavailable
}

// PersistenceError reports a cache or log write failure. It is
// surfaced to the caller but never aborts in-memory reconciliation.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// CaptureError reports a failed camera/OCR run.
type CaptureError struct {
	Stage string // "camera" or "ocr"
	Err   error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Stage, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

func (e *CaptureError) Is(target error) bool {
	return target == ErrCaptureUnavailable
}
