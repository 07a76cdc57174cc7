package ports

import (
	"context"
	"time"

	"pihub/internal/domain"
)

// CaptureResult is one camera capture run through OCR.
type CaptureResult struct {
	ImagePath  string
	Text       string
	CapturedAt time.Time
}

// NoteCapture grabs a frame and extracts its text. Implementations
// return application.ErrCaptureUnavailable when the camera or OCR
// binary is missing.
type NoteCapture interface {
	CaptureAndExtract(ctx context.Context) (CaptureResult, error)
}

// PostureSource samples the current head pose. Same availability
// contract as NoteCapture.
type PostureSource interface {
	Read(ctx context.Context) (domain.PostureReading, error)
}
