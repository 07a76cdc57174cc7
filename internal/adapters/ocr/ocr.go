// Package ocr captures a note photo with rpicam-still and extracts
// its text with tesseract.
package ocr

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"pihub/internal/application"
	"pihub/internal/ports"
)

// Capture implements ports.NoteCapture by shelling out to the camera
// and OCR binaries.
type Capture struct {
	notesDir   string
	cameraBin  string
	cameraArgs []string
	ocrBin     string
	languages  string
	clock      func() time.Time
}

// Ensure Capture implements NoteCapture
var _ ports.NoteCapture = (*Capture)(nil)

// Option configures the Capture.
type Option func(*Capture)

// WithCameraCommand overrides the capture binary and its extra args.
func WithCameraCommand(bin string, args ...string) Option {
	return func(c *Capture) {
		c.cameraBin = bin
		c.cameraArgs = args
	}
}

// WithOCRCommand overrides the OCR binary.
func WithOCRCommand(bin string) Option {
	return func(c *Capture) { c.ocrBin = bin }
}

// WithLanguages sets the tesseract language pack list (e.g. "eng+por").
func WithLanguages(langs string) Option {
	return func(c *Capture) {
		if langs != "" {
			c.languages = langs
		}
	}
}

// WithClock overrides the capture timestamp source.
func WithClock(clock func() time.Time) Option {
	return func(c *Capture) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewCapture creates a capture pipeline saving images and text under
// notesDir.
func NewCapture(notesDir string, opts ...Option) *Capture {
	c := &Capture{
		notesDir:   notesDir,
		cameraBin:  "rpicam-still",
		cameraArgs: []string{"--nopreview", "--timeout", "1500"},
		ocrBin:     "tesseract",
		languages:  "eng",
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsAvailable reports whether both binaries are on PATH.
func (c *Capture) IsAvailable() bool {
	if _, err := exec.LookPath(c.cameraBin); err != nil {
		return false
	}
	_, err := exec.LookPath(c.ocrBin)
	return err == nil
}

// CaptureAndExtract takes one photo, runs OCR on it and returns the
// image path with the recognized text.
func (c *Capture) CaptureAndExtract(ctx context.Context) (ports.CaptureResult, error) {
	now := c.clock()
	if err := os.MkdirAll(c.notesDir, 0755); err != nil {
		return ports.CaptureResult{}, &application.CaptureError{Stage: "prepare", Err: err}
	}

	imagePath := filepath.Join(c.notesDir, now.Format("20060102-150405")+".png")
	if err := c.snap(ctx, imagePath); err != nil {
		return ports.CaptureResult{}, err
	}

	text, err := c.extract(ctx, imagePath)
	if err != nil {
		return ports.CaptureResult{}, err
	}

	// Keep the recognized text next to the image for later review.
	textPath := strings.TrimSuffix(imagePath, ".png") + ".txt"
	if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
		return ports.CaptureResult{}, &application.CaptureError{Stage: "save", Err: err}
	}

	return ports.CaptureResult{
		ImagePath:  imagePath,
		Text:       text,
		CapturedAt: now,
	}, nil
}

func (c *Capture) snap(ctx context.Context, imagePath string) error {
	if _, err := exec.LookPath(c.cameraBin); err != nil {
		return &application.CaptureError{Stage: "camera", Err: err}
	}
	args := append(append([]string{}, c.cameraArgs...), "-o", imagePath)
	cmd := exec.CommandContext(ctx, c.cameraBin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return &application.CaptureError{
			Stage: "camera",
			Err:   fmt.Errorf("%s: %w (%s)", c.cameraBin, err, strings.TrimSpace(string(out))),
		}
	}
	return nil
}

func (c *Capture) extract(ctx context.Context, imagePath string) (string, error) {
	if _, err := exec.LookPath(c.ocrBin); err != nil {
		return "", &application.CaptureError{Stage: "ocr", Err: err}
	}
	// "stdout" makes tesseract print the text instead of writing a file.
	cmd := exec.CommandContext(ctx, c.ocrBin, imagePath, "stdout", "-l", c.languages)
	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", &application.CaptureError{
				Stage: "ocr",
				Err:   fmt.Errorf("%s: %s", c.ocrBin, strings.TrimSpace(string(exitErr.Stderr))),
			}
		}
		return "", &application.CaptureError{Stage: "ocr", Err: err}
	}
	return string(out), nil
}
