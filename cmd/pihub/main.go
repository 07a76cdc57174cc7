package main

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pihub/internal/adapters/csvlog"
	"pihub/internal/adapters/motion"
	"pihub/internal/adapters/ocr"
	"pihub/internal/adapters/sqlite"
	"pihub/internal/adapters/tui"
	"pihub/internal/config"
	"pihub/internal/domain"
	"pihub/internal/hub"
	"pihub/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := sqlite.Open(cfg.DBPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	log, err := csvlog.New(cfg.LogsDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	remote := motion.NewClient(cfg.Motion.APIKey)
	capture := ocr.NewCapture(cfg.NotesDir, ocr.WithLanguages(cfg.OCR.Languages))

	h := hub.New(store, remote, log, cfg.Tasks.DefaultDueDays,
		hub.WithCapture(capture),
		hub.WithPostureThresholds(domain.PostureThresholds{
			MaxTiltDeg: cfg.Posture.MaxTiltDeg,
			MaxNodDeg:  cfg.Posture.MaxNodDeg,
		}),
	)

	// Background cadence: pending retries and remote pulls keep
	// running while the dashboard is open.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sched := scheduler.New(h,
		scheduler.WithTickInterval(time.Duration(cfg.TickIntervalSeconds)*time.Second),
		scheduler.WithSyncInterval(time.Duration(cfg.Motion.SyncIntervalSeconds)*time.Second),
		scheduler.WithPostureInterval(time.Duration(cfg.Posture.CheckIntervalSeconds)*time.Second),
	)
	go sched.Run(ctx)

	app := tui.NewApp(h)

	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
