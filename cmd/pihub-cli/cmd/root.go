package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pihub/internal/adapters/csvlog"
	"pihub/internal/adapters/motion"
	"pihub/internal/adapters/ocr"
	"pihub/internal/adapters/sqlite"
	"pihub/internal/config"
	"pihub/internal/domain"
	"pihub/internal/hub"
)

var (
	configPath string
	cfg        *config.Config
	store      *sqlite.Store
	h          *hub.Hub
)

var rootCmd = &cobra.Command{
	Use:   "pihub-cli",
	Short: "CLI for the note-to-task hub",
	Long: `pihub-cli drives the hub from the command line: ingest note text,
capture a photo through the OCR pipeline, inspect the week's tasks and
the event logs, switch modes, and sync with the remote task list.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}

		store, err = sqlite.Open(cfg.DBPath())
		if err != nil {
			return err
		}

		eventLog, err := csvlog.New(cfg.LogsDir())
		if err != nil {
			return err
		}

		remote := motion.NewClient(cfg.Motion.APIKey)
		capture := ocr.NewCapture(cfg.NotesDir, ocr.WithLanguages(cfg.OCR.Languages))

		h = hub.New(store, remote, eventLog, cfg.Tasks.DefaultDueDays,
			hub.WithCapture(capture),
			hub.WithPostureThresholds(domain.PostureThresholds{
				MaxTiltDeg: cfg.Posture.MaxTiltDeg,
				MaxNodDeg:  cfg.Posture.MaxNodDeg,
			}),
		)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if store != nil {
			return store.Close()
		}
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
}

// GetHub returns the initialized hub
func GetHub() *hub.Hub {
	return h
}

// GetConfig returns the loaded configuration
func GetConfig() *config.Config {
	return cfg
}
