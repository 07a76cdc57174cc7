package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pihub/internal/application"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture a note photo, run OCR and reconcile the tasks",
	RunE: func(cmd *cobra.Command, args []string) error {
		cap, res, err := GetHub().CaptureNote(context.Background())
		deferred := errors.Is(err, application.ErrRemoteUnavailable)
		if err != nil && !deferred {
			return err
		}

		fmt.Printf("image: %s\n", cap.ImagePath)
		if res == nil || len(res.Events) == 0 {
			fmt.Println("no task intents found")
			return nil
		}
		for _, ev := range res.Events {
			fmt.Printf("%s  %s", ev.Action, ev.Task)
			if ev.SectionTitle != "" {
				fmt.Printf("  [%s]", ev.SectionTitle)
			}
			fmt.Println()
		}
		for _, e := range res.Errors {
			fmt.Fprintf(os.Stderr, "warning: %v\n", e)
		}
		if deferred {
			fmt.Println("remote unavailable: changes queued for the next sync")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)
}
