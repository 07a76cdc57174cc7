package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pihub/internal/application"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Parse note text and reconcile the resulting tasks",
	Long: `Parse note text through the checklist grammar and apply the resulting
task intents. Reads from the given file, or from stdin when no file is
given.

Examples:
  pihub-cli ingest note.txt
  echo '- [ ] buy milk' | pihub-cli ingest`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var raw []byte
		var err error
		if len(args) == 1 {
			raw, err = os.ReadFile(args[0])
		} else {
			raw, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}

		res, err := GetHub().ParseAndReconcile(context.Background(), string(raw), time.Now())
		deferred := errors.Is(err, application.ErrRemoteUnavailable)
		if err != nil && !deferred {
			return err
		}

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
	rootCmd.AddCommand(ingestCmd)
}
