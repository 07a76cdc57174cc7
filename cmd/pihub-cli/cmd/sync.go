package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Retry pending changes and mirror the remote task list",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := GetHub().SyncRemote(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("mirrored %d remote tasks (%d pending entries kept)\n", res.Upserted, res.Skipped)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
