package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var tasksLimit int

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List open tasks due this week",
	Long: `List open tasks due in the current Monday-to-Sunday week, due date
ascending. Tasks still waiting for remote confirmation are marked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tasks, err := GetHub().WeekTasks(tasksLimit)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			fmt.Println("no tasks due this week")
			return nil
		}
		for _, t := range tasks {
			fmt.Printf("%s  [%s] %s", t.DueDate.Format(time.DateOnly), t.Label, t.Title)
			if t.PendingSync {
				fmt.Print("  (pending sync)")
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.Flags().IntVarP(&tasksLimit, "limit", "n", 50, "maximum tasks to list")
}
