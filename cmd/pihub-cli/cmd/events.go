package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var eventsLimit int

var eventsCmd = &cobra.Command{
	Use:   "events [tasks|posture]",
	Short: "Show recent events from the logs",
}

var eventsTasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Show recent task events, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := GetHub().RecentTaskEvents(eventsLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("no task events yet")
			return nil
		}
		for _, ev := range events {
			fmt.Printf("%s  %-9s  %s", ev.Timestamp.Format("2006-01-02 15:04"), ev.Action, ev.Task)
			if ev.SectionTitle != "" {
				fmt.Printf("  [%s]", ev.SectionTitle)
			}
			fmt.Println()
		}
		return nil
	},
}

var eventsPostureCmd = &cobra.Command{
	Use:   "posture",
	Short: "Show recent posture events, most recent first",
	RunE: func(cmd *cobra.Command, args []string) error {
		events, err := GetHub().RecentPostureEvents(eventsLimit)
		if err != nil {
			return err
		}
		if len(events) == 0 {
			fmt.Println("no posture events yet")
			return nil
		}
		for _, ev := range events {
			verdict := "ok"
			if !ev.OK {
				verdict = ev.Reason
			}
			fmt.Printf("%s  %s (tilt %.1f, nod %.1f)\n",
				ev.Timestamp.Format("2006-01-02 15:04"), verdict, ev.TiltDeg, ev.NodDeg)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTasksCmd)
	eventsCmd.AddCommand(eventsPostureCmd)
	eventsCmd.PersistentFlags().IntVarP(&eventsLimit, "limit", "n", 20, "maximum events to show")
}
