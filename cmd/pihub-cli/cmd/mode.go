package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"pihub/internal/domain"
)

var modeCmd = &cobra.Command{
	Use:   "mode",
	Short: "Show or switch the hub mode",
}

var modeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current mode and timer state",
	RunE: func(cmd *cobra.Command, args []string) error {
		st := GetHub().Tick(time.Now())
		fmt.Printf("mode: %s\n", st.Mode)
		if st.Phase != domain.PhaseNone {
			fmt.Printf("phase: %s\n", st.Phase)
			if total := domain.PhaseDuration(st); total > 0 {
				remaining := total - time.Since(st.PhaseStarted)
				if remaining < 0 {
					remaining = 0
				}
				fmt.Printf("remaining: %s\n", remaining.Round(time.Second))
			}
			if st.CycleCount > 0 {
				fmt.Printf("cycles: %d\n", st.CycleCount)
			}
			if st.Warning {
				fmt.Println("warning: phase ending soon")
			}
		}
		return nil
	},
}

var modeSetCmd = &cobra.Command{
	Use:   "set <mode>",
	Short: "Switch to a mode",
	Long: `Switch the hub to a mode. Timer modes start their focus phase
immediately.

Modes: ` + modeNames(),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := GetHub().SetModeByName(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("mode set to %s\n", st.Mode)
		return nil
	},
}

func modeNames() string {
	names := make([]string, 0, len(domain.AllModes))
	for _, m := range domain.AllModes {
		names = append(names, m.String())
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(modeCmd)
	modeCmd.AddCommand(modeShowCmd)
	modeCmd.AddCommand(modeSetCmd)
}
