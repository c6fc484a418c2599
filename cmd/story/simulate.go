package main

import (
	"fmt"

	"github.com/daymxn/story/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scene>",
	Short: "Run a scene script and report every lifecycle event",
	Long:  `Materialises the scene, applies every scripted step and prints the event trace and the final state as a markdown report.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sim, err := loadSimulator(args[0])
		if err != nil {
			return err
		}
		if err := sim.Run(); err != nil {
			return fmt.Errorf("simulation failed: %w", err)
		}

		plain, _ := cmd.Flags().GetBool("plain")
		report := tui.Report(sim.Snapshot(), sim.Trace())
		if !plain {
			if rendered, err := tui.NewRenderer()(report); err == nil {
				report = rendered
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().Bool("plain", false, "Print raw markdown")
}
