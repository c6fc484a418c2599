package main

import (
	"github.com/daymxn/story/internal/presentation/tui"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree <scene>",
	Short: "Print the host and story trees",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sim, err := loadSimulator(args[0])
		if err != nil {
			return err
		}
		if run, _ := cmd.Flags().GetBool("run"); run {
			if err := sim.Run(); err != nil {
				return err
			}
		}

		profile := termenv.NewOutput(cmd.OutOrStdout()).Profile
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			profile = termenv.Ascii
		}
		tui.PrintTree(cmd.OutOrStdout(), sim.Snapshot(), profile)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(treeCmd)
	treeCmd.Flags().Bool("run", false, "Apply the scripted steps before printing")
	treeCmd.Flags().Bool("no-color", false, "Disable colours")
}
