package main

import (
	"fmt"

	"github.com/daymxn/story/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <scene>",
	Short: "Export the lifecycle tree visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the host tree and the stories bound to it.`,
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
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(sim.Snapshot()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("run", false, "Apply the scripted steps before exporting")
}
