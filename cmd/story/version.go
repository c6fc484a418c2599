package main

import (
	"fmt"

	"github.com/daymxn/story"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of story",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "story version %s\n", story.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
