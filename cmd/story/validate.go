package main

import (
	"fmt"

	"github.com/daymxn/story/pkg/scene"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <scene>",
	Short: "Check a scene file for consistency",
	Long:  `Parses the scene and reports duplicate names, unknown hosts and steps targeting missing hosts or stories.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sc, err := scene.Load(args[0])
		if err != nil {
			return err
		}
		if err := sc.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Scene %q is valid! ✅\n", sc.Name)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
