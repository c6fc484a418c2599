package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/daymxn/story/internal/logging"
	"github.com/daymxn/story/pkg/observability"
	"github.com/daymxn/story/pkg/scene"
	"github.com/spf13/cobra"
)

var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "story",
	Short: "Story binds cleanup logic to the lifetime of host objects",
	Long:  `Story simulates lifecycle trees declared in scene files: hosts, the stories bound to them and a script of destroy and redraw steps.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(raw)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
}

// loadSimulator reads a scene file and materialises it with lifecycle
// events logged at debug level.
func loadSimulator(path string, opts ...scene.Option) (*scene.Simulator, error) {
	sc, err := scene.Load(path)
	if err != nil {
		return nil, err
	}
	base := []scene.Option{
		scene.WithLogger(logger),
	}
	if logger.Enabled(context.Background(), slog.LevelDebug) {
		base = append(base, scene.WithLifecycleHooks(observability.LogHooks(logger)))
	}
	return scene.NewSimulator(sc, append(base, opts...)...)
}
