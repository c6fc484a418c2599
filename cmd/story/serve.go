package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	storyhttp "github.com/daymxn/story/pkg/adapters/http"
	"github.com/daymxn/story/pkg/observability"
	"github.com/daymxn/story/pkg/scene"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve <scene>",
	Short: "Serve a live scene over HTTP",
	Long:  `Materialises the scene and exposes its trees, step controls, an SSE event stream and Prometheus metrics over HTTP.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		metrics := observability.NewMetrics(reg)
		streams := storyhttp.NewStreamManager(logger)

		sim, err := loadSimulator(args[0],
			scene.WithLifecycleHooks(metrics.Hooks()),
			scene.WithLifecycleHooks(streams.Hooks()),
		)
		if err != nil {
			return err
		}

		handler := storyhttp.NewHandler(sim,
			storyhttp.WithGatherer(reg),
			storyhttp.WithStreams(streams),
			storyhttp.WithLogger(logger),
		)

		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Fprintf(cmd.OutOrStdout(), "Starting Story Server on %s\n", srv.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving scene from: %s\n", args[0])
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case sig := <-shutdown:
			logger.Info("start shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("killing server: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Story Server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}
