package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/clipdr/studio-engine/internal/cleaning"
	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/telemetry"
)

// metricsCommand starts a bare Prometheus /metrics endpoint, useful for
// exercising the telemetry wiring (ring overruns, writer drain latency,
// active sessions, cleaning stage durations) without running a full
// capture session.
func metricsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "Serve Prometheus metrics over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Setting()
			if !cfg.Telemetry.Enabled {
				return fmt.Errorf("telemetry.enabled is false in configuration")
			}

			m, err := telemetry.NewMetrics()
			if err != nil {
				return fmt.Errorf("initializing metrics: %w", err)
			}
			telemetry.SetGlobalMetrics(m)
			cleaning.StageObserver = m.Cleaning.RecordStageDuration

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{}))
			server := &http.Server{Addr: cfg.Telemetry.Listen, Handler: mux}

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
			go func() {
				<-sigChan
				_ = server.Close()
			}()

			fmt.Fprintf(cmd.OutOrStdout(), "serving metrics on http://%s/metrics\n", cfg.Telemetry.Listen)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("serving metrics: %w", err)
			}
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}
