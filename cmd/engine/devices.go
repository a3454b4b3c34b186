package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/device"
)

// devicesCommand lists the input devices available on the configured backend.
func devicesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "devices",
		Short: "List available audio input devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			backend, err := device.Resolve(ctx, config.Setting().Device.Backend)
			if err != nil {
				return fmt.Errorf("resolving device backend: %w", err)
			}

			devices, err := backend.ListInputs(ctx)
			if err != nil {
				return fmt.Errorf("listing input devices: %w", err)
			}

			for _, d := range devices {
				marker := " "
				if d.Default {
					marker = "*"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %-10s %s\n", marker, d.ID, d.Backend, d.Description)
			}
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}
