package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/recovery"
)

// recoverCommand scans the configured recording output directory for
// orphaned files left behind by a crash, and optionally repairs them.
func recoverCommand() *cobra.Command {
	var repair bool

	cmd := &cobra.Command{
		Use:   "recover",
		Short: "Scan for and repair orphaned recordings left by a crash",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := config.Setting().Recording.OutputDir

			orphans, err := recovery.ScanOrphanedRecordings(dir)
			if err != nil {
				return fmt.Errorf("scanning %s: %w", dir, err)
			}
			if len(orphans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no orphaned recordings found")
				return nil
			}

			for _, o := range orphans {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  headerOK=%v  estDuration=%.1fs\n",
					o.Path, o.HeaderOK, o.EstimatedDurationSeconds)

				if !repair {
					continue
				}
				result, err := recovery.RecoverRecording(o.Path)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "  repair failed: %v\n", err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  repaired, duration now %.1fs\n", result.EstimatedDurationSeconds)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&repair, "repair", false, "repair broken headers in place")
	cmd.SilenceUsage = true
	return cmd
}
