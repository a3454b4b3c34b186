package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipdr/studio-engine/internal/config"
)

// RootCommand creates and returns the root command for the engine CLI.
func RootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "engine",
		Short: "Studio engine CLI",
		Long:  "Capture, clean, and play back audio recordings.",
	}

	if err := setupFlags(rootCmd); err != nil {
		fmt.Fprintf(rootCmd.ErrOrStderr(), "error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		devicesCommand(),
		recordCommand(),
		playCommand(),
		recoverCommand(),
		metricsCommand(),
	)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if _, err := config.Load(); err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		return nil
	}

	return rootCmd
}

// setupFlags defines flags global to every subcommand.
func setupFlags(cmd *cobra.Command) error {
	cmd.PersistentFlags().Bool("debug", viper.GetBool("debug"), "Enable debug output")
	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
