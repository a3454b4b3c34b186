package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/recording"
)

// recordCommand starts a single recording session on the given device
// and runs until interrupted, then reports the finished file.
func recordCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record [device-id]",
		Short: "Record audio from a device until interrupted",
		Long:  "Start a recording session on the given device and run until Ctrl-C, writing a WAV file to the configured output directory.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
			go func() {
				<-sigChan
				fmt.Fprintln(cmd.OutOrStdout(), "\nstopping recording...")
				cancel()
			}()
			defer signal.Stop(sigChan)

			manager, err := recording.NewManager(ctx)
			if err != nil {
				return fmt.Errorf("creating recording manager: %w", err)
			}

			outputDir := config.Setting().Recording.OutputDir
			mono, _ := cmd.Flags().GetBool("mono")
			channelMode := recording.ChannelModeNative
			if mono {
				channelMode = recording.ChannelModeMono
			}

			path, err := manager.StartRecording(ctx, args[0], outputDir, channelMode, recording.SplitTracks)
			if err != nil {
				return fmt.Errorf("starting recording: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recording to %s, press Ctrl-C to stop\n", path)

			<-ctx.Done()

			result, err := manager.StopSession(recording.DefaultSessionID)
			if err != nil {
				return fmt.Errorf("stopping recording: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%s, %dHz, %d ch)\n",
				result.Path, result.Duration, result.SampleRate, result.Channels)
			return nil
		},
	}
	cmd.Flags().Bool("mono", false, "downmix to mono on stop")
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		panic(fmt.Sprintf("binding record flags: %v", err))
	}
	cmd.SilenceUsage = true
	return cmd
}
