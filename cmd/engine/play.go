package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipdr/studio-engine/internal/config"
	"github.com/clipdr/studio-engine/internal/playback"
)

// playCommand plays a single audio file through the default output
// device until it finishes or is interrupted.
func playCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Play an audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Setting()
			engine := playback.NewEngine(cfg.Device.SampleRate, cfg.Device.Channels, cfg.Playback.DecodeCacheDir)

			track, err := engine.AddTrack(args[0], 0, 0)
			if err != nil {
				return fmt.Errorf("loading track: %w", err)
			}

			out, err := playback.OpenOutput(engine, cfg.Device.SampleRate, cfg.Device.Channels)
			if err != nil {
				return fmt.Errorf("opening playback output: %w", err)
			}
			defer out.Stop()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
			defer signal.Stop(sigChan)

			engine.Play()
			fmt.Fprintf(cmd.OutOrStdout(), "playing %s, press Ctrl-C to stop\n", args[0])

			<-sigChan
			engine.RemoveTrack(track)
			return nil
		},
	}
	cmd.SilenceUsage = true
	return cmd
}
