// Command engine is the studio engine's CLI entry point: a cobra root
// command with one subcommand per major capability (device listing,
// recording sessions, playback, crash recovery), mirroring the
// teacher's cmd/root.go-plus-subcommand-package layout.
package main

import (
	"fmt"
	"os"

	"github.com/clipdr/studio-engine/internal/logging"
)

func main() {
	logging.Init()

	if err := RootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
