package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "posterbox",
		Short: "Image acquisition widget server",
		Long: `Posterbox serves the poster acquisition widget: a drop zone,
clipboard paste target and URL field feeding a shared image store.

The serve command hosts the widget demo page, the image store HTTP
endpoints and a WebSocket channel for host events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
