// Command hidctl enumerates, watches, and exchanges reports with HID
// devices from the command line, exercising the asynchid package's
// enumerate, watch, open, read, write and feature-report operations.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ardnew/asynchid/internal/xlog"
)

var logLevel string

func main() {
	root := &cobra.Command{
		Use:   "hidctl",
		Short: "Inspect and exchange reports with HID devices",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var level slog.Level
			if err := level.UnmarshalText([]byte(logLevel)); err != nil {
				return fmt.Errorf("invalid --log-level %q: %w", logLevel, err)
			}
			xlog.SetLogLevel(level)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newEnumerateCmd(),
		newWatchCmd(),
		newReadCmd(),
		newWriteCmd(),
		newFeatureCmd(),
	)
	bindProfileFlags(root)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
