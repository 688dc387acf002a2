// Package commands implements the datadeck CLI.
package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

// Execute runs the root command.
func Execute() error {
	root := &cobra.Command{
		Use:           "datadeck",
		Short:         "Clean tabular data and serve the DataDeck API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline details to stderr")

	root.AddCommand(analyzeCmd(), cleanCmd(), serveCmd())
	return root.Execute()
}

// cliLogger returns a stderr logger, quiet unless --verbose is set.
func cliLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
