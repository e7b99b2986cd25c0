package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/faultline/internal/errors"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┬ ┬┬ ┌┬┐┬  ┬┌┐┌┌─┐
  ├┤ ├─┤│ ││  │ │  ││││├┤
  └  ┴ ┴└─┘┴─┘┴ ┴─┘┴┘└┘└─┘
`

func main() {
	if err := rootCmd().Execute(); err != nil {
		errors.PrintError(commandError(err))
		os.Exit(1)
	}
}

// commandError gives errors without a registered code the generic F302 code
// so every failure prints with a category and a doc link.
func commandError(err error) *errors.FaultError {
	return errors.FromError(err, "F302")
}

func rootCmd() *cobra.Command {
	var (
		verbose bool
		noColor bool
	)

	root := &cobra.Command{
		Use:   "faultline",
		Short: "Error propagation for reactive component trees",
		Long: `faultline routes failures raised by component callbacks up the
component tree to capture hooks, a global handler, and finally a
host diagnostic channel.

  • Capture hooks run nearest ancestor first
  • Deferred failures are delivered exactly once
  • Dependency tracking is suspended while errors are handled
  • Browser overlay, Prometheus metrics and S3 archive`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(newLogger(cmd.ErrOrStderr(), verbose))
			if noColor || os.Getenv("NO_COLOR") != "" {
				errors.DisableColors()
			} else {
				errors.EnableColors()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored error output (also set by NO_COLOR)")

	root.AddCommand(
		demoCmd(),
		configCmd(),
		explainCmd(),
		versionCmd(),
	)
	return root
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// printBanner prints the ASCII art banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

// warn prints a warning message.
func warn(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[33m⚠\033[0m %s\n", fmt.Sprintf(format, args...))
}

// errorMsg prints an error message.
func errorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[31m✗\033[0m %s\n", fmt.Sprintf(format, args...))
}
