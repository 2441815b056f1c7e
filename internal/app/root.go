// Package app wires configuration, storage and the design service into the
// mockingbird command line.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mockingbird/internal/config"
	"mockingbird/internal/logging"
)

// RootOptions holds global flags and what PersistentPreRunE builds from
// them.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
	Format     string

	cfg *config.Config
	log *zap.Logger
}

// NewRootCommand creates the root command for the mockingbird CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "mockingbird",
		Short: "Wireframe pages on a grid and connect them into journeys",
		Long: `mockingbird edits a wireframe design: pages of placeholder components
laid out on a shared grid, and a journey graph of connections between pages.

Every command loads the design from storage, applies one change and saves it
with an undo entry. serve-mcp exposes the same operations to AI agents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", config.DefaultPath(), "path to config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")

	cmd.AddCommand(
		newPageCommand(opts),
		newComponentCommand(opts),
		newGridCommand(opts),
		newDeviceCommand(opts),
		newViewCommand(opts),
		newJourneyCommand(opts),
		newExportCommand(opts),
		newUndoCommand(opts),
		newRedoCommand(opts),
		newHistoryCommand(opts),
		newServeMCPCommand(opts),
		newWatchCommand(opts),
	)

	return cmd
}

func (o *RootOptions) setup() error {
	if o.Format != "text" && o.Format != "json" {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown output format %q", o.Format))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if err := cfg.Validate(); err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	log, err := logging.New(level, cfg.Logging.Format)
	if err != nil {
		return WrapExitError(ExitCommandError, "create logger", err)
	}

	o.cfg = cfg
	o.log = log
	return nil
}

func (o *RootOptions) printer(w io.Writer) printer {
	return printer{format: o.Format, w: w}
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return GetExitCode(err)
	}
	return ExitSuccess
}
