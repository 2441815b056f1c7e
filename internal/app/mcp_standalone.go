package app

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mockingbird/internal/export"
	mcpserver "mockingbird/internal/mcp"
	"mockingbird/internal/watch"
)

func newServeMCPCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the design to AI agents over MCP on stdin/stdout",
		Long: `Run a Model Context Protocol server on stdin/stdout. Logs go to stderr.
With a sqlite backend the database file is watched, so edits made by other
mockingbird processes are picked up and announced to connected clients.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.serveMCP(cmd.Context())
		},
	}
}

// serveMCP runs the standalone MCP server until stdin closes or the
// process is interrupted.
func (o *RootOptions) serveMCP(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	notifier := &mcpserver.Notifier{}
	sess, err := o.openSession(ctx, notifier)
	if err != nil {
		return err
	}
	defer sess.Close()

	format, _ := export.ParseFormat(o.cfg.Export.Format)
	scope, _ := export.ParseScope(o.cfg.Export.Scope)
	srv := mcpserver.New(mcpserver.Deps{
		Service:      sess.svc,
		Logger:       o.log.Named("mcp"),
		Name:         o.cfg.MCP.Name,
		Version:      o.cfg.MCP.Version,
		ExportFormat: format,
		ExportScope:  scope,
	})
	notifier.Bind(srv)

	if sess.backend.Path != "" {
		w, err := watch.New(func(string) {
			if err := sess.svc.Load(ctx); err != nil {
				o.log.Warn("reload design", zap.Error(err))
			}
		}, watch.DefaultDebounce, o.log.Named("watch"))
		if err != nil {
			return err
		}
		defer w.Close()
		if err := w.WatchDatabase(sess.backend.Path); err != nil {
			o.log.Warn("watch database", zap.String("path", sess.backend.Path), zap.Error(err))
		}
	}

	o.log.Info("starting standalone MCP server",
		zap.String("driver", o.cfg.Storage.Driver),
		zap.String("name", o.cfg.MCP.Name))
	if err := srv.ServeStdio(); err != nil {
		return WrapExitError(ExitFailure, "MCP server error", err)
	}
	return nil
}
