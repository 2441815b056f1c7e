package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mockingbird/internal/domain"
	"mockingbird/internal/service"
	"mockingbird/internal/watch"
)

// reloadFlag records that a reload found an external change. It cannot
// read the design itself since the service emits while holding its lock.
type reloadFlag struct {
	changed atomic.Bool
}

func (f *reloadFlag) Emit(_ context.Context, event string, _ any) {
	if event == service.EventRestored {
		f.changed.Store(true)
	}
}

func newWatchCommand(opts *RootOptions) *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print a summary of the design whenever another process changes it",
		Long: `Watch the sqlite database for changes made by other mockingbird
processes (for example serve-mcp) and print a summary after each one.
Server backends are not supported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()
			return opts.watchDesign(ctx, cmd.OutOrStdout(), debounce)
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before reloading")
	return cmd
}

// watchDesign blocks until ctx is done.
func (o *RootOptions) watchDesign(ctx context.Context, out io.Writer, debounce time.Duration) error {
	flag := &reloadFlag{}
	sess, err := o.openSession(ctx, flag)
	if err != nil {
		return err
	}
	defer sess.Close()
	if sess.backend.Path == "" {
		return NewExitError(ExitCommandError, "watch requires the sqlite storage driver")
	}

	p := o.printer(out)
	if err := p.result(summarize(sess.svc.State())); err != nil {
		return err
	}

	w, err := watch.New(func(path string) {
		if err := sess.svc.Load(ctx); err != nil {
			o.log.Warn("reload design", zap.Error(err))
			return
		}
		if flag.changed.Swap(false) {
			o.log.Debug("design changed on disk", zap.String("path", path))
			_ = p.result(summarize(sess.svc.State()))
		}
	}, debounce, o.log.Named("watch"))
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.WatchDatabase(sess.backend.Path); err != nil {
		return fmt.Errorf("watch database: %w", err)
	}

	<-ctx.Done()
	return nil
}

type designSummary struct {
	ActivePage  string          `json:"activePage"`
	Pages       []pageRow       `json:"pages"`
	Connections int             `json:"connections"`
	Grid        domain.GridSize `json:"grid"`
	Device      string          `json:"device"`
	View        string          `json:"view"`
}

func summarize(st domain.State) (string, designSummary) {
	s := designSummary{
		ActivePage:  st.ActivePageID,
		Pages:       pageRows(st),
		Connections: len(st.Connections),
		Grid:        st.Grid,
		Device:      string(st.Device),
		View:        string(st.View),
	}
	text := fmt.Sprintf("%d pages, %d connections, %dx%d grid, %s, %s view\n%s",
		len(s.Pages), s.Connections, s.Grid.Rows, s.Grid.Cols, s.Device, s.View, formatPages(s.Pages))
	return text, s
}
