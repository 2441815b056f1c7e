package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mockingbird/internal/domain"
	"mockingbird/internal/export"
	"mockingbird/internal/service"
)

// clipboard is swapped in tests.
var clipboard export.Clipboard = export.SystemClipboard{}

func newExportCommand(opts *RootOptions) *cobra.Command {
	var (
		all    bool
		output string
		copyIt bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the design as a document for code generation",
		Long: `Export the active page (or with --all every page) with its grid,
components and journey interactions. Defaults come from the export section
of the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				output = opts.cfg.Export.Format
			}
			format, err := export.ParseFormat(output)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid --output", err)
			}
			scope, err := export.ParseScope(opts.cfg.Export.Scope)
			if err != nil {
				return WrapExitError(ExitCommandError, "invalid export scope", err)
			}
			if all {
				scope = export.ScopeAll
			}

			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				data, err := export.Encode(svc.Export(scope), format)
				if err != nil {
					return err
				}
				if copyIt {
					if err := export.Copy(clipboard, data); err != nil {
						return err
					}
					fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
					return nil
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "export every page instead of the active one")
	cmd.Flags().StringVarP(&output, "output", "o", "", "document encoding (json|yaml)")
	cmd.Flags().BoolVar(&copyIt, "copy", false, "copy the document to the clipboard instead of printing it")

	return cmd
}

// ── History ─────────────────────────────────────────────────

func newUndoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "undo",
		Short: "Restore the design before the last change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				st, err := svc.Undo(cmd.Context())
				return finish(opts.printer(cmd.OutOrStdout()), err, restoredText("Undone", st), st)
			})
		},
	}
}

func newRedoCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "redo",
		Short: "Re-apply the last undone change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				st, err := svc.Redo(cmd.Context())
				return finish(opts.printer(cmd.OutOrStdout()), err, restoredText("Redone", st), st)
			})
		},
	}
}

func restoredText(verb string, st domain.State) string {
	return fmt.Sprintf("%s: %d pages, %d connections", verb, len(st.Pages), len(st.Connections))
}

func newHistoryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the undo history, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				entries, err := svc.History(cmd.Context())
				if err != nil && !errors.Is(err, domain.ErrNoHistory) {
					return err
				}
				text := ""
				for i, e := range entries {
					if i > 0 {
						text += "\n"
					}
					text += fmt.Sprintf("%4d  %s  %s", e.Seq, e.CreatedAt.Format("2006-01-02 15:04:05"), e.Label)
				}
				if text == "" {
					text = "No history"
				}
				// Snapshots are large and not useful on the terminal.
				type row struct {
					Seq   int64  `json:"seq"`
					Label string `json:"label"`
				}
				rows := make([]row, len(entries))
				for i, e := range entries {
					rows[i] = row{Seq: e.Seq, Label: e.Label}
				}
				return opts.printer(cmd.OutOrStdout()).result(text, rows)
			})
		},
	}
}
