package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mockingbird/internal/domain"
	"mockingbird/internal/grid"
	"mockingbird/internal/journey"
	"mockingbird/internal/service"
)

func newComponentCommand(opts *RootOptions) *cobra.Command {
	var pageID string

	cmd := &cobra.Command{
		Use:     "component",
		Aliases: []string{"c"},
		Short:   "Place and edit components on a page",
	}
	cmd.PersistentFlags().StringVar(&pageID, "page", "", "page to edit (default: active page)")

	cmd.AddCommand(&cobra.Command{
		Use:   "add <type> <row> <col>",
		Short: "Add a component with its default properties",
		Long:  "Add a component of the given type at a cell. Types: " + typeList(),
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := cellArgs(args, 1)
			if err != nil {
				return err
			}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				c, err := svc.AddComponent(cmd.Context(), pageID, domain.ComponentType(args[0]), row, col)
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Added %s %s at (%d, %d)", c.Type, c.ID, row, col), c)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "drop <payload> <row> <col>",
		Short: "Drop a component id (move) or a component type (add) on a cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := cellArgs(args, 1)
			if err != nil {
				return err
			}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				res, err := svc.Drop(cmd.Context(), pageID, args[0], row, col)
				text := fmt.Sprintf("Drop %s: %s", args[0], res.Kind)
				if res.Kind != grid.DropIgnored {
					text = fmt.Sprintf("Drop %s: %s %s at (%d, %d)", args[0], res.Kind, res.Content.ID, row, col)
				}
				return finish(opts.printer(cmd.OutOrStdout()), err, text, res)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "move <component-id> <row> <col>",
		Short: "Move a component to another cell",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := cellArgs(args, 1)
			if err != nil {
				return err
			}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.MoveComponent(cmd.Context(), pageID, args[0], row, col)
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Moved %s to (%d, %d)", args[0], row, col),
					map[string]any{"id": args[0], "position": domain.Position{Row: row, Col: col}})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "resize <component-id> <rows> <cols>",
		Short: "Set a component's span; it is clamped to the grid",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := intArg(args, 1, "rows")
			if err != nil {
				return err
			}
			cols, err := intArg(args, 2, "cols")
			if err != nil {
				return err
			}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				span, err := svc.ResizeComponent(cmd.Context(), pageID, args[0], domain.Span{Rows: rows, Cols: cols})
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Resized %s to %dx%d", args[0], span.Rows, span.Cols), span)
			})
		},
	})

	var replace bool
	propsCmd := &cobra.Command{
		Use:   "props <component-id> <json-object>",
		Short: "Merge (or with --replace, replace) a component's properties",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var props map[string]any
			if err := json.Unmarshal([]byte(args[1]), &props); err != nil {
				return WrapExitError(ExitCommandError, "properties must be a JSON object", err)
			}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				c, err := svc.SetProperties(cmd.Context(), pageID, args[0], props, !replace)
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Updated properties of %s", args[0]), c)
			})
		},
	}
	propsCmd.Flags().BoolVar(&replace, "replace", false, "replace all properties instead of merging")
	cmd.AddCommand(propsCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <component-id>",
		Short: "Delete a component; connections from it are kept",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.DeleteComponent(cmd.Context(), pageID, args[0])
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Deleted %s", args[0]), map[string]string{"id": args[0]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every component from the page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.ClearPage(cmd.Context(), pageID)
				return finish(opts.printer(cmd.OutOrStdout()), err, "Page cleared", nil)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "at <row> <col>",
		Short: "Show the component covering a cell",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, col, err := cellArgs(args, 0)
			if err != nil {
				return err
			}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				c, ok, err := svc.ContentAt(pageID, row, col)
				p := opts.printer(cmd.OutOrStdout())
				if err == nil && !ok {
					return p.result(fmt.Sprintf("Cell (%d, %d) is empty", row, col), nil)
				}
				return finish(p, err, formatComponent(c), c)
			})
		},
	})

	return cmd
}

func typeList() string {
	types := domain.ComponentTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

func formatComponent(c domain.GridContent) string {
	props, _ := json.Marshal(c.Properties)
	return fmt.Sprintf("%s %s at (%d, %d) span %dx%d %s",
		c.Type, c.ID, c.Position.Row, c.Position.Col, c.Span.Rows, c.Span.Cols, props)
}

// ── Grid ────────────────────────────────────────────────────

type gridView struct {
	Grid       domain.GridSize      `json:"grid"`
	PageID     string               `json:"pageId"`
	Components []domain.GridContent `json:"components"`
}

func newGridCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Show or change the grid shared by all pages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Draw the active page's grid",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				st := svc.State()
				page, _ := st.ActivePage()
				view := gridView{Grid: st.Grid, PageID: page.ID, Components: journey.SortedComponents(page)}
				return opts.printer(cmd.OutOrStdout()).result(renderGrid(st.Grid, view.Components), view)
			})
		},
	})

	cmd.AddCommand(newGridDimensionCommand(opts, "rows"))
	cmd.AddCommand(newGridDimensionCommand(opts, "cols"))

	return cmd
}

// newGridDimensionCommand builds "grid rows" or "grid cols". The argument
// is an absolute count, or +/- to step by one.
func newGridDimensionCommand(opts *RootOptions, dim string) *cobra.Command {
	return &cobra.Command{
		Use:   dim + " <n|+|->",
		Short: "Set the number of " + dim + ", or add/remove one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				var (
					size domain.GridSize
					err  error
				)
				switch args[0] {
				case "+", "-":
					step := 1
					if args[0] == "-" {
						step = -1
					}
					if dim == "rows" {
						size, err = svc.StepGrid(cmd.Context(), step, 0)
					} else {
						size, err = svc.StepGrid(cmd.Context(), 0, step)
					}
				default:
					n, perr := intArg(args, 0, dim)
					if perr != nil {
						return perr
					}
					if n < 1 {
						return opts.printer(cmd.OutOrStdout()).rejected(grid.ErrInvalidSize)
					}
					if dim == "rows" {
						size, err = svc.SetGrid(cmd.Context(), n, 0)
					} else {
						size, err = svc.SetGrid(cmd.Context(), 0, n)
					}
				}
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Grid is %dx%d", size.Rows, size.Cols), size)
			})
		},
	}
}

// renderGrid draws one character per cell: '.' when empty, otherwise a
// letter per component followed by a legend.
func renderGrid(size domain.GridSize, comps []domain.GridContent) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	var b strings.Builder
	fmt.Fprintf(&b, "%dx%d grid\n", size.Rows, size.Cols)
	for r := 0; r < size.Rows; r++ {
		for c := 0; c < size.Cols; c++ {
			ch := byte('.')
			for i, comp := range comps {
				if comp.Covers(r, c) {
					ch = '#'
					if i < len(letters) {
						ch = letters[i]
					}
					break
				}
			}
			b.WriteByte(ch)
		}
		b.WriteByte('\n')
	}
	for i, comp := range comps {
		label := "#"
		if i < len(letters) {
			label = string(letters[i])
		}
		fmt.Fprintf(&b, "%s  %s\n", label, formatComponent(comp))
	}
	return strings.TrimRight(b.String(), "\n")
}
