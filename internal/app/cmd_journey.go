package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mockingbird/internal/domain"
	"mockingbird/internal/export"
	"mockingbird/internal/journey"
	"mockingbird/internal/service"
)

type journeyView struct {
	Nodes        []domain.PageNode    `json:"nodes"`
	Interactions []export.Interaction `json:"interactions"`
}

func newJourneyCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "journey",
		Aliases: []string{"j"},
		Short:   "Arrange page nodes and connect pages into journeys",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "List page nodes and connections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				st := svc.State()
				view := journeyView{
					Nodes:        st.PageNodes,
					Interactions: svc.Export(export.ScopeAll).Interactions,
				}
				return opts.printer(cmd.OutOrStdout()).result(formatJourney(st, view), view)
			})
		},
	})

	var fromComponent, toComponent string
	connectCmd := &cobra.Command{
		Use:   "connect <from-page-id> <to-page-id>",
		Short: "Connect two pages, optionally from or to a component",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			from := domain.Endpoint{PageID: args[0], ComponentID: fromComponent}
			to := domain.Endpoint{PageID: args[1], ComponentID: toComponent}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				c, err := svc.Connect(cmd.Context(), from, to)
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Created connection %s", c.ID), c)
			})
		},
	}
	connectCmd.Flags().StringVar(&fromComponent, "from-component", "", "source component id")
	connectCmd.Flags().StringVar(&toComponent, "to-component", "", "destination component id")
	cmd.AddCommand(connectCmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "disconnect <connection-id>",
		Short: "Delete a connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.DeleteConnection(cmd.Context(), args[0])
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Deleted connection %s", args[0]), map[string]string{"id": args[0]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "move <page-id> <x> <y>",
		Short: "Move a page node on the canvas",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := floatArg(args, 1, "x")
			if err != nil {
				return err
			}
			y, err := floatArg(args, 2, "y")
			if err != nil {
				return err
			}
			pos := domain.Point{X: x, Y: y}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.MoveNode(cmd.Context(), args[0], pos)
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Node %s moved to (%g, %g)", args[0], x, y),
					domain.PageNode{PageID: args[0], Position: pos})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path [connection-id]",
		Short: "Print the drawn path of one or all connections",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				p := opts.printer(cmd.OutOrStdout())
				if len(args) == 0 {
					paths := svc.EdgePaths()
					return p.result(formatPaths(paths), paths)
				}
				path, err := svc.EdgePath(args[0])
				return finish(p, err, formatPaths([]journey.EdgePath{path}), path)
			})
		},
	})

	return cmd
}

func formatJourney(st domain.State, view journeyView) string {
	var b strings.Builder
	b.WriteString("Pages:\n")
	for _, n := range view.Nodes {
		name := n.PageID
		if p, ok := st.Page(n.PageID); ok {
			name = p.Name
		}
		fmt.Fprintf(&b, "  %s  %s  at (%g, %g)\n", n.PageID, name, n.Position.X, n.Position.Y)
	}
	b.WriteString("Connections:")
	if len(view.Interactions) == 0 {
		b.WriteString(" none")
	}
	for _, in := range view.Interactions {
		fmt.Fprintf(&b, "\n  %s  %s -> %s  %s %s", in.ID, endpointLabel(in.From), endpointLabel(in.To), in.Kind, in.Color)
	}
	return b.String()
}

func endpointLabel(e export.Endpoint) string {
	label := e.PageName
	if label == "" {
		label = e.PageID
	}
	if e.ComponentID != "" {
		kind := e.ComponentType
		if kind == "" {
			kind = "?"
		}
		label += "/" + kind + "(" + e.ComponentID + ")"
	}
	if !e.Resolved {
		label += " [missing]"
	}
	return label
}

func formatPaths(paths []journey.EdgePath) string {
	if len(paths) == 0 {
		return "No connections"
	}
	lines := make([]string, len(paths))
	for i, p := range paths {
		lines[i] = fmt.Sprintf("%s %s %s", p.ConnectionID, p.Color, p.SVG)
	}
	return strings.Join(lines, "\n")
}
