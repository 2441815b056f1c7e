package app

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mockingbird/internal/domain"
	"mockingbird/internal/service"
)

type pageRow struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	Components int    `json:"components"`
}

func pageRows(st domain.State) []pageRow {
	out := make([]pageRow, len(st.Pages))
	for i, p := range st.Pages {
		out[i] = pageRow{ID: p.ID, Name: p.Name, Active: p.ID == st.ActivePageID, Components: len(p.Contents)}
	}
	return out
}

func formatPages(rows []pageRow) string {
	var b strings.Builder
	for i, r := range rows {
		marker := " "
		if r.Active {
			marker = "*"
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s  %s  (%d components)", marker, r.ID, r.Name, r.Components)
	}
	return b.String()
}

func newPageCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage pages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List pages; the active one is marked with *",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				rows := pageRows(svc.State())
				return opts.printer(cmd.OutOrStdout()).result(formatPages(rows), rows)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name]",
		Short: "Add a page and make it active",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				page, err := svc.AddPage(cmd.Context(), name)
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Created page %s (%s)", page.ID, page.Name), page)
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename <page-id> <name>",
		Short: "Rename a page",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.RenamePage(cmd.Context(), args[0], args[1])
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Renamed page %s", args[0]), map[string]string{"id": args[0], "name": args[1]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <page-id>",
		Short: "Delete a page, its journey node and its connections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.DeletePage(cmd.Context(), args[0])
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Deleted page %s", args[0]), map[string]string{"id": args[0]})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use <page-id>",
		Short: "Make a page the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.SetActivePage(cmd.Context(), args[0])
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Active page is %s", args[0]), map[string]string{"activePageId": args[0]})
			})
		},
	})

	return cmd
}

func newDeviceCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "device <desktop|mobile>",
		Short:     "Switch the preview device",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.DeviceDesktop), string(domain.DeviceMobile)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.SetDevice(cmd.Context(), domain.DeviceMode(args[0]))
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("Device is %s", args[0]), map[string]string{"device": args[0]})
			})
		},
	}
}

func newViewCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "view <pages|journeys>",
		Short:     "Switch between the page editor and the journey canvas",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(domain.ViewPages), string(domain.ViewJourneys)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withSession(cmd.Context(), func(svc *service.DesignService) error {
				err := svc.SetView(cmd.Context(), domain.ViewMode(args[0]))
				return finish(opts.printer(cmd.OutOrStdout()), err,
					fmt.Sprintf("View is %s", args[0]), map[string]string{"view": args[0]})
			})
		},
	}
}
