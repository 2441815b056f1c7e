package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mockingbird/internal/domain"
)

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List all pages of the design with their component counts"),
	), s.handleListPages)

	// ── create_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("create_page",
		mcp.WithDescription("Create a new page and make it active. It also gets a node on the journey canvas."),
		mcp.WithString("name",
			mcp.Description("Name of the new page (default \"Page N\")"),
		),
	), s.handleCreatePage)

	// ── rename_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_page",
		mcp.WithDescription("Rename a page"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
	), s.handleRenamePage)

	// ── delete_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("Delete a page together with its journey node and every connection touching it. The last page cannot be deleted."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
	), s.handleDeletePage)

	// ── set_active_page ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Set the active page. Tools that accept pageId default to it."),
		mcp.WithString("pageId", mcp.Description("ID of the page to make active"), mcp.Required()),
	), s.handleSetActivePage)

	// ── set_device ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_device",
		mcp.WithDescription("Switch the preview device"),
		mcp.WithString("mode",
			mcp.Description("desktop or mobile"),
			mcp.Enum(string(domain.DeviceDesktop), string(domain.DeviceMobile)),
			mcp.Required(),
		),
	), s.handleSetDevice)

	// ── set_view ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_view",
		mcp.WithDescription("Switch between the page editor and the journey canvas"),
		mcp.WithString("mode",
			mcp.Description("pages or journeys"),
			mcp.Enum(string(domain.ViewPages), string(domain.ViewJourneys)),
			mcp.Required(),
		),
	), s.handleSetView)
}

type pageSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Active     bool   `json:"active"`
	Components int    `json:"components"`
}

func summarizePages(st domain.State) []pageSummary {
	out := make([]pageSummary, len(st.Pages))
	for i, p := range st.Pages {
		out[i] = pageSummary{ID: p.ID, Name: p.Name, Active: p.ID == st.ActivePageID, Components: len(p.Contents)}
	}
	return out
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(summarizePages(s.svc.State()))
}

func (s *Server) handleCreatePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page, err := s.svc.AddPage(ctx, req.GetString("name", ""))
	return outcome(page, err)
}

func (s *Server) handleRenamePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	if err := s.svc.RenamePage(ctx, pageID, req.GetString("name", "")); err != nil {
		return outcome(nil, err)
	}
	return textResult(fmt.Sprintf("Page %s renamed", pageID)), nil
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeletePage(ctx, pageID); err != nil {
		return outcome(nil, err)
	}
	return textResult(fmt.Sprintf("Page %s deleted", pageID)), nil
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	if err := s.svc.SetActivePage(ctx, pageID); err != nil {
		return outcome(nil, err)
	}
	return textResult(fmt.Sprintf("Active page set to %s", pageID)), nil
}

func (s *Server) handleSetDevice(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := requireString(req, "mode")
	if err != nil {
		return nil, err
	}
	if err := s.svc.SetDevice(ctx, domain.DeviceMode(mode)); err != nil {
		return outcome(nil, err)
	}
	return textResult("Device set to " + mode), nil
}

func (s *Server) handleSetView(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	mode, err := requireString(req, "mode")
	if err != nil {
		return nil, err
	}
	if err := s.svc.SetView(ctx, domain.ViewMode(mode)); err != nil {
		return outcome(nil, err)
	}
	return textResult("View set to " + mode), nil
}
