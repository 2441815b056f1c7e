package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"mockingbird/internal/domain"
	"mockingbird/internal/export"
	"mockingbird/internal/journey"
)

func (s *Server) registerJourneyTools() {
	// ── move_page_node ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_page_node",
		mcp.WithDescription("Move a page's card on the journey canvas"),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
		mcp.WithNumber("x", mcp.Description("Canvas X of the card's top-left corner"), mcp.Required()),
		mcp.WithNumber("y", mcp.Description("Canvas Y of the card's top-left corner"), mcp.Required()),
	), s.handleMovePageNode)

	// ── connect ────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("connect",
		mcp.WithDescription("Create a journey connection. Omit a componentId to target the page itself. Both endpoints on one page make a UI interaction."),
		mcp.WithString("fromPageId", mcp.Description("Source page"), mcp.Required()),
		mcp.WithString("fromComponentId", mcp.Description("Source component (optional)")),
		mcp.WithString("toPageId", mcp.Description("Destination page"), mcp.Required()),
		mcp.WithString("toComponentId", mcp.Description("Destination component (optional)")),
	), s.handleConnect)

	// ── click_component ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("click_component",
		mcp.WithDescription("Click a component row on the journey canvas. Starts a connection or, depending on configuration, completes one."),
		mcp.WithString("pageId", mcp.Description("Page of the component"), mcp.Required()),
		mcp.WithString("componentId", mcp.Description("ID of the component"), mcp.Required()),
	), s.handleClickComponent)

	// ── click_page_header ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("click_page_header",
		mcp.WithDescription("Click a page card header. Completes a pending connection onto that page."),
		mcp.WithString("pageId", mcp.Description("ID of the page"), mcp.Required()),
	), s.handleClickPageHeader)

	// ── cancel_connect ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("cancel_connect",
		mcp.WithDescription("Click empty canvas, cancelling a pending connection"),
	), s.handleCancelConnect)

	// ── delete_connection ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_connection",
		mcp.WithDescription("Delete a journey connection"),
		mcp.WithString("connectionId", mcp.Description("ID of the connection"), mcp.Required()),
	), s.handleDeleteConnection)

	// ── list_connections ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_connections",
		mcp.WithDescription("List journey connections with their colors and kinds"),
	), s.handleListConnections)

	// ── edge_path ──────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("edge_path",
		mcp.WithDescription("Compute the drawn path of a connection"),
		mcp.WithString("connectionId", mcp.Description("ID of the connection"), mcp.Required()),
	), s.handleEdgePath)
}

func (s *Server) handleMovePageNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	pos := domain.Point{X: req.GetFloat("x", 0), Y: req.GetFloat("y", 0)}
	if err := s.svc.MoveNode(ctx, pageID, pos); err != nil {
		return outcome(nil, err)
	}
	return textResult(fmt.Sprintf("Node %s moved to (%g, %g)", pageID, pos.X, pos.Y)), nil
}

func (s *Server) handleConnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fromPage, err := requireString(req, "fromPageId")
	if err != nil {
		return nil, err
	}
	toPage, err := requireString(req, "toPageId")
	if err != nil {
		return nil, err
	}
	c, err := s.svc.Connect(ctx,
		domain.Endpoint{PageID: fromPage, ComponentID: req.GetString("fromComponentId", "")},
		domain.Endpoint{PageID: toPage, ComponentID: req.GetString("toComponentId", "")})
	return outcome(c, err)
}

func (s *Server) handleClickComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	id, err := requireString(req, "componentId")
	if err != nil {
		return nil, err
	}
	out, err := s.svc.ClickComponent(ctx, pageID, id)
	return outcome(out, err)
}

func (s *Server) handleClickPageHeader(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := requireString(req, "pageId")
	if err != nil {
		return nil, err
	}
	out, err := s.svc.ClickPageHeader(ctx, pageID)
	return outcome(out, err)
}

func (s *Server) handleCancelConnect(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.ClickCanvas(ctx))
}

func (s *Server) handleDeleteConnection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "connectionId")
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeleteConnection(ctx, id); err != nil {
		return outcome(nil, err)
	}
	return textResult(fmt.Sprintf("Connection %s deleted", id)), nil
}

type connectionSummary struct {
	domain.Connection
	Kind  string `json:"kind"`
	Color string `json:"color"`
}

func summarizeConnections(st domain.State) []connectionSummary {
	out := make([]connectionSummary, len(st.Connections))
	for i, c := range st.Connections {
		kind := export.KindNavigation
		if c.SamePage() {
			kind = export.KindUIInteraction
		}
		out[i] = connectionSummary{Connection: c, Kind: kind, Color: journey.ColorFor(i)}
	}
	return out
}

func (s *Server) handleListConnections(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(summarizeConnections(s.svc.State()))
}

func (s *Server) handleEdgePath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "connectionId")
	if err != nil {
		return nil, err
	}
	p, err := s.svc.EdgePath(id)
	return outcome(p, err)
}
