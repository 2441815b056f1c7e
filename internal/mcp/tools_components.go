package mcpserver

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"mockingbird/internal/domain"
	"mockingbird/internal/grid"
)

func (s *Server) registerComponentTools() {
	pageArg := mcp.WithString("pageId", mcp.Description("ID of the page (defaults to the active page)"))
	types := make([]string, 0, len(domain.ComponentTypes()))
	for _, t := range domain.ComponentTypes() {
		types = append(types, string(t))
	}

	// ── add_component ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_component",
		mcp.WithDescription("Place a 1x1 component with default properties on an empty cell"),
		pageArg,
		mcp.WithString("type",
			mcp.Description("Component type: "+strings.Join(types, ", ")),
			mcp.Enum(types...),
			mcp.Required(),
		),
		mcp.WithNumber("row", mcp.Description("Zero-based row"), mcp.Required()),
		mcp.WithNumber("col", mcp.Description("Zero-based column"), mcp.Required()),
	), s.handleAddComponent)

	// ── drop_payload ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("drop_payload",
		mcp.WithDescription("Simulate a drag-and-drop onto a cell. An existing component id moves it; a component type adds one; anything else is ignored."),
		pageArg,
		mcp.WithString("payload", mcp.Description("Component id or component type"), mcp.Required()),
		mcp.WithNumber("row", mcp.Description("Zero-based row"), mcp.Required()),
		mcp.WithNumber("col", mcp.Description("Zero-based column"), mcp.Required()),
	), s.handleDropPayload)

	// ── move_component ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_component",
		mcp.WithDescription("Move a component so its top-left cell is (row, col)"),
		pageArg,
		mcp.WithString("componentId", mcp.Description("ID of the component"), mcp.Required()),
		mcp.WithNumber("row", mcp.Description("Zero-based row"), mcp.Required()),
		mcp.WithNumber("col", mcp.Description("Zero-based column"), mcp.Required()),
	), s.handleMoveComponent)

	// ── resize_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("resize_component",
		mcp.WithDescription("Set a component's span. The span is clamped to the grid; the applied span is returned."),
		pageArg,
		mcp.WithString("componentId", mcp.Description("ID of the component"), mcp.Required()),
		mcp.WithNumber("rowSpan", mcp.Description("Rows covered"), mcp.Required()),
		mcp.WithNumber("colSpan", mcp.Description("Columns covered"), mcp.Required()),
	), s.handleResizeComponent)

	// ── update_properties ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_properties",
		mcp.WithDescription("Update a component's display properties"),
		pageArg,
		mcp.WithString("componentId", mcp.Description("ID of the component"), mcp.Required()),
		mcp.WithString("properties", mcp.Description("JSON object of properties"), mcp.Required()),
		mcp.WithBoolean("merge", mcp.Description("Merge into existing properties instead of replacing them (default true)")),
	), s.handleUpdateProperties)

	// ── delete_component ───────────────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_component",
		mcp.WithDescription("Remove a component. Journey connections that reference it are kept."),
		pageArg,
		mcp.WithString("componentId", mcp.Description("ID of the component"), mcp.Required()),
	), s.handleDeleteComponent)

	// ── clear_page ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_page",
		mcp.WithDescription("Remove every component from a page"),
		pageArg,
	), s.handleClearPage)

	// ── component_at ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("component_at",
		mcp.WithDescription("Find the component covering a cell"),
		pageArg,
		mcp.WithNumber("row", mcp.Description("Zero-based row"), mcp.Required()),
		mcp.WithNumber("col", mcp.Description("Zero-based column"), mcp.Required()),
	), s.handleComponentAt)

	// ── set_grid ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_grid",
		mcp.WithDescription("Change the grid dimensions shared by all pages. Existing components are not clamped."),
		mcp.WithNumber("rows", mcp.Description("Row count (omit to keep)")),
		mcp.WithNumber("cols", mcp.Description("Column count (omit to keep)")),
	), s.handleSetGrid)
}

func cell(req mcp.CallToolRequest) (int, int, error) {
	row, err := requireInt(req, "row")
	if err != nil {
		return 0, 0, err
	}
	col, err := requireInt(req, "col")
	if err != nil {
		return 0, 0, err
	}
	return row, col, nil
}

func (s *Server) handleAddComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	t, err := requireString(req, "type")
	if err != nil {
		return nil, err
	}
	row, col, err := cell(req)
	if err != nil {
		return nil, err
	}
	c, err := s.svc.AddComponent(ctx, req.GetString("pageId", ""), domain.ComponentType(t), row, col)
	return outcome(c, err)
}

func (s *Server) handleDropPayload(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	payload, err := requireString(req, "payload")
	if err != nil {
		return nil, err
	}
	row, col, err := cell(req)
	if err != nil {
		return nil, err
	}
	res, err := s.svc.Drop(ctx, req.GetString("pageId", ""), payload, row, col)
	return outcome(res, err)
}

func (s *Server) handleMoveComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "componentId")
	if err != nil {
		return nil, err
	}
	row, col, err := cell(req)
	if err != nil {
		return nil, err
	}
	if err := s.svc.MoveComponent(ctx, req.GetString("pageId", ""), id, row, col); err != nil {
		return outcome(nil, err)
	}
	return textResult(fmt.Sprintf("Component %s moved to (%d, %d)", id, row, col)), nil
}

func (s *Server) handleResizeComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "componentId")
	if err != nil {
		return nil, err
	}
	rows, err := requireInt(req, "rowSpan")
	if err != nil {
		return nil, err
	}
	cols, err := requireInt(req, "colSpan")
	if err != nil {
		return nil, err
	}
	span, err := s.svc.ResizeComponent(ctx, req.GetString("pageId", ""), id, domain.Span{Rows: rows, Cols: cols})
	return outcome(span, err)
}

func (s *Server) handleUpdateProperties(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "componentId")
	if err != nil {
		return nil, err
	}
	raw, err := requireString(req, "properties")
	if err != nil {
		return nil, err
	}
	var props map[string]any
	if err := parseJSON(raw, &props); err != nil {
		return nil, fmt.Errorf("properties must be a JSON object: %w", err)
	}
	c, err := s.svc.SetProperties(ctx, req.GetString("pageId", ""), id, props, req.GetBool("merge", true))
	return outcome(c, err)
}

func (s *Server) handleDeleteComponent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireString(req, "componentId")
	if err != nil {
		return nil, err
	}
	if err := s.svc.DeleteComponent(ctx, req.GetString("pageId", ""), id); err != nil {
		return outcome(nil, err)
	}
	return textResult(fmt.Sprintf("Component %s deleted", id)), nil
}

func (s *Server) handleClearPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.svc.ClearPage(ctx, req.GetString("pageId", "")); err != nil {
		return outcome(nil, err)
	}
	return textResult("Page cleared"), nil
}

func (s *Server) handleComponentAt(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	row, col, err := cell(req)
	if err != nil {
		return nil, err
	}
	c, ok, err := s.svc.ContentAt(req.GetString("pageId", ""), row, col)
	if err != nil {
		return outcome(nil, err)
	}
	if !ok {
		return textResult(fmt.Sprintf("Cell (%d, %d) is empty", row, col)), nil
	}
	return jsonResult(c)
}

func (s *Server) handleSetGrid(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	var rows, cols int
	var err error
	if _, ok := args["rows"]; ok {
		if rows, err = requireInt(req, "rows"); err != nil {
			return nil, err
		}
	}
	if _, ok := args["cols"]; ok {
		if cols, err = requireInt(req, "cols"); err != nil {
			return nil, err
		}
	}
	if _, ok := args["rows"]; ok && rows < 1 {
		return rejectedResult(grid.ErrInvalidSize), nil
	}
	if _, ok := args["cols"]; ok && cols < 1 {
		return rejectedResult(grid.ErrInvalidSize), nil
	}
	if rows == 0 && cols == 0 {
		return nil, fmt.Errorf("rows or cols is required")
	}
	size, err := s.svc.SetGrid(ctx, rows, cols)
	return outcome(size, err)
}
