package mcpserver

import (
	"context"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"mockingbird/internal/domain"
	"mockingbird/internal/export"
)

func (s *Server) registerHistoryTools() {
	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change to the design"),
	), s.handleUndo)
	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change"),
	), s.handleRedo)

	// ── export ─────────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export",
		mcp.WithDescription("Export the design as a structured document for code generation"),
		mcp.WithString("scope",
			mcp.Description("active (current page and its connections) or all"),
			mcp.Enum(string(export.ScopeActive), string(export.ScopeAll)),
		),
		mcp.WithString("format",
			mcp.Description("json or yaml"),
			mcp.Enum(string(export.FormatJSON), string(export.FormatYAML)),
		),
	), s.handleExport)
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.historyResult(s.svc.Undo(ctx))
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.historyResult(s.svc.Redo(ctx))
}

func (s *Server) historyResult(st domain.State, err error) (*mcp.CallToolResult, error) {
	if errors.Is(err, domain.ErrNoHistory) {
		return textResult("Nothing to restore"), nil
	}
	if err != nil {
		return nil, err
	}
	return jsonResult(summarizePages(st))
}

func (s *Server) handleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	scope := s.exportScope
	if v := req.GetString("scope", ""); v != "" {
		sc, err := export.ParseScope(v)
		if err != nil {
			return nil, err
		}
		scope = sc
	}
	format := s.exportFormat
	if v := req.GetString("format", ""); v != "" {
		f, err := export.ParseFormat(v)
		if err != nil {
			return nil, err
		}
		format = f
	}
	data, err := export.Encode(s.svc.Export(scope), format)
	if err != nil {
		return nil, err
	}
	return textResult(string(data)), nil
}
