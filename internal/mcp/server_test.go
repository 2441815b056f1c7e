package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mockingbird/internal/domain"
	"mockingbird/internal/service"
	"mockingbird/internal/storage"
	"mockingbird/internal/workspace"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	ctx := context.Background()
	b, err := storage.Open(ctx, storage.Options{DSN: filepath.Join(t.TempDir(), "mcp.db")})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	notifier := &Notifier{}
	svc := service.NewDesignService(b.State, b.History, notifier, zaptest.NewLogger(t), service.Options{
		Workspace: workspace.Options{IDs: &workspace.SequenceGenerator{}},
	})
	require.NoError(t, svc.Load(ctx))
	s := New(Deps{Service: svc, Logger: zaptest.NewLogger(t)})
	notifier.Bind(s)
	return s
}

func call(t *testing.T, h func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error), args map[string]any) (*mcp.CallToolResult, error) {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return h(context.Background(), req)
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestAddComponentTool(t *testing.T) {
	s := newTestServer(t)

	res, err := call(t, s.handleAddComponent, map[string]any{"type": "button", "row": float64(1), "col": float64(2)})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var c domain.GridContent
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &c))
	assert.Equal(t, "content-1", c.ID)
	assert.Equal(t, domain.Position{Row: 1, Col: 2}, c.Position)
	assert.Equal(t, "Click me", c.Properties["text"])

	res, err = call(t, s.handleAddComponent, map[string]any{"type": "input", "row": float64(1), "col": float64(2)})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "rejected: cell is occupied", text(t, res))

	_, err = call(t, s.handleAddComponent, map[string]any{"type": "input", "row": float64(0)})
	assert.EqualError(t, err, "col is required")
}

func TestAddComponentToolRefusesFractionalCells(t *testing.T) {
	s := newTestServer(t)

	_, err := call(t, s.handleAddComponent, map[string]any{"type": "button", "row": 1.5, "col": float64(0)})
	assert.EqualError(t, err, "row must be a whole number, got 1.5")

	res, err := call(t, s.handleComponentAt, map[string]any{"row": float64(0), "col": float64(0)})
	require.NoError(t, err)
	assert.Equal(t, "Cell (0, 0) is empty", text(t, res))
}

func TestRequireInt(t *testing.T) {
	tests := []struct {
		name    string
		value   any
		want    int
		wantErr string
	}{
		{name: "float", value: float64(7), want: 7},
		{name: "negative", value: float64(-2), want: -2},
		{name: "int", value: 3, want: 3},
		{name: "number", value: json.Number("12"), want: 12},
		{name: "fraction", value: 2.25, wantErr: "n must be a whole number, got 2.25"},
		{name: "huge", value: 1e20, wantErr: "n is out of range: 1e+20"},
		{name: "fractional number", value: json.Number("1.5"), wantErr: "n must be a whole number, got 1.5"},
		{name: "huge number", value: json.Number("99999999999"), wantErr: "n is out of range: 99999999999"},
		{name: "string", value: "4", wantErr: "n must be a number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := mcp.CallToolRequest{}
			req.Params.Arguments = map[string]any{"n": tt.value}
			got, err := requireInt(req, "n")
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComponentAtAndProperties(t *testing.T) {
	s := newTestServer(t)
	_, err := call(t, s.handleAddComponent, map[string]any{"type": "button", "row": float64(0), "col": float64(0)})
	require.NoError(t, err)

	res, err := call(t, s.handleComponentAt, map[string]any{"row": float64(3), "col": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, "Cell (3, 3) is empty", text(t, res))

	res, err = call(t, s.handleUpdateProperties, map[string]any{
		"componentId": "content-1",
		"properties":  `{"text":"Buy now"}`,
	})
	require.NoError(t, err)
	var c domain.GridContent
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &c))
	assert.Equal(t, "Buy now", c.Properties["text"])
	assert.Equal(t, "default", c.Properties["variant"])

	_, err = call(t, s.handleUpdateProperties, map[string]any{"componentId": "content-1", "properties": "[1,2"})
	assert.Error(t, err)
}

func TestSetGridTool(t *testing.T) {
	s := newTestServer(t)

	res, err := call(t, s.handleSetGrid, map[string]any{"rows": float64(4)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rows":4,"cols":8}`, text(t, res))

	res, err = call(t, s.handleSetGrid, map[string]any{"cols": float64(0)})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.True(t, strings.HasPrefix(text(t, res), "rejected: "))

	_, err = call(t, s.handleSetGrid, map[string]any{})
	assert.Error(t, err)
}

func TestJourneyTools(t *testing.T) {
	s := newTestServer(t)
	_, err := call(t, s.handleAddComponent, map[string]any{"type": "button", "row": float64(0), "col": float64(0)})
	require.NoError(t, err)
	_, err = call(t, s.handleCreatePage, map[string]any{"name": "Details"})
	require.NoError(t, err)

	res, err := call(t, s.handleClickComponent, map[string]any{"pageId": "page-1", "componentId": "content-1"})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"kind": "began"`)

	res, err = call(t, s.handleClickPageHeader, map[string]any{"pageId": "page-1"})
	require.NoError(t, err)
	assert.True(t, res.IsError, "same page header must be rejected")

	res, err = call(t, s.handleClickPageHeader, map[string]any{"pageId": "page-2"})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"kind": "completed"`)

	res, err = call(t, s.handleListConnections, nil)
	require.NoError(t, err)
	var conns []connectionSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &conns))
	require.Len(t, conns, 1)
	assert.Equal(t, "conn-1", conns[0].ID)
	assert.Equal(t, "navigation", conns[0].Kind)
	assert.Equal(t, "#3b82f6", conns[0].Color)

	res, err = call(t, s.handleEdgePath, map[string]any{"connectionId": "conn-1"})
	require.NoError(t, err)
	assert.Contains(t, text(t, res), `"svg": "M `)

	res, err = call(t, s.handleEdgePath, map[string]any{"connectionId": "conn-9"})
	require.NoError(t, err)
	assert.Equal(t, "rejected: connection not found", text(t, res))

	res, err = call(t, s.handleConnect, map[string]any{"fromPageId": "page-2", "toPageId": "page-2"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = call(t, s.handleMovePageNode, map[string]any{"pageId": "page-2", "x": float64(50), "y": float64(75)})
	require.NoError(t, err)
	assert.Equal(t, "Node page-2 moved to (50, 75)", text(t, res))

	_, err = call(t, s.handleDeleteConnection, map[string]any{"connectionId": "conn-1"})
	require.NoError(t, err)
	assert.Empty(t, s.svc.State().Connections)
}

func TestUndoTool(t *testing.T) {
	s := newTestServer(t)

	res, err := call(t, s.handleUndo, nil)
	require.NoError(t, err)
	assert.Equal(t, "Nothing to restore", text(t, res))

	_, err = call(t, s.handleCreatePage, nil)
	require.NoError(t, err)
	require.Len(t, s.svc.State().Pages, 2)

	_, err = call(t, s.handleUndo, nil)
	require.NoError(t, err)
	assert.Len(t, s.svc.State().Pages, 1)

	_, err = call(t, s.handleRedo, nil)
	require.NoError(t, err)
	assert.Len(t, s.svc.State().Pages, 2)
}

func TestExportTool(t *testing.T) {
	s := newTestServer(t)
	_, err := call(t, s.handleAddComponent, map[string]any{"type": "card", "row": float64(0), "col": float64(0)})
	require.NoError(t, err)

	res, err := call(t, s.handleExport, map[string]any{"format": "yaml", "scope": "all"})
	require.NoError(t, err)
	out := text(t, res)
	assert.Contains(t, out, "scope: all")
	assert.Contains(t, out, "type: card")

	_, err = call(t, s.handleExport, map[string]any{"format": "toml"})
	assert.Error(t, err)
}

func TestPageTools(t *testing.T) {
	s := newTestServer(t)

	res, err := call(t, s.handleDeletePage, map[string]any{"pageId": "page-1"})
	require.NoError(t, err)
	assert.Equal(t, "rejected: cannot delete the last page", text(t, res))

	_, err = call(t, s.handleRenamePage, map[string]any{"pageId": "page-1", "name": "Landing"})
	require.NoError(t, err)
	res, err = call(t, s.handleRenamePage, map[string]any{"pageId": "page-1", "name": "  "})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	_, err = call(t, s.handleSetDevice, map[string]any{"mode": "mobile"})
	require.NoError(t, err)
	res, err = call(t, s.handleSetView, map[string]any{"mode": "sideways"})
	require.NoError(t, err)
	assert.True(t, res.IsError)

	res, err = call(t, s.handleListPages, nil)
	require.NoError(t, err)
	var pages []pageSummary
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &pages))
	assert.Equal(t, []pageSummary{{ID: "page-1", Name: "Landing", Active: true}}, pages)
	assert.Equal(t, domain.DeviceMobile, s.svc.State().Device)
}

func TestResources(t *testing.T) {
	s := newTestServer(t)
	_, err := call(t, s.handleAddComponent, map[string]any{"type": "badge", "row": float64(2), "col": float64(0)})
	require.NoError(t, err)
	_, err = call(t, s.handleAddComponent, map[string]any{"type": "alert", "row": float64(0), "col": float64(1)})
	require.NoError(t, err)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = "wireframe://page/page-1/components"
	contents, err := s.handlePageComponentsResource(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, contents, 1)
	var comps []domain.GridContent
	require.NoError(t, json.Unmarshal([]byte(contents[0].(mcp.TextResourceContents).Text), &comps))
	require.Len(t, comps, 2)
	assert.Equal(t, domain.ComponentAlert, comps[0].Type)

	req.Params.URI = "wireframe://page/nope/components"
	_, err = s.handlePageComponentsResource(context.Background(), req)
	assert.ErrorIs(t, err, workspace.ErrPageNotFound)

	contents, err = s.handleJourneyResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, `"pageId": "page-1"`)
}

func TestExtractPageIDFromURI(t *testing.T) {
	assert.Equal(t, "abc-123", extractPageIDFromURI("wireframe://page/abc-123/components"))
	assert.Empty(t, extractPageIDFromURI("wireframe://pages"))
	assert.Empty(t, extractPageIDFromURI("notes://page/abc/blocks"))
}

func TestNotifierUnbound(t *testing.T) {
	n := &Notifier{}
	assert.NotPanics(t, func() { n.Emit(context.Background(), service.EventChanged, nil) })
}
