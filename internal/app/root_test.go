package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockingbird/internal/config"
	"mockingbird/internal/domain"
	"mockingbird/internal/service"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	for _, path := range [][]string{
		{"page", "list"}, {"page", "add"}, {"page", "rename"}, {"page", "delete"}, {"page", "use"},
		{"component", "add"}, {"component", "drop"}, {"component", "move"}, {"component", "resize"},
		{"component", "props"}, {"component", "delete"}, {"component", "clear"}, {"component", "at"},
		{"grid", "show"}, {"grid", "rows"}, {"grid", "cols"},
		{"device"}, {"view"},
		{"journey", "show"}, {"journey", "connect"}, {"journey", "disconnect"}, {"journey", "move"}, {"journey", "path"},
		{"export"}, {"undo"}, {"redo"}, {"history"}, {"serve-mcp"}, {"watch"},
	} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err, "command %v should exist", path)
		assert.Equal(t, path[len(path)-1], found.Name())
	}
}

func TestRootCommandGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"config", "verbose", "format"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), "flag %s should exist", name)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
	assert.Equal(t, "text", cmd.PersistentFlags().Lookup("format").DefValue)
}

func TestExportFlags(t *testing.T) {
	cmd, _, err := NewRootCommand().Find([]string{"export"})
	require.NoError(t, err)
	for _, name := range []string{"all", "output", "copy"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s should exist", name)
	}
}

// ── Command runs against a temporary database ───────────────

func setupConfig(t *testing.T) string {
	t.Helper()
	for _, key := range []string{"MOCKINGBIRD_DB_DRIVER", "MOCKINGBIRD_DSN", "MOCKINGBIRD_DB_NAME", "MOCKINGBIRD_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage.DSN = filepath.Join(dir, "design.db")
	cfg.Logging.Level = "error"
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, cfg.Save(path))
	return path
}

func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func runJSON(t *testing.T, cfgPath string, v any, args ...string) {
	t.Helper()
	out, err := run(t, cfgPath, append([]string{"--format", "json"}, args...)...)
	require.NoError(t, err, out)
	var resp struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	require.Equal(t, "ok", resp.Status)
	if v != nil {
		require.NoError(t, json.Unmarshal(resp.Data, v))
	}
}

func TestPageCommands(t *testing.T) {
	cfg := setupConfig(t)

	var pages []pageRow
	runJSON(t, cfg, &pages, "page", "list")
	require.Len(t, pages, 1)
	assert.Equal(t, "Page 1", pages[0].Name)
	assert.True(t, pages[0].Active)
	first := pages[0].ID

	var added domain.Page
	runJSON(t, cfg, &added, "page", "add", "Checkout")
	assert.Equal(t, "Checkout", added.Name)

	runJSON(t, cfg, nil, "page", "use", first)
	runJSON(t, cfg, nil, "page", "rename", added.ID, "Payment")

	runJSON(t, cfg, &pages, "page", "list")
	require.Len(t, pages, 2)
	assert.True(t, pages[0].Active)
	assert.Equal(t, "Payment", pages[1].Name)

	out, err := run(t, cfg, "page", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "* "+first+"  Page 1  (0 components)")
}

func TestComponentCommands(t *testing.T) {
	cfg := setupConfig(t)

	var btn domain.GridContent
	runJSON(t, cfg, &btn, "component", "add", "button", "0", "0")
	assert.Equal(t, domain.ComponentButton, btn.Type)
	assert.Equal(t, domain.Span{Rows: 1, Cols: 1}, btn.Span)

	var span domain.Span
	runJSON(t, cfg, &span, "component", "resize", btn.ID, "2", "10")
	assert.Equal(t, domain.Span{Rows: 2, Cols: 8}, span)

	var at domain.GridContent
	runJSON(t, cfg, &at, "component", "at", "1", "5")
	assert.Equal(t, btn.ID, at.ID)

	var updated domain.GridContent
	runJSON(t, cfg, &updated, "component", "props", btn.ID, `{"text":"Pay"}`)
	assert.Equal(t, "Pay", updated.Properties["text"])

	out, err := run(t, cfg, "component", "at", "7", "7")
	require.NoError(t, err)
	assert.Equal(t, "Cell (7, 7) is empty\n", out)

	runJSON(t, cfg, nil, "component", "delete", btn.ID)
	out, err = run(t, cfg, "grid", "show")
	require.NoError(t, err)
	assert.Equal(t, "8x8 grid\n"+
		"........\n........\n........\n........\n"+
		"........\n........\n........\n........\n", out)
}

func TestRejectedCommandExitsWithFailure(t *testing.T) {
	cfg := setupConfig(t)

	_, err := run(t, cfg, "component", "add", "input", "3", "3")
	require.NoError(t, err)

	out, err := run(t, cfg, "component", "add", "card", "3", "3")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.True(t, domain.IsRejected(err))
	assert.Equal(t, "rejected: cell is occupied\n", out)

	_, err = run(t, cfg, "page", "delete", "page-missing")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestBadArgumentsExitWithCommandError(t *testing.T) {
	cfg := setupConfig(t)

	_, err := run(t, cfg, "component", "add", "button", "x", "0")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, cfg, "--format", "xml", "page", "list")
	assert.Equal(t, ExitCommandError, GetExitCode(err))

	_, err = run(t, cfg, "component", "props", "content-1", "not json")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGridCommands(t *testing.T) {
	cfg := setupConfig(t)

	var size domain.GridSize
	runJSON(t, cfg, &size, "grid", "rows", "4")
	assert.Equal(t, domain.GridSize{Rows: 4, Cols: 8}, size)
	runJSON(t, cfg, &size, "grid", "cols", "+")
	assert.Equal(t, domain.GridSize{Rows: 4, Cols: 9}, size)
	runJSON(t, cfg, &size, "grid", "rows", "-")
	assert.Equal(t, domain.GridSize{Rows: 3, Cols: 9}, size)

	_, err := run(t, cfg, "grid", "cols", "0")
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestJourneyCommands(t *testing.T) {
	cfg := setupConfig(t)

	var pages []pageRow
	runJSON(t, cfg, &pages, "page", "list")
	home := pages[0].ID
	var details domain.Page
	runJSON(t, cfg, &details, "page", "add", "Details")
	runJSON(t, cfg, nil, "page", "use", home)
	var btn domain.GridContent
	runJSON(t, cfg, &btn, "component", "add", "button", "0", "0")

	var conn domain.Connection
	runJSON(t, cfg, &conn, "journey", "connect", home, details.ID, "--from-component", btn.ID)
	assert.Equal(t, btn.ID, conn.FromComponentID)
	assert.Equal(t, details.ID, conn.ToPageID)

	out, err := run(t, cfg, "journey", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "Page 1/button("+btn.ID+") -> Details  navigation #3b82f6")

	out, err = run(t, cfg, "journey", "path", conn.ID)
	require.NoError(t, err)
	assert.Contains(t, out, conn.ID+" #3b82f6 M ")

	runJSON(t, cfg, nil, "journey", "move", details.ID, "50", "75")

	// Deleting the destination page cascades to the connection.
	runJSON(t, cfg, nil, "page", "delete", details.ID)
	out, err = run(t, cfg, "journey", "path")
	require.NoError(t, err)
	assert.Equal(t, "No connections\n", out)
}

func TestUndoRedoCommands(t *testing.T) {
	cfg := setupConfig(t)

	out, err := run(t, cfg, "undo")
	require.NoError(t, err)
	assert.Equal(t, "Nothing to restore\n", out)

	runJSON(t, cfg, nil, "page", "add")
	out, err = run(t, cfg, "undo")
	require.NoError(t, err)
	assert.Equal(t, "Undone: 1 pages, 0 connections\n", out)
	out, err = run(t, cfg, "redo")
	require.NoError(t, err)
	assert.Equal(t, "Redone: 2 pages, 0 connections\n", out)

	out, err = run(t, cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "open design")
	assert.Contains(t, out, "add page")
}

type fakeClipboard struct {
	text string
	err  error
}

func (f *fakeClipboard) WriteAll(text string) error {
	f.text = text
	return f.err
}

func TestExportCommand(t *testing.T) {
	cfg := setupConfig(t)
	runJSON(t, cfg, nil, "component", "add", "card", "0", "0")
	runJSON(t, cfg, nil, "page", "add", "Second")

	out, err := run(t, cfg, "export")
	require.NoError(t, err)
	var doc struct {
		Scope string `json:"scope"`
		Pages []struct {
			Name string `json:"name"`
		} `json:"pages"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "active", doc.Scope)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "Second", doc.Pages[0].Name)

	out, err = run(t, cfg, "export", "--all", "--output", "yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "scope: all")
	assert.Contains(t, out, "type: card")

	fake := &fakeClipboard{}
	orig := clipboard
	clipboard = fake
	t.Cleanup(func() { clipboard = orig })

	out, err = run(t, cfg, "export", "--copy")
	require.NoError(t, err)
	assert.Equal(t, "Copied to clipboard\n", out)
	assert.Contains(t, fake.text, `"name": "Second"`)

	fake.err = errors.New("no display")
	_, err = run(t, cfg, "export", "--copy")
	assert.ErrorContains(t, err, "copy to clipboard: no display")

	_, err = run(t, cfg, "export", "--output", "toml")
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("boom")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad")))

	wrapped := WrapExitError(ExitFailure, "outer", errors.New("inner"))
	assert.Equal(t, "outer: inner", wrapped.Error())
}

func TestRenderGrid(t *testing.T) {
	comps := []domain.GridContent{
		{ID: "a", Type: domain.ComponentButton, Position: domain.Position{Row: 0, Col: 0}, Span: domain.Span{Rows: 1, Cols: 2}},
		{ID: "b", Type: domain.ComponentCard, Position: domain.Position{Row: 1, Col: 2}, Span: domain.Span{Rows: 2, Cols: 1}},
	}
	got := renderGrid(domain.GridSize{Rows: 3, Cols: 3}, comps)
	assert.Equal(t, "3x3 grid\n"+
		"AA.\n"+
		"..B\n"+
		"..B\n"+
		"A  button a at (0, 0) span 1x2 null\n"+
		"B  card b at (1, 2) span 2x1 null", got)
}

func TestReloadFlagTracksRestores(t *testing.T) {
	f := &reloadFlag{}
	f.Emit(context.Background(), service.EventChanged, nil)
	assert.False(t, f.changed.Load())
	f.Emit(context.Background(), service.EventRestored, nil)
	assert.True(t, f.changed.Swap(false))
	assert.False(t, f.changed.Load())
}

func TestSummarize(t *testing.T) {
	st := domain.State{
		Pages:        []domain.Page{{ID: "p1", Name: "Home"}, {ID: "p2", Name: "About"}},
		ActivePageID: "p2",
		Connections:  []domain.Connection{{ID: "c1", FromPageID: "p1", ToPageID: "p2"}},
		Grid:         domain.GridSize{Rows: 8, Cols: 8},
		Device:       domain.DeviceMobile,
		View:         domain.ViewJourneys,
	}
	text, s := summarize(st)
	assert.Equal(t, "2 pages, 1 connections, 8x8 grid, mobile, journeys view\n"+
		"  p1  Home  (0 components)\n"+
		"* p2  About  (0 components)", text)
	assert.Equal(t, "p2", s.ActivePage)
	assert.Equal(t, 1, s.Connections)
}
