package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"mockingbird/internal/domain"
	"mockingbird/internal/export"
	"mockingbird/internal/grid"
	"mockingbird/internal/journey"
	"mockingbird/internal/service"
	"mockingbird/internal/storage"
	"mockingbird/internal/workspace"
)

// ─────────────────────────────────────────────────────────────
// helpers
// ─────────────────────────────────────────────────────────────

type fixture struct {
	backend *storage.Backend
	emitter *service.MockEmitter
	svc     *service.DesignService
	path    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return openFixture(t, filepath.Join(t.TempDir(), "design.db"))
}

func openFixture(t *testing.T, path string) *fixture {
	t.Helper()
	ctx := context.Background()
	b, err := storage.Open(ctx, storage.Options{Driver: storage.DriverSQLite, DSN: path})
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	em := &service.MockEmitter{}
	svc := service.NewDesignService(b.State, b.History, em, zaptest.NewLogger(t), service.Options{
		Workspace: workspace.Options{IDs: &workspace.SequenceGenerator{}},
	})
	require.NoError(t, svc.Load(ctx))
	return &fixture{backend: b, emitter: em, svc: svc, path: path}
}

func (f *fixture) labels(t *testing.T) []string {
	t.Helper()
	entries, err := f.svc.History(context.Background())
	require.NoError(t, err)
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

// ─────────────────────────────────────────────────────────────
// MockEmitter tests
// ─────────────────────────────────────────────────────────────

func TestMockEmitter_RecordsEvents(t *testing.T) {
	m := &service.MockEmitter{}
	ctx := context.Background()

	m.Emit(ctx, "test:event", map[string]string{"foo": "bar"})
	m.Emit(ctx, "test:event2", nil)

	require.Len(t, m.Events, 2)
	assert.Equal(t, []string{"test:event", "test:event2"}, m.Names())
	assert.Nil(t, m.Events[1].Data)
}

func TestMultiEmitter(t *testing.T) {
	a, b := &service.MockEmitter{}, &service.MockEmitter{}
	service.MultiEmitter{a, b}.Emit(context.Background(), "x", 1)
	assert.Equal(t, []string{"x"}, a.Names())
	assert.Equal(t, []string{"x"}, b.Names())
}

// ─────────────────────────────────────────────────────────────
// DesignService tests
// ─────────────────────────────────────────────────────────────

func TestLoadSeedsEmptyStorage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	s := f.svc.State()
	require.Len(t, s.Pages, 1)
	assert.Equal(t, "Page 1", s.Pages[0].Name)
	assert.Equal(t, []string{"open design"}, f.labels(t))

	v, err := f.backend.State.Get(ctx, workspace.KeyRows)
	require.NoError(t, err)
	assert.Equal(t, "8", v)
	assert.Empty(t, f.emitter.Events)
}

func TestCommandPersistsAndPushesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddComponent(ctx, "", domain.ComponentButton, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"open design", "add component"}, f.labels(t))
	assert.Equal(t, []string{service.EventChanged}, f.emitter.Names())

	// A second service on the same database sees the component and does
	// not record another history entry.
	g := openFixture(t, f.path)
	got, ok, err := g.svc.ContentAt("", 2, 3)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, "Click me", got.Properties["text"])
	assert.Equal(t, []string{"open design", "add component"}, g.labels(t))
}

func TestRejectedCommandChangesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddComponent(ctx, "", domain.ComponentButton, 0, 0)
	require.NoError(t, err)
	_, err = f.svc.AddComponent(ctx, "", domain.ComponentInput, 0, 0)
	assert.ErrorIs(t, err, grid.ErrCellOccupied)
	assert.True(t, domain.IsRejected(err))

	_, err = f.svc.AddComponent(ctx, "", domain.ComponentType("widget"), 1, 1)
	assert.ErrorIs(t, err, grid.ErrUnknownType)

	assert.Len(t, f.labels(t), 2)
	assert.Len(t, f.emitter.Events, 1)
}

func TestNoOpCommandSkipsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.DeleteComponent(ctx, "", "content-404"))
	require.NoError(t, f.svc.DeleteConnection(ctx, "conn-404"))
	require.NoError(t, f.svc.ClearPage(ctx, ""))
	assert.Equal(t, []string{"open design"}, f.labels(t))
}

func TestUndoRedo(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Undo(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	_, err = f.svc.AddComponent(ctx, "", domain.ComponentCard, 0, 0)
	require.NoError(t, err)
	page, err := f.svc.AddPage(ctx, "Checkout")
	require.NoError(t, err)

	s, err := f.svc.Undo(ctx)
	require.NoError(t, err)
	require.Len(t, s.Pages, 1)
	assert.Len(t, s.Pages[0].Contents, 1)

	s, err = f.svc.Undo(ctx)
	require.NoError(t, err)
	assert.Empty(t, s.Pages[0].Contents)

	s, err = f.svc.Redo(ctx)
	require.NoError(t, err)
	assert.Len(t, s.Pages[0].Contents, 1)
	s, err = f.svc.Redo(ctx)
	require.NoError(t, err)
	require.Len(t, s.Pages, 2)
	assert.Equal(t, page.ID, s.Pages[1].ID)

	_, err = f.svc.Redo(ctx)
	assert.ErrorIs(t, err, domain.ErrNoHistory)

	// Restores are written through to storage.
	g := openFixture(t, f.path)
	assert.Len(t, g.svc.State().Pages, 2)
}

func TestExternalChangeIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.backend.State.SetMany(ctx, map[string]string{workspace.KeyRows: "5"}))
	require.NoError(t, f.svc.Load(ctx))

	assert.Equal(t, 5, f.svc.State().Grid.Rows)
	assert.Equal(t, []string{"open design", "external change"}, f.labels(t))
	assert.Equal(t, []string{service.EventRestored}, f.emitter.Names())
}

func TestReloadSeesChangesFromAnotherService(t *testing.T) {
	writer := newFixture(t)
	reader := openFixture(t, writer.path)
	ctx := context.Background()

	_, err := writer.svc.AddComponent(ctx, "", domain.ComponentButton, 2, 3)
	require.NoError(t, err)

	require.NoError(t, reader.svc.Load(ctx))
	page, ok := reader.svc.State().ActivePage()
	require.True(t, ok)
	require.Len(t, page.Contents, 1)
	assert.Equal(t, domain.Position{Row: 2, Col: 3}, page.Contents[0].Position)
	assert.Equal(t, []string{service.EventRestored}, reader.emitter.Names())

	// The writer already recorded the change, so the reader adds no entry.
	assert.Equal(t, []string{"open design", "add component"}, reader.labels(t))

	// Nothing new on disk: no event.
	require.NoError(t, reader.svc.Load(ctx))
	assert.Len(t, reader.emitter.Names(), 1)
}

func TestReloadOfUnchangedStorageKeepsPendingConnection(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.svc.State().ActivePageID

	btn, err := f.svc.AddComponent(ctx, home, domain.ComponentButton, 0, 0)
	require.NoError(t, err)
	next, err := f.svc.AddPage(ctx, "Next")
	require.NoError(t, err)
	_, err = f.svc.ClickComponent(ctx, home, btn.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Load(ctx))
	pending, ok := f.svc.PendingConnection()
	require.True(t, ok)
	assert.Equal(t, btn.ID, pending.ComponentID)

	out, err := f.svc.ClickPageHeader(ctx, next.ID)
	require.NoError(t, err)
	assert.Equal(t, journey.OutcomeCompleted, out.Kind)
	assert.NotContains(t, f.emitter.Names(), service.EventRestored)
}

func TestReloadOfUnchangedStorageKeepsResizeGesture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddComponent(ctx, "", domain.ComponentCard, 0, 0)
	require.NoError(t, err)
	require.NoError(t, f.svc.BeginResize("", c.ID, grid.DirEast, domain.Point{X: 0, Y: 0}))

	require.NoError(t, f.svc.Load(ctx))
	span, err := f.svc.ResizeTo(domain.Point{X: 216, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, domain.Span{Rows: 1, Cols: 3}, span)
	require.NoError(t, f.svc.EndResize(ctx))
}

func TestCorruptKeyFallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.AddComponent(ctx, "", domain.ComponentButton, 0, 0)
	require.NoError(t, err)

	require.NoError(t, f.backend.State.SetMany(ctx, map[string]string{workspace.KeyPageNodes: "{not json"}))
	require.NoError(t, f.svc.Load(ctx))

	s := f.svc.State()
	require.Len(t, s.Pages[0].Contents, 1)
	require.Len(t, s.PageNodes, 1)
	assert.Equal(t, journey.DefaultOrigin, s.PageNodes[0].Position)
}

func TestResizeGestureSavesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddComponent(ctx, "", domain.ComponentTable, 0, 0)
	require.NoError(t, err)

	require.NoError(t, f.svc.BeginResize("", c.ID, grid.DirSouthEast, domain.Point{X: 100, Y: 100}))
	span, err := f.svc.ResizeTo(domain.Point{X: 210, Y: 100})
	require.NoError(t, err)
	assert.Equal(t, domain.Span{Rows: 1, Cols: 2}, span)
	span, err = f.svc.ResizeTo(domain.Point{X: 320, Y: 210})
	require.NoError(t, err)
	assert.Equal(t, domain.Span{Rows: 2, Cols: 3}, span)
	require.NoError(t, f.svc.EndResize(ctx))

	assert.Equal(t, []string{"open design", "add component", "resize component"}, f.labels(t))
	assert.ErrorIs(t, f.svc.EndResize(ctx), workspace.ErrNoGesture)
}

func TestNodeDragSavesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pageID := f.svc.State().ActivePageID

	require.NoError(t, f.svc.BeginNodeDrag(pageID, domain.Point{X: 110, Y: 120}))
	_, err := f.svc.DragNodeTo(domain.Point{X: 200, Y: 200})
	require.NoError(t, err)
	pos, err := f.svc.DragNodeTo(domain.Point{X: 310, Y: 220})
	require.NoError(t, err)
	assert.Equal(t, domain.Point{X: 300, Y: 200}, pos)
	require.NoError(t, f.svc.EndNodeDrag(ctx))

	assert.Equal(t, []string{"open design", "move page node"}, f.labels(t))
}

func TestConnectGesture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.svc.State().ActivePageID

	btn, err := f.svc.AddComponent(ctx, home, domain.ComponentButton, 0, 0)
	require.NoError(t, err)
	next, err := f.svc.AddPage(ctx, "Next")
	require.NoError(t, err)

	out, err := f.svc.ClickComponent(ctx, home, btn.ID)
	require.NoError(t, err)
	assert.Equal(t, journey.OutcomeBegan, out.Kind)
	pending, ok := f.svc.PendingConnection()
	require.True(t, ok)
	assert.Equal(t, btn.ID, pending.ComponentID)

	out, err = f.svc.ClickPageHeader(ctx, next.ID)
	require.NoError(t, err)
	assert.Equal(t, journey.OutcomeCompleted, out.Kind)

	s := f.svc.State()
	require.Len(t, s.Connections, 1)
	assert.Equal(t, home, s.Connections[0].FromPageID)
	assert.Equal(t, btn.ID, s.Connections[0].FromComponentID)
	assert.Equal(t, next.ID, s.Connections[0].ToPageID)
	assert.Equal(t, "connect", f.labels(t)[len(f.labels(t))-1])

	path, err := f.svc.EdgePath(s.Connections[0].ID)
	require.NoError(t, err)
	assert.Equal(t, journey.Palette[0], path.Color)
	assert.Len(t, f.svc.EdgePaths(), 1)

	_, err = f.svc.ClickComponent(ctx, home, btn.ID)
	require.NoError(t, err)
	out = f.svc.ClickCanvas(ctx)
	assert.Equal(t, journey.OutcomeCancelled, out.Kind)
	_, ok = f.svc.PendingConnection()
	assert.False(t, ok)

	var pendingEvents int
	for _, n := range f.emitter.Names() {
		if n == service.EventPending {
			pendingEvents++
		}
	}
	assert.Equal(t, 3, pendingEvents)
}

func TestDeletePageCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	home := f.svc.State().ActivePageID

	other, err := f.svc.AddPage(ctx, "Other")
	require.NoError(t, err)
	_, err = f.svc.Connect(ctx, domain.Endpoint{PageID: home}, domain.Endpoint{PageID: other.ID})
	require.NoError(t, err)

	require.NoError(t, f.svc.DeletePage(ctx, other.ID))
	s := f.svc.State()
	assert.Len(t, s.Pages, 1)
	assert.Len(t, s.PageNodes, 1)
	assert.Empty(t, s.Connections)
	assert.Equal(t, home, s.ActivePageID)

	assert.ErrorIs(t, f.svc.DeletePage(ctx, home), workspace.ErrLastPage)
}

func TestSetGrid(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	size, err := f.svc.SetGrid(ctx, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, domain.GridSize{Rows: 10, Cols: 4}, size)

	_, err = f.svc.SetGrid(ctx, 6, 0)
	require.NoError(t, err)
	assert.Equal(t, domain.GridSize{Rows: 6, Cols: 4}, f.svc.State().Grid)

	_, err = f.svc.SetGrid(ctx, 3, -1)
	assert.ErrorIs(t, err, grid.ErrInvalidSize)
	assert.Equal(t, domain.GridSize{Rows: 6, Cols: 4}, f.svc.State().Grid)

	size, err = f.svc.StepGrid(ctx, 1, -1)
	require.NoError(t, err)
	assert.Equal(t, domain.GridSize{Rows: 7, Cols: 3}, size)
}

func TestExport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddComponent(ctx, "", domain.ComponentBadge, 0, 0)
	require.NoError(t, err)
	_, err = f.svc.AddPage(ctx, "Second")
	require.NoError(t, err)

	doc := f.svc.Export(export.ScopeActive)
	require.Len(t, doc.Pages, 1)
	assert.Equal(t, "Second", doc.Pages[0].Name)

	doc = f.svc.Export(export.ScopeAll)
	require.Len(t, doc.Pages, 2)
	assert.Len(t, doc.Pages[0].Components, 1)
}
