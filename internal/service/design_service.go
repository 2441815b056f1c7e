package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"go.uber.org/zap"

	"mockingbird/internal/domain"
	"mockingbird/internal/export"
	"mockingbird/internal/grid"
	"mockingbird/internal/journey"
	"mockingbird/internal/workspace"
)

// Events emitted after the design changes.
const (
	EventChanged  = "design:changed"
	EventRestored = "design:restored"
	EventPending  = "journey:pending"
)

// ChangeEvent is the payload of EventChanged and EventRestored.
type ChangeEvent struct {
	Label    string `json:"label"`
	Revision uint64 `json:"revision"`
}

// ─────────────────────────────────────────────────────────────
// Design Service: workspace commands backed by storage
// ─────────────────────────────────────────────────────────────

// DesignService serialises commands against one workspace. After every
// command that changed the design it writes all state keys and pushes a
// labelled snapshot onto the undo history. Gestures are saved once, when
// they end.
type DesignService struct {
	mu       sync.Mutex
	ws       *workspace.Workspace
	state    domain.StateStore
	history  domain.HistoryStore
	emitter  EventEmitter
	log      *zap.Logger
	style    journey.EdgeStyle
	savedRev uint64

	// loaded is set by the first Load; later loads report external changes.
	loaded bool
}

// Options configure a DesignService.
type Options struct {
	Workspace workspace.Options
	EdgeStyle journey.EdgeStyle
}

// NewDesignService creates a DesignService holding a default design. Call
// Load to pick up what storage already has.
func NewDesignService(state domain.StateStore, history domain.HistoryStore, emitter EventEmitter, log *zap.Logger, opts Options) *DesignService {
	if log == nil {
		log = zap.NewNop()
	}
	if emitter == nil {
		emitter = noopEmitter{}
	}
	if opts.EdgeStyle == "" {
		opts.EdgeStyle = journey.EdgeCurved
	}
	return &DesignService{
		ws:      workspace.New(opts.Workspace),
		state:   state,
		history: history,
		emitter: emitter,
		log:     log,
		style:   opts.EdgeStyle,
	}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, string, any) {}

// State returns a copy of the current design.
func (s *DesignService) State() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.State()
}

// Load rehydrates the design from storage. Keys that are missing or fail
// to decode fall back to defaults individually. When storage already holds
// the design in memory nothing is replaced, so a pending connection or a
// gesture in progress survives a reload. Whatever normalisation changed is
// written back, and a history entry is pushed when the history is empty or
// its current snapshot differs from what was loaded. After the first Load,
// a design that differs from the one in memory emits EventRestored.
func (s *DesignService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := make(map[string]string)
	for _, key := range workspace.Keys() {
		v, err := s.state.Get(ctx, key)
		if errors.Is(err, domain.ErrKeyNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load design: %w", err)
		}
		entries[key] = v
	}

	current := s.ws.State()
	inMemory, err := workspace.Encode(current)
	if err != nil {
		return err
	}

	var issues []workspace.DecodeIssue
	loaded := current
	if len(entries) > 0 && !maps.Equal(inMemory, entries) {
		var decoded domain.State
		decoded, issues = workspace.Decode(entries)
		for _, is := range issues {
			s.log.Warn("discarding unreadable state key", zap.String("key", is.Key), zap.Error(is.Err))
		}
		loaded = s.ws.Replace(decoded)
	}

	encoded, err := workspace.Encode(loaded)
	if err != nil {
		return err
	}
	changed := s.loaded && !maps.Equal(encoded, inMemory)
	s.loaded = true

	snap, err := workspace.Snapshot(loaded)
	if err != nil {
		return err
	}
	label := ""
	cur, err := s.history.Current(ctx)
	switch {
	case errors.Is(err, domain.ErrNoHistory):
		label = "open design"
	case err != nil:
		return fmt.Errorf("load design: %w", err)
	case cur.SnapshotJSON != snap:
		label = "external change"
	}

	// Only write back what normalisation changed, so a reload triggered by
	// a file watcher does not itself touch the database.
	if maps.Equal(encoded, entries) {
		s.savedRev = s.ws.Revision()
	} else if err := s.save(ctx, loaded); err != nil {
		return err
	}
	if label != "" {
		if _, err := s.history.Push(ctx, label, snap); err != nil {
			return fmt.Errorf("push history: %w", err)
		}
	}
	s.log.Debug("design loaded",
		zap.Int("pages", len(loaded.Pages)),
		zap.Int("connections", len(loaded.Connections)),
		zap.Int("issues", len(issues)),
		zap.Bool("changed", changed))
	if changed {
		s.emitter.Emit(ctx, EventRestored, ChangeEvent{Label: "external change", Revision: s.ws.Revision()})
	}
	return nil
}

func (s *DesignService) save(ctx context.Context, st domain.State) error {
	entries, err := workspace.Encode(st)
	if err != nil {
		return err
	}
	if err := s.state.SetMany(ctx, entries); err != nil {
		s.log.Error("persist design", zap.Error(err))
		return fmt.Errorf("persist design: %w", err)
	}
	s.savedRev = s.ws.Revision()
	return nil
}

// commit saves the design when it changed since the last save. Must be
// called with mu held.
func (s *DesignService) commit(ctx context.Context, label string) error {
	if s.ws.Revision() == s.savedRev {
		return nil
	}
	st := s.ws.State()
	if err := s.save(ctx, st); err != nil {
		return err
	}
	snap, err := workspace.Snapshot(st)
	if err != nil {
		return err
	}
	if _, err := s.history.Push(ctx, label, snap); err != nil {
		s.log.Error("push history", zap.String("label", label), zap.Error(err))
		return fmt.Errorf("push history: %w", err)
	}
	s.log.Debug("design changed", zap.String("command", label), zap.Uint64("revision", s.savedRev))
	s.emitter.Emit(ctx, EventChanged, ChangeEvent{Label: label, Revision: s.savedRev})
	return nil
}

func (s *DesignService) rejected(label string, err error) {
	if domain.IsRejected(err) {
		s.log.Debug("command rejected", zap.String("command", label), zap.Error(err))
	}
}

// run applies fn to the workspace and commits the result under label.
func run[T any](ctx context.Context, s *DesignService, label string, fn func(*workspace.Workspace) (T, error)) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := fn(s.ws)
	if err != nil {
		s.rejected(label, err)
		return v, err
	}
	return v, s.commit(ctx, label)
}

func exec(ctx context.Context, s *DesignService, label string, fn func(*workspace.Workspace) error) error {
	_, err := run(ctx, s, label, func(w *workspace.Workspace) (struct{}, error) {
		return struct{}{}, fn(w)
	})
	return err
}

// ── Pages ───────────────────────────────────────────────────

func (s *DesignService) AddPage(ctx context.Context, name string) (domain.Page, error) {
	return run(ctx, s, "add page", func(w *workspace.Workspace) (domain.Page, error) {
		return w.AddPage(name), nil
	})
}

func (s *DesignService) RenamePage(ctx context.Context, pageID, name string) error {
	return exec(ctx, s, "rename page", func(w *workspace.Workspace) error {
		return w.RenamePage(pageID, name)
	})
}

// DeletePage removes a page with its node and every connection touching it.
func (s *DesignService) DeletePage(ctx context.Context, pageID string) error {
	return exec(ctx, s, "delete page", func(w *workspace.Workspace) error {
		return w.DeletePage(pageID)
	})
}

func (s *DesignService) SetActivePage(ctx context.Context, pageID string) error {
	return exec(ctx, s, "switch page", func(w *workspace.Workspace) error {
		return w.SetActivePage(pageID)
	})
}

func (s *DesignService) SetDevice(ctx context.Context, d domain.DeviceMode) error {
	return exec(ctx, s, "set device", func(w *workspace.Workspace) error {
		return w.SetDevice(d)
	})
}

func (s *DesignService) SetView(ctx context.Context, v domain.ViewMode) error {
	return exec(ctx, s, "set view", func(w *workspace.Workspace) error {
		return w.SetView(v)
	})
}

// ── Grid ────────────────────────────────────────────────────

// SetGrid changes the grid dimensions. A zero value leaves that dimension
// unchanged.
func (s *DesignService) SetGrid(ctx context.Context, rows, cols int) (domain.GridSize, error) {
	return run(ctx, s, "resize grid", func(w *workspace.Workspace) (domain.GridSize, error) {
		size := w.State().Grid
		// Validate both before touching either so a bad pair changes nothing.
		if rows != 0 {
			if _, err := grid.WithRows(size, rows); err != nil {
				return size, err
			}
		}
		if cols != 0 {
			if _, err := grid.WithCols(size, cols); err != nil {
				return size, err
			}
		}
		var err error
		if rows != 0 {
			if size, err = w.SetRows(rows); err != nil {
				return size, err
			}
		}
		if cols != 0 {
			size, err = w.SetCols(cols)
		}
		return size, err
	})
}

// StepGrid adds or removes one row or column. Removal stops at one.
func (s *DesignService) StepGrid(ctx context.Context, rows, cols int) (domain.GridSize, error) {
	return run(ctx, s, "resize grid", func(w *workspace.Workspace) (domain.GridSize, error) {
		size := w.State().Grid
		switch {
		case rows > 0:
			size = w.AddRow()
		case rows < 0:
			size = w.RemoveRow()
		}
		switch {
		case cols > 0:
			size = w.AddCol()
		case cols < 0:
			size = w.RemoveCol()
		}
		return size, nil
	})
}

// ── Components ──────────────────────────────────────────────

// ContentAt finds the component covering a cell. An empty pageID means the
// active page.
func (s *DesignService) ContentAt(pageID string, row, col int) (domain.GridContent, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.ContentAt(pageID, row, col)
}

func (s *DesignService) AddComponent(ctx context.Context, pageID string, t domain.ComponentType, row, col int) (domain.GridContent, error) {
	return run(ctx, s, "add component", func(w *workspace.Workspace) (domain.GridContent, error) {
		return w.AddComponent(pageID, t, row, col)
	})
}

// Drop handles a drag payload released on a cell: an existing component id
// moves it, a component type adds one, anything else is ignored.
func (s *DesignService) Drop(ctx context.Context, pageID, payload string, row, col int) (grid.DropResult, error) {
	return run(ctx, s, "drop", func(w *workspace.Workspace) (grid.DropResult, error) {
		return w.Drop(pageID, payload, row, col)
	})
}

func (s *DesignService) MoveComponent(ctx context.Context, pageID, id string, row, col int) error {
	return exec(ctx, s, "move component", func(w *workspace.Workspace) error {
		return w.MoveComponent(pageID, id, row, col)
	})
}

func (s *DesignService) ResizeComponent(ctx context.Context, pageID, id string, span domain.Span) (domain.Span, error) {
	return run(ctx, s, "resize component", func(w *workspace.Workspace) (domain.Span, error) {
		return w.ResizeComponent(pageID, id, span)
	})
}

func (s *DesignService) SetProperties(ctx context.Context, pageID, id string, props map[string]any, merge bool) (domain.GridContent, error) {
	return run(ctx, s, "edit properties", func(w *workspace.Workspace) (domain.GridContent, error) {
		return w.SetProperties(pageID, id, props, merge)
	})
}

func (s *DesignService) DeleteComponent(ctx context.Context, pageID, id string) error {
	return exec(ctx, s, "delete component", func(w *workspace.Workspace) error {
		return w.DeleteComponent(pageID, id)
	})
}

func (s *DesignService) ClearPage(ctx context.Context, pageID string) error {
	return exec(ctx, s, "clear page", func(w *workspace.Workspace) error {
		return w.ClearPage(pageID)
	})
}

// BeginResize starts a handle drag. Nothing is saved until EndResize.
func (s *DesignService) BeginResize(pageID, id string, dir grid.Direction, pointer domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.BeginResize(pageID, id, dir, pointer)
}

func (s *DesignService) ResizeTo(pointer domain.Point) (domain.Span, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.ResizeTo(pointer)
}

func (s *DesignService) EndResize(ctx context.Context) error {
	return exec(ctx, s, "resize component", func(w *workspace.Workspace) error {
		return w.EndResize()
	})
}

// ── Journey ─────────────────────────────────────────────────

func (s *DesignService) MoveNode(ctx context.Context, pageID string, pos domain.Point) error {
	return exec(ctx, s, "move page node", func(w *workspace.Workspace) error {
		return w.MoveNode(pageID, pos)
	})
}

func (s *DesignService) BeginNodeDrag(pageID string, pointer domain.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.BeginNodeDrag(pageID, pointer)
}

func (s *DesignService) DragNodeTo(pointer domain.Point) (domain.Point, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.DragNodeTo(pointer)
}

func (s *DesignService) EndNodeDrag(ctx context.Context) error {
	return exec(ctx, s, "move page node", func(w *workspace.Workspace) error {
		return w.EndNodeDrag()
	})
}

func (s *DesignService) PendingConnection() (domain.Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ws.PendingConnection()
}

// ClickComponent feeds a component click into the connect gesture.
func (s *DesignService) ClickComponent(ctx context.Context, pageID, componentID string) (journey.Outcome, error) {
	out, err := run(ctx, s, "connect", func(w *workspace.Workspace) (journey.Outcome, error) {
		return w.ClickComponent(pageID, componentID)
	})
	s.emitPending(ctx, out)
	return out, err
}

// ClickPageHeader completes a pending connection onto a page.
func (s *DesignService) ClickPageHeader(ctx context.Context, pageID string) (journey.Outcome, error) {
	out, err := run(ctx, s, "connect", func(w *workspace.Workspace) (journey.Outcome, error) {
		return w.ClickPageHeader(pageID)
	})
	s.emitPending(ctx, out)
	return out, err
}

// ClickCanvas cancels a pending connection.
func (s *DesignService) ClickCanvas(ctx context.Context) journey.Outcome {
	s.mu.Lock()
	out := s.ws.ClickCanvas()
	s.mu.Unlock()
	s.emitPending(ctx, out)
	return out
}

func (s *DesignService) emitPending(ctx context.Context, out journey.Outcome) {
	switch out.Kind {
	case journey.OutcomeBegan, journey.OutcomeCancelled:
		s.emitter.Emit(ctx, EventPending, out)
	}
}

func (s *DesignService) Connect(ctx context.Context, from, to domain.Endpoint) (domain.Connection, error) {
	return run(ctx, s, "connect", func(w *workspace.Workspace) (domain.Connection, error) {
		return w.Connect(from, to)
	})
}

func (s *DesignService) DeleteConnection(ctx context.Context, id string) error {
	return exec(ctx, s, "delete connection", func(w *workspace.Workspace) error {
		w.DeleteConnection(id)
		return nil
	})
}

// EdgePath computes the drawn path of one connection in the configured
// style.
func (s *DesignService) EdgePath(id string) (journey.EdgePath, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return journey.Path(s.ws.State(), id, s.style)
}

func (s *DesignService) EdgePaths() []journey.EdgePath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return journey.Paths(s.ws.State(), s.style)
}

// ── History ─────────────────────────────────────────────────

// Undo restores the previous snapshot. domain.ErrNoHistory is returned at
// the oldest entry.
func (s *DesignService) Undo(ctx context.Context) (domain.State, error) {
	return s.restore(ctx, "undo", s.history.Undo)
}

// Redo re-applies the snapshot after the cursor.
func (s *DesignService) Redo(ctx context.Context) (domain.State, error) {
	return s.restore(ctx, "redo", s.history.Redo)
}

func (s *DesignService) restore(ctx context.Context, label string, step func(context.Context) (*domain.HistoryEntry, error)) (domain.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := step(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrNoHistory) {
			s.log.Error("history step", zap.String("op", label), zap.Error(err))
		}
		return s.ws.State(), err
	}
	st, err := workspace.Restore(e.SnapshotJSON)
	if err != nil {
		return s.ws.State(), err
	}
	st = s.ws.Replace(st)
	if err := s.save(ctx, st); err != nil {
		return st, err
	}
	s.log.Debug("history restored", zap.String("op", label), zap.String("entry", e.Label), zap.Int64("seq", e.Seq))
	s.emitter.Emit(ctx, EventRestored, ChangeEvent{Label: label + " " + e.Label, Revision: s.savedRev})
	return st, nil
}

// History lists the undo log, oldest first.
func (s *DesignService) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	return s.history.List(ctx)
}

// ── Export ──────────────────────────────────────────────────

func (s *DesignService) Export(scope export.Scope) export.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.Build(s.ws.State(), scope)
}
