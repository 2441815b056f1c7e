// Package workspace is the single authoritative store for a design. Every
// command validates against the current state, applies grid and journey
// rules, and swaps in the new state. Callers only ever see copies.
package workspace

import (
	"strings"

	"mockingbird/internal/domain"
	"mockingbird/internal/grid"
	"mockingbird/internal/journey"
)

var (
	ErrPageNotFound  = domain.NewRejection("page not found")
	ErrLastPage      = domain.NewRejection("cannot delete the last page")
	ErrEmptyName     = domain.NewRejection("page name must not be empty")
	ErrInvalidMode   = domain.NewRejection("unknown device or view mode")
	ErrNoGesture     = domain.NewRejection("no gesture in progress")
	ErrGestureActive = domain.NewRejection("another gesture is in progress")
)

// Options configure the rules a workspace enforces.
type Options struct {
	Grid       domain.GridSize
	Strict     bool
	RowPitch   float64
	ColPitch   float64
	Placement  journey.Placement
	Completion journey.CompletionMode
	IDs        IDGenerator
}

func (o Options) withDefaults() Options {
	if o.Grid.Rows < 1 || o.Grid.Cols < 1 {
		o.Grid = grid.DefaultSize()
	}
	if o.RowPitch <= 0 {
		o.RowPitch = grid.DefaultRowPitch
	}
	if o.ColPitch <= 0 {
		o.ColPitch = grid.DefaultColPitch
	}
	if o.Placement.Spacing <= 0 {
		o.Placement = journey.DefaultPlacement()
	}
	if o.Completion == "" {
		o.Completion = journey.CompleteOnPage
	}
	if o.IDs == nil {
		o.IDs = UUIDGenerator{}
	}
	return o
}

type resizeGesture struct {
	pageID string
	g      grid.ResizeGesture
}

// Workspace holds the design plus transient gesture state. It is not safe
// for concurrent use.
type Workspace struct {
	opts      Options
	state     domain.State
	rev       uint64
	connector journey.Connector
	resize    *resizeGesture
	drag      *journey.NodeDrag
}

// New creates a workspace holding a fresh default design.
func New(opts Options) *Workspace {
	opts = opts.withDefaults()
	return &Workspace{
		opts:      opts,
		state:     DefaultState(opts.IDs, opts.Grid, opts.Placement),
		connector: journey.Connector{Mode: opts.Completion},
	}
}

// State returns a deep copy of the current design.
func (w *Workspace) State() domain.State {
	return w.state.Clone()
}

// Revision increases every time the design changes.
func (w *Workspace) Revision() uint64 {
	return w.rev
}

// Replace swaps in a whole design, for example one loaded from storage or
// restored by undo. Gestures in progress are dropped.
func (w *Workspace) Replace(s domain.State) domain.State {
	w.state = Normalize(s, w.opts.IDs, w.opts.Grid, w.opts.Placement)
	w.connector.Reset()
	w.resize = nil
	w.drag = nil
	w.rev++
	return w.State()
}

func (w *Workspace) commit(s domain.State) {
	w.state = s
	w.rev++
}

func (w *Workspace) layout() grid.Layout {
	return grid.Layout{Size: w.state.Grid, Strict: w.opts.Strict}
}

func (w *Workspace) resolvePage(pageID string) (int, error) {
	if pageID == "" {
		pageID = w.state.ActivePageID
	}
	idx := w.state.PageIndex(pageID)
	if idx < 0 {
		return -1, ErrPageNotFound
	}
	return idx, nil
}

// ── Pages ───────────────────────────────────────────────────

// AddPage appends a page and makes it active. An empty name becomes
// "Page N" where N is the new page count.
func (w *Workspace) AddPage(name string) domain.Page {
	name = strings.TrimSpace(name)
	if name == "" {
		name = pageName(len(w.state.Pages) + 1)
	}
	p := domain.Page{ID: w.opts.IDs.NewID(PrefixPage), Name: name, Contents: []domain.GridContent{}}

	s := w.state.Clone()
	s.Pages = append(s.Pages, p)
	s.ActivePageID = p.ID
	s.PageNodes = journey.ReconcileNodes(s.Pages, s.PageNodes, w.opts.Placement)
	w.commit(s)
	return p
}

// RenamePage sets a trimmed, non-empty name.
func (w *Workspace) RenamePage(pageID, name string) error {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if w.state.Pages[idx].Name == name {
		return nil
	}
	s := w.state.Clone()
	s.Pages[idx].Name = name
	w.commit(s)
	return nil
}

// DeletePage removes a page, its node and every connection touching it.
// The last remaining page cannot be deleted. If the active page goes, the
// first remaining page becomes active.
func (w *Workspace) DeletePage(pageID string) error {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return err
	}
	if len(w.state.Pages) <= 1 {
		return ErrLastPage
	}

	s := w.state.Clone()
	id := s.Pages[idx].ID
	s.Pages = append(s.Pages[:idx], s.Pages[idx+1:]...)
	s.PageNodes, s.Connections = journey.RemovePage(s.PageNodes, s.Connections, id)
	if s.ActivePageID == id {
		s.ActivePageID = s.Pages[0].ID
	}

	if p, ok := w.connector.Pending(); ok && p.PageID == id {
		w.connector.Reset()
	}
	if w.resize != nil && w.resize.pageID == id {
		w.resize = nil
	}
	if w.drag != nil && w.drag.PageID == id {
		w.drag = nil
	}
	w.commit(s)
	return nil
}

func (w *Workspace) SetActivePage(pageID string) error {
	if w.state.PageIndex(pageID) < 0 {
		return ErrPageNotFound
	}
	if w.state.ActivePageID == pageID {
		return nil
	}
	s := w.state.Clone()
	s.ActivePageID = pageID
	w.commit(s)
	return nil
}

func (w *Workspace) SetDevice(d domain.DeviceMode) error {
	if !d.Valid() {
		return ErrInvalidMode
	}
	if w.state.Device == d {
		return nil
	}
	s := w.state.Clone()
	s.Device = d
	w.commit(s)
	return nil
}

func (w *Workspace) SetView(v domain.ViewMode) error {
	if !v.Valid() {
		return ErrInvalidMode
	}
	if w.state.View == v {
		return nil
	}
	s := w.state.Clone()
	s.View = v
	w.commit(s)
	return nil
}

// ── Grid dimensions ─────────────────────────────────────────

func (w *Workspace) setGrid(size domain.GridSize) domain.GridSize {
	if size != w.state.Grid {
		s := w.state.Clone()
		s.Grid = size
		w.commit(s)
	}
	return size
}

// SetRows changes the shared row count. Values below one are rejected and
// existing components are not clamped.
func (w *Workspace) SetRows(rows int) (domain.GridSize, error) {
	size, err := grid.WithRows(w.state.Grid, rows)
	if err != nil {
		return w.state.Grid, err
	}
	return w.setGrid(size), nil
}

func (w *Workspace) SetCols(cols int) (domain.GridSize, error) {
	size, err := grid.WithCols(w.state.Grid, cols)
	if err != nil {
		return w.state.Grid, err
	}
	return w.setGrid(size), nil
}

func (w *Workspace) AddRow() domain.GridSize    { return w.setGrid(grid.AddRow(w.state.Grid)) }
func (w *Workspace) RemoveRow() domain.GridSize { return w.setGrid(grid.RemoveRow(w.state.Grid)) }
func (w *Workspace) AddCol() domain.GridSize    { return w.setGrid(grid.AddCol(w.state.Grid)) }
func (w *Workspace) RemoveCol() domain.GridSize { return w.setGrid(grid.RemoveCol(w.state.Grid)) }
