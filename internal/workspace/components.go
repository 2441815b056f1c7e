package workspace

import (
	"mockingbird/internal/domain"
	"mockingbird/internal/grid"
)

// Component commands take a page id; an empty id means the active page.

func (w *Workspace) ContentAt(pageID string, row, col int) (domain.GridContent, bool, error) {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return domain.GridContent{}, false, err
	}
	c, ok := grid.ContentAt(w.state.Pages[idx].Contents, row, col)
	return c.Clone(), ok, nil
}

func (w *Workspace) updateContents(idx int, contents []domain.GridContent) {
	s := w.state.Clone()
	s.Pages[idx].Contents = contents
	w.commit(s)
}

// AddComponent places a new component of type t at (row, col).
func (w *Workspace) AddComponent(pageID string, t domain.ComponentType, row, col int) (domain.GridContent, error) {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return domain.GridContent{}, err
	}
	contents, added, err := w.layout().Add(w.state.Pages[idx].Contents, w.opts.IDs.NewID(PrefixContent), t, row, col)
	if err != nil {
		return domain.GridContent{}, err
	}
	w.updateContents(idx, contents)
	return added, nil
}

// Drop handles a drag-and-drop payload released on (row, col).
func (w *Workspace) Drop(pageID, payload string, row, col int) (grid.DropResult, error) {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return grid.DropResult{Kind: grid.DropIgnored}, err
	}
	var newID string
	if domain.ComponentType(payload).Valid() {
		newID = w.opts.IDs.NewID(PrefixContent)
	}
	contents, res, err := w.layout().Drop(w.state.Pages[idx].Contents, payload, row, col, newID)
	if err != nil || res.Kind == grid.DropIgnored {
		return res, err
	}
	w.updateContents(idx, contents)
	return res, nil
}

func (w *Workspace) MoveComponent(pageID, id string, row, col int) error {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return err
	}
	contents, err := w.layout().Move(w.state.Pages[idx].Contents, id, row, col)
	if err != nil {
		return err
	}
	w.updateContents(idx, contents)
	return nil
}

// ResizeComponent sets the span, clamped to the grid, and returns the span
// applied.
func (w *Workspace) ResizeComponent(pageID, id string, span domain.Span) (domain.Span, error) {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return domain.Span{}, err
	}
	contents, applied, err := w.layout().Resize(w.state.Pages[idx].Contents, id, span)
	if err != nil {
		return applied, err
	}
	if c, _ := w.state.Pages[idx].Content(id); c.Span != applied {
		w.updateContents(idx, contents)
	}
	return applied, nil
}

func (w *Workspace) SetProperties(pageID, id string, props map[string]any, merge bool) (domain.GridContent, error) {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return domain.GridContent{}, err
	}
	contents, err := grid.SetProperties(w.state.Pages[idx].Contents, id, props, merge)
	if err != nil {
		return domain.GridContent{}, err
	}
	w.updateContents(idx, contents)
	c, _ := w.state.Pages[idx].Content(id)
	return c.Clone(), nil
}

// DeleteComponent removes a component. Unknown ids are a no-op. Journey
// connections referencing the component are kept; a connect gesture or
// resize started from it is dropped.
func (w *Workspace) DeleteComponent(pageID, id string) error {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return err
	}
	if _, ok := w.state.Pages[idx].Content(id); !ok {
		return nil
	}
	w.updateContents(idx, grid.Delete(w.state.Pages[idx].Contents, id))

	if p, ok := w.connector.Pending(); ok && p.ComponentID == id {
		w.connector.Reset()
	}
	if w.resize != nil && w.resize.g.ContentID == id {
		w.resize = nil
	}
	return nil
}

// ClearPage removes every component from the page.
func (w *Workspace) ClearPage(pageID string) error {
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return err
	}
	if len(w.state.Pages[idx].Contents) == 0 {
		return nil
	}
	pageID = w.state.Pages[idx].ID
	w.updateContents(idx, []domain.GridContent{})

	if p, ok := w.connector.Pending(); ok && p.PageID == pageID && p.ComponentID != "" {
		w.connector.Reset()
	}
	if w.resize != nil && w.resize.pageID == pageID {
		w.resize = nil
	}
	return nil
}

// ── Resize gesture ──────────────────────────────────────────

// BeginResize anchors a resize drag at pointer on the given handle.
func (w *Workspace) BeginResize(pageID, id string, dir grid.Direction, pointer domain.Point) error {
	if w.resize != nil || w.drag != nil {
		return ErrGestureActive
	}
	idx, err := w.resolvePage(pageID)
	if err != nil {
		return err
	}
	c, ok := w.state.Pages[idx].Content(id)
	if !ok {
		return grid.ErrNotFound
	}
	w.resize = &resizeGesture{
		pageID: w.state.Pages[idx].ID,
		g: grid.ResizeGesture{
			ContentID: id,
			Direction: dir,
			Start:     pointer,
			StartSpan: c.Span,
			RowPitch:  w.opts.RowPitch,
			ColPitch:  w.opts.ColPitch,
		},
	}
	return nil
}

// ResizeTo applies the span for the current pointer position. In strict
// mode a drag past a neighbour stops at the largest span that still fits.
func (w *Workspace) ResizeTo(pointer domain.Point) (domain.Span, error) {
	if w.resize == nil {
		return domain.Span{}, ErrNoGesture
	}
	idx, err := w.resolvePage(w.resize.pageID)
	if err != nil {
		return domain.Span{}, err
	}
	span, err := w.layout().FitSpan(w.state.Pages[idx].Contents, w.resize.g.ContentID, w.resize.g.SpanAt(pointer))
	if err != nil {
		return span, err
	}
	return w.ResizeComponent(w.resize.pageID, w.resize.g.ContentID, span)
}

// EndResize commits the gesture. The span already applied is kept.
func (w *Workspace) EndResize() error {
	if w.resize == nil {
		return ErrNoGesture
	}
	w.resize = nil
	return nil
}

// Resizing reports whether a resize drag is in progress.
func (w *Workspace) Resizing() bool {
	return w.resize != nil
}
