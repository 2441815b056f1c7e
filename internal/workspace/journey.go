package workspace

import (
	"mockingbird/internal/domain"
	"mockingbird/internal/journey"
)

// MoveNode sets a page node position directly.
func (w *Workspace) MoveNode(pageID string, pos domain.Point) error {
	nodes, err := journey.MoveNode(w.state.PageNodes, pageID, pos)
	if err != nil {
		return err
	}
	s := w.state.Clone()
	s.PageNodes = nodes
	w.commit(s)
	return nil
}

// BeginNodeDrag records the grab offset on a page header.
func (w *Workspace) BeginNodeDrag(pageID string, pointer domain.Point) error {
	if w.resize != nil || w.drag != nil {
		return ErrGestureActive
	}
	d, err := journey.BeginDrag(w.state.PageNodes, pageID, pointer)
	if err != nil {
		return err
	}
	w.drag = &d
	return nil
}

// DragNodeTo moves the dragged node so the grab offset is preserved.
func (w *Workspace) DragNodeTo(pointer domain.Point) (domain.Point, error) {
	if w.drag == nil {
		return domain.Point{}, ErrNoGesture
	}
	pos := w.drag.PositionAt(pointer)
	return pos, w.MoveNode(w.drag.PageID, pos)
}

func (w *Workspace) EndNodeDrag() error {
	if w.drag == nil {
		return ErrNoGesture
	}
	w.drag = nil
	return nil
}

// Dragging reports whether a node drag is in progress.
func (w *Workspace) Dragging() bool {
	return w.drag != nil
}

// PendingConnection is the source of a connect gesture in progress.
func (w *Workspace) PendingConnection() (domain.Endpoint, bool) {
	return w.connector.Pending()
}

// ClickComponent feeds a component click into the connect gesture.
func (w *Workspace) ClickComponent(pageID, componentID string) (journey.Outcome, error) {
	idx := w.state.PageIndex(pageID)
	if idx < 0 {
		return journey.Outcome{Kind: journey.OutcomeNone}, ErrPageNotFound
	}
	if _, ok := w.state.Pages[idx].Content(componentID); !ok {
		return journey.Outcome{Kind: journey.OutcomeNone}, journey.ErrComponentNotFound
	}
	out, err := w.connector.ClickComponent(pageID, componentID)
	if err != nil {
		return out, err
	}
	return w.appendIfCompleted(out), nil
}

// ClickPageHeader completes a pending connection onto a page.
func (w *Workspace) ClickPageHeader(pageID string) (journey.Outcome, error) {
	if w.state.PageIndex(pageID) < 0 {
		return journey.Outcome{Kind: journey.OutcomeNone}, ErrPageNotFound
	}
	out, err := w.connector.ClickHeader(pageID)
	if err != nil {
		return out, err
	}
	return w.appendIfCompleted(out), nil
}

// ClickCanvas cancels a pending connection.
func (w *Workspace) ClickCanvas() journey.Outcome {
	return w.connector.ClickCanvas()
}

func (w *Workspace) appendIfCompleted(out journey.Outcome) journey.Outcome {
	if out.Kind != journey.OutcomeCompleted {
		return out
	}
	out.Connection.ID = w.opts.IDs.NewID(PrefixConnection)
	s := w.state.Clone()
	s.Connections = append(s.Connections, out.Connection)
	w.commit(s)
	return out
}

// Connect creates a connection between two endpoints in one step.
func (w *Workspace) Connect(from, to domain.Endpoint) (domain.Connection, error) {
	conns, c, err := journey.Connect(w.state.Pages, w.state.Connections, w.opts.IDs.NewID(PrefixConnection), from, to)
	if err != nil {
		return domain.Connection{}, err
	}
	s := w.state.Clone()
	s.Connections = conns
	w.commit(s)
	return c, nil
}

// DeleteConnection removes a connection. Unknown ids are a no-op.
func (w *Workspace) DeleteConnection(id string) {
	if journey.IndexOf(w.state.Connections, id) < 0 {
		return
	}
	s := w.state.Clone()
	s.Connections = journey.DeleteConnection(s.Connections, id)
	w.commit(s)
}
