package grid

import "mockingbird/internal/domain"

// DropKind says what a drag-and-drop payload resolved to.
type DropKind string

const (
	DropIgnored DropKind = "ignored"
	DropMoved   DropKind = "moved"
	DropAdded   DropKind = "added"
)

// DropResult describes the effect of Drop.
type DropResult struct {
	Kind    DropKind           `json:"kind"`
	Content domain.GridContent `json:"content"`
}

// Drop resolves a payload dropped on (row, col). A payload equal to an
// existing component id moves that component; one naming a component type
// adds a new component with newID; anything else is ignored. Dropping on
// any occupied cell, including the dragged component's own footprint, is
// rejected.
func (l Layout) Drop(contents []domain.GridContent, payload string, row, col int, newID string) ([]domain.GridContent, DropResult, error) {
	if IsOccupied(contents, row, col) {
		return contents, DropResult{Kind: DropIgnored}, ErrCellOccupied
	}

	if idx := indexOf(contents, payload); idx >= 0 {
		out, err := l.Move(contents, payload, row, col)
		if err != nil {
			return contents, DropResult{Kind: DropIgnored}, err
		}
		return out, DropResult{Kind: DropMoved, Content: out[idx].Clone()}, nil
	}

	t := domain.ComponentType(payload)
	if !t.Valid() {
		return contents, DropResult{Kind: DropIgnored}, nil
	}
	out, added, err := l.Add(contents, newID, t, row, col)
	if err != nil {
		return contents, DropResult{Kind: DropIgnored}, err
	}
	return out, DropResult{Kind: DropAdded, Content: added}, nil
}
