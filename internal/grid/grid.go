// Package grid holds the placement rules for components on a page grid.
// Every operation takes a component slice and returns a new one; the input
// is never modified.
package grid

import (
	"mockingbird/internal/domain"
)

var (
	ErrCellOccupied = domain.NewRejection("cell is occupied")
	ErrOutOfBounds  = domain.NewRejection("position is outside the grid")
	ErrOverlap      = domain.NewRejection("footprint overlaps another component")
	ErrNotFound     = domain.NewRejection("component not found")
	ErrUnknownType  = domain.NewRejection("unknown component type")
	ErrInvalidSize  = domain.NewRejection("grid dimensions must be at least 1")
)

// Layout applies placement rules for one grid size. With Strict unset, move
// only checks the target cell and resize only clamps to the grid edge, so
// a moved or grown component can overlap its neighbours. Strict checks the
// whole footprint in both cases.
type Layout struct {
	Size   domain.GridSize
	Strict bool
}

// ContentAt returns the component whose footprint covers (row, col).
func ContentAt(contents []domain.GridContent, row, col int) (domain.GridContent, bool) {
	for _, c := range contents {
		if c.Covers(row, col) {
			return c, true
		}
	}
	return domain.GridContent{}, false
}

// IsOccupied reports whether any footprint covers (row, col).
func IsOccupied(contents []domain.GridContent, row, col int) bool {
	_, ok := ContentAt(contents, row, col)
	return ok
}

// IsAnchor reports whether (row, col) is the top-left cell of a component.
// Renderers draw a component once, at its anchor.
func IsAnchor(contents []domain.GridContent, row, col int) bool {
	for _, c := range contents {
		if c.Position.Row == row && c.Position.Col == col {
			return true
		}
	}
	return false
}

func (l Layout) inBounds(row, col int) bool {
	return row >= 0 && col >= 0 && row < l.Size.Rows && col < l.Size.Cols
}

// Add places a new 1x1 component of type t at (row, col) with the type's
// default properties.
func (l Layout) Add(contents []domain.GridContent, id string, t domain.ComponentType, row, col int) ([]domain.GridContent, domain.GridContent, error) {
	if !t.Valid() {
		return contents, domain.GridContent{}, ErrUnknownType
	}
	if !l.inBounds(row, col) {
		return contents, domain.GridContent{}, ErrOutOfBounds
	}
	if IsOccupied(contents, row, col) {
		return contents, domain.GridContent{}, ErrCellOccupied
	}

	c := domain.GridContent{
		ID:         id,
		Type:       t,
		Position:   domain.Position{Row: row, Col: col},
		Span:       domain.Span{Rows: 1, Cols: 1},
		Properties: domain.DefaultProperties(t),
	}
	out := cloneAll(contents)
	out = append(out, c)
	return out, c.Clone(), nil
}

// Move sets the anchor of component id to (row, col). A target cell covered
// by the component itself is allowed.
func (l Layout) Move(contents []domain.GridContent, id string, row, col int) ([]domain.GridContent, error) {
	idx := indexOf(contents, id)
	if idx < 0 {
		return contents, ErrNotFound
	}
	if !l.inBounds(row, col) {
		return contents, ErrOutOfBounds
	}
	if other, ok := ContentAt(contents, row, col); ok && other.ID != id {
		return contents, ErrCellOccupied
	}

	moved := contents[idx]
	moved.Position = domain.Position{Row: row, Col: col}
	if l.Strict {
		if row+moved.Span.Rows > l.Size.Rows || col+moved.Span.Cols > l.Size.Cols {
			return contents, ErrOutOfBounds
		}
		if overlapsOthers(contents, moved) {
			return contents, ErrOverlap
		}
	}

	out := cloneAll(contents)
	out[idx].Position = moved.Position
	return out, nil
}

// Resize sets the span of component id, clamped per axis to
// [1, size - position]. It returns the span actually applied.
func (l Layout) Resize(contents []domain.GridContent, id string, span domain.Span) ([]domain.GridContent, domain.Span, error) {
	idx := indexOf(contents, id)
	if idx < 0 {
		return contents, domain.Span{}, ErrNotFound
	}

	resized := contents[idx]
	resized.Span = l.ClampSpan(resized.Position, span)
	if l.Strict && overlapsOthers(contents, resized) {
		return contents, contents[idx].Span, ErrOverlap
	}

	out := cloneAll(contents)
	out[idx].Span = resized.Span
	return out, resized.Span, nil
}

// FitSpan returns the largest span no bigger than span, after clamping to
// the grid, at which component id overlaps nothing else. Larger areas win;
// ties keep more rows. In lenient layouts it is ClampSpan. If even a single
// cell overlaps, the component's current span is returned with ErrOverlap.
func (l Layout) FitSpan(contents []domain.GridContent, id string, span domain.Span) (domain.Span, error) {
	idx := indexOf(contents, id)
	if idx < 0 {
		return domain.Span{}, ErrNotFound
	}
	target := contents[idx]
	want := l.ClampSpan(target.Position, span)
	if !l.Strict {
		return want, nil
	}

	best, area := domain.Span{}, 0
	for rows := want.Rows; rows >= 1; rows-- {
		if rows*want.Cols <= area {
			break
		}
		for cols := want.Cols; cols >= 1; cols-- {
			if rows*cols <= area {
				break
			}
			target.Span = domain.Span{Rows: rows, Cols: cols}
			if !overlapsOthers(contents, target) {
				best, area = target.Span, rows*cols
				break
			}
		}
	}
	if area == 0 {
		return contents[idx].Span, ErrOverlap
	}
	return best, nil
}

// ClampSpan limits span so that a component anchored at pos stays inside
// the grid and covers at least one cell on each axis.
func (l Layout) ClampSpan(pos domain.Position, span domain.Span) domain.Span {
	return domain.Span{
		Rows: clamp(span.Rows, 1, l.Size.Rows-pos.Row),
		Cols: clamp(span.Cols, 1, l.Size.Cols-pos.Col),
	}
}

// Delete removes component id. An unknown id leaves contents unchanged.
func Delete(contents []domain.GridContent, id string) []domain.GridContent {
	out := make([]domain.GridContent, 0, len(contents))
	for _, c := range contents {
		if c.ID != id {
			out = append(out, c.Clone())
		}
	}
	return out
}

// SetProperties replaces the property bag of component id, or merges props
// into it when merge is true. Values are not validated.
func SetProperties(contents []domain.GridContent, id string, props map[string]any, merge bool) ([]domain.GridContent, error) {
	idx := indexOf(contents, id)
	if idx < 0 {
		return contents, ErrNotFound
	}

	out := cloneAll(contents)
	if merge {
		if out[idx].Properties == nil {
			out[idx].Properties = map[string]any{}
		}
		for k, v := range domain.CloneProperties(props) {
			out[idx].Properties[k] = v
		}
	} else {
		out[idx].Properties = domain.CloneProperties(props)
		if out[idx].Properties == nil {
			out[idx].Properties = map[string]any{}
		}
	}
	return out, nil
}

func indexOf(contents []domain.GridContent, id string) int {
	for i, c := range contents {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func overlapsOthers(contents []domain.GridContent, target domain.GridContent) bool {
	for _, c := range contents {
		if c.ID != target.ID && c.Overlaps(target) {
			return true
		}
	}
	return false
}

func cloneAll(contents []domain.GridContent) []domain.GridContent {
	out := make([]domain.GridContent, len(contents), len(contents)+1)
	for i, c := range contents {
		out[i] = c.Clone()
	}
	return out
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		hi = lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
