package grid

import (
	"fmt"
	"math"

	"mockingbird/internal/domain"
)

// Direction is the resize handle being dragged.
type Direction string

const (
	DirSouthEast Direction = "se"
	DirEast      Direction = "e"
	DirSouth     Direction = "s"
)

// ParseDirection accepts "se", "e" or "s".
func ParseDirection(s string) (Direction, error) {
	switch d := Direction(s); d {
	case DirSouthEast, DirEast, DirSouth:
		return d, nil
	}
	return "", fmt.Errorf("unknown resize direction %q", s)
}

func (d Direction) rows() bool { return d == DirSouthEast || d == DirSouth }
func (d Direction) cols() bool { return d == DirSouthEast || d == DirEast }

// Cell pitch in pixels: a 100px cell plus an 8px gap.
const (
	DefaultRowPitch = 108.0
	DefaultColPitch = 108.0
)

// ResizeGesture is a drag on a resize handle, anchored at pointer-down.
// The span follows the pointer on every move and is committed on release;
// there is no cancel.
type ResizeGesture struct {
	ContentID string
	Direction Direction
	Start     domain.Point
	StartSpan domain.Span
	RowPitch  float64
	ColPitch  float64
}

// SpanAt is the unclamped span requested when the pointer is at p.
// Deltas are rounded half-up to whole cells.
func (g ResizeGesture) SpanAt(p domain.Point) domain.Span {
	span := g.StartSpan
	if g.Direction.cols() {
		span.Cols += cells(p.X-g.Start.X, g.pitch(g.ColPitch, DefaultColPitch))
	}
	if g.Direction.rows() {
		span.Rows += cells(p.Y-g.Start.Y, g.pitch(g.RowPitch, DefaultRowPitch))
	}
	return span
}

func (g ResizeGesture) pitch(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func cells(delta, pitch float64) int {
	return int(math.Floor(delta/pitch + 0.5))
}
