package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockingbird/internal/domain"
	"mockingbird/internal/grid"
)

func TestResizeGestureSpanAt(t *testing.T) {
	start := domain.Point{X: 200, Y: 200}
	tests := []struct {
		name string
		dir  grid.Direction
		to   domain.Point
		want domain.Span
	}{
		{"se grows both", grid.DirSouthEast, domain.Point{X: 200 + 216, Y: 200 + 108}, domain.Span{Rows: 2, Cols: 3}},
		{"e ignores vertical", grid.DirEast, domain.Point{X: 200 + 108, Y: 900}, domain.Span{Rows: 1, Cols: 2}},
		{"s ignores horizontal", grid.DirSouth, domain.Point{X: 900, Y: 200 + 108}, domain.Span{Rows: 2, Cols: 1}},
		{"rounds half up", grid.DirEast, domain.Point{X: 200 + 54, Y: 200}, domain.Span{Rows: 1, Cols: 2}},
		{"rounds down below half", grid.DirEast, domain.Point{X: 200 + 53, Y: 200}, domain.Span{Rows: 1, Cols: 1}},
		{"shrinks on negative delta", grid.DirSouthEast, domain.Point{X: 200 - 108, Y: 200 - 216}, domain.Span{Rows: -1, Cols: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := grid.ResizeGesture{
				ContentID: "c1",
				Direction: tt.dir,
				Start:     start,
				StartSpan: domain.Span{Rows: 1, Cols: 1},
			}
			assert.Equal(t, tt.want, g.SpanAt(tt.to))
		})
	}
}

func TestResizeGestureCustomPitch(t *testing.T) {
	g := grid.ResizeGesture{
		Direction: grid.DirSouthEast,
		StartSpan: domain.Span{Rows: 2, Cols: 2},
		RowPitch:  50,
		ColPitch:  20,
	}
	assert.Equal(t, domain.Span{Rows: 4, Cols: 7}, g.SpanAt(domain.Point{X: 100, Y: 100}))
}

func TestResizeGestureSpanIsClampedByLayout(t *testing.T) {
	l := grid.Layout{Size: grid.DefaultSize()}
	g := grid.ResizeGesture{Direction: grid.DirSouthEast, StartSpan: domain.Span{Rows: 1, Cols: 1}}

	span := l.ClampSpan(domain.Position{Row: 6, Col: 0}, g.SpanAt(domain.Point{X: 2000, Y: 2000}))
	assert.Equal(t, domain.Span{Rows: 2, Cols: 8}, span)

	span = l.ClampSpan(domain.Position{Row: 6, Col: 0}, g.SpanAt(domain.Point{X: -2000, Y: -2000}))
	assert.Equal(t, domain.Span{Rows: 1, Cols: 1}, span)
}

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"se", "e", "s"} {
		d, err := grid.ParseDirection(s)
		require.NoError(t, err)
		assert.Equal(t, grid.Direction(s), d)
	}
	_, err := grid.ParseDirection("nw")
	assert.Error(t, err)
}

func TestDrop(t *testing.T) {
	l := grid.Layout{Size: grid.DefaultSize()}
	contents, _, err := l.Add(nil, "a", domain.ComponentButton, 0, 0)
	require.NoError(t, err)

	// New component by type.
	out, res, err := l.Drop(contents, "card", 2, 2, "new-1")
	require.NoError(t, err)
	assert.Equal(t, grid.DropAdded, res.Kind)
	assert.Equal(t, "new-1", res.Content.ID)
	assert.Len(t, out, 2)

	// Existing id moves.
	out, res, err = l.Drop(out, "a", 4, 5, "unused")
	require.NoError(t, err)
	assert.Equal(t, grid.DropMoved, res.Kind)
	assert.Equal(t, domain.Position{Row: 4, Col: 5}, res.Content.Position)
	assert.Len(t, out, 2)

	// Unknown payload does nothing.
	same, res, err := l.Drop(out, "not-a-thing", 7, 7, "unused")
	require.NoError(t, err)
	assert.Equal(t, grid.DropIgnored, res.Kind)
	assert.Equal(t, out, same)

	// Occupied target is rejected even for the dragged component itself.
	_, _, err = l.Drop(out, "a", 4, 5, "unused")
	assert.ErrorIs(t, err, grid.ErrCellOccupied)
	_, _, err = l.Drop(out, "badge", 2, 2, "unused")
	assert.ErrorIs(t, err, grid.ErrCellOccupied)
}
