package domain_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mockingbird/internal/domain"
)

func TestComponentTypesValid(t *testing.T) {
	types := domain.ComponentTypes()
	require.Len(t, types, 28)
	for _, ct := range types {
		assert.True(t, ct.Valid(), "expected %s to be valid", ct)
	}
	assert.False(t, domain.ComponentType("carousel").Valid())
	assert.False(t, domain.ComponentType("").Valid())
}

func TestDefaultPropertiesFreshCopy(t *testing.T) {
	a := domain.DefaultProperties(domain.ComponentButton)
	b := domain.DefaultProperties(domain.ComponentButton)
	a["text"] = "Changed"
	assert.Equal(t, "Click me", b["text"])

	assert.NotNil(t, domain.DefaultProperties(domain.ComponentCalendar))
}

func TestGridContentOverlaps(t *testing.T) {
	a := domain.GridContent{Position: domain.Position{Row: 0, Col: 0}, Span: domain.Span{Rows: 2, Cols: 2}}
	b := domain.GridContent{Position: domain.Position{Row: 1, Col: 1}, Span: domain.Span{Rows: 1, Cols: 1}}
	c := domain.GridContent{Position: domain.Position{Row: 0, Col: 2}, Span: domain.Span{Rows: 2, Cols: 1}}

	assert.True(t, a.Overlaps(b))
	assert.True(t, b.Overlaps(a))
	assert.False(t, a.Overlaps(c))
	assert.True(t, a.Covers(1, 1))
	assert.False(t, a.Covers(2, 0))
}

func TestStateCloneIsDeep(t *testing.T) {
	s := domain.State{
		Pages: []domain.Page{{
			ID:   "p1",
			Name: "Home",
			Contents: []domain.GridContent{{
				ID:         "c1",
				Type:       domain.ComponentTable,
				Span:       domain.Span{Rows: 1, Cols: 1},
				Properties: domain.DefaultProperties(domain.ComponentTable),
			}},
		}},
		PageNodes:   []domain.PageNode{{PageID: "p1"}},
		Connections: []domain.Connection{{ID: "x", FromPageID: "p1", ToPageID: "p1"}},
	}

	c := s.Clone()
	c.Pages[0].Name = "Other"
	c.Pages[0].Contents[0].Properties["rows"].([]any)[0].(map[string]any)["name"] = "Nobody"
	c.PageNodes[0].Position.X = 10
	c.Connections[0].ID = "y"

	assert.Equal(t, "Home", s.Pages[0].Name)
	row := s.Pages[0].Contents[0].Properties["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, "John Doe", row["name"])
	assert.Equal(t, float64(0), s.PageNodes[0].Position.X)
	assert.Equal(t, "x", s.Connections[0].ID)
}

func TestClonePropertiesUsesJSONShapes(t *testing.T) {
	got := domain.CloneProperties(map[string]any{
		"count":  3,
		"max":    uint8(200),
		"ratio":  float32(0.5),
		"tags":   []string{"a", "b"},
		"limits": map[string]int{"min": 1},
		"raw":    json.Number("42"),
		"label":  "x",
		"none":   nil,
	})

	want := map[string]any{
		"count":  3.0,
		"max":    200.0,
		"ratio":  0.5,
		"tags":   []any{"a", "b"},
		"limits": map[string]any{"min": 1.0},
		"raw":    42.0,
		"label":  "x",
		"none":   nil,
	}
	assert.Equal(t, want, got)

	data, err := json.Marshal(got)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, got, decoded)
}

func TestRejection(t *testing.T) {
	errBusy := domain.NewRejection("busy")
	wrapped := fmt.Errorf("add: %w", errBusy)

	assert.True(t, domain.IsRejected(wrapped))
	assert.True(t, errors.Is(wrapped, errBusy))
	assert.False(t, domain.IsRejected(errors.New("disk full")))
}

func TestConnectionHelpers(t *testing.T) {
	c := domain.Connection{FromPageID: "a", ToPageID: "b"}
	assert.False(t, c.SamePage())
	assert.True(t, c.Touches("a"))
	assert.True(t, c.Touches("b"))
	assert.False(t, c.Touches("c"))
}
