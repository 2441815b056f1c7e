package domain

import (
	"encoding/json"
	"reflect"
)

// Position is the top-left cell of a component, zero-based.
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Span is the number of rows and columns a component covers. Both are >= 1.
type Span struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// GridContent is a single component placed on a page's grid.
// Its footprint is [Row, Row+Rows) x [Col, Col+Cols).
type GridContent struct {
	ID         string         `json:"id"`
	Type       ComponentType  `json:"type"`
	Position   Position       `json:"position"`
	Span       Span           `json:"span"`
	Properties map[string]any `json:"properties"`
}

// Covers reports whether the cell (row, col) lies inside the footprint.
func (c GridContent) Covers(row, col int) bool {
	return row >= c.Position.Row && row < c.Position.Row+c.Span.Rows &&
		col >= c.Position.Col && col < c.Position.Col+c.Span.Cols
}

// Overlaps reports whether two footprints share at least one cell.
func (c GridContent) Overlaps(o GridContent) bool {
	return c.Position.Row < o.Position.Row+o.Span.Rows &&
		o.Position.Row < c.Position.Row+c.Span.Rows &&
		c.Position.Col < o.Position.Col+o.Span.Cols &&
		o.Position.Col < c.Position.Col+c.Span.Cols
}

// Clone returns a deep copy, including nested property values.
func (c GridContent) Clone() GridContent {
	c.Properties = CloneProperties(c.Properties)
	return c
}

// Page is a named layout with its own component collection.
type Page struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Contents []GridContent `json:"contents"`
}

func (p Page) Clone() Page {
	if p.Contents != nil {
		contents := make([]GridContent, len(p.Contents))
		for i, c := range p.Contents {
			contents[i] = c.Clone()
		}
		p.Contents = contents
	}
	return p
}

// Content returns the component with the given id.
func (p Page) Content(id string) (GridContent, bool) {
	for _, c := range p.Contents {
		if c.ID == id {
			return c, true
		}
	}
	return GridContent{}, false
}

// CloneProperties deep-copies a property map. Values are converted to the
// shapes encoding/json decodes into: numbers become float64 and typed
// slices and string-keyed maps become []any and map[string]any, so a stored
// layout decodes back to an equal map.
func CloneProperties(props map[string]any) map[string]any {
	if props == nil {
		return nil
	}
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch tv := v.(type) {
	case nil, bool, string, float64:
		return v
	case map[string]any:
		return CloneProperties(tv)
	case []any:
		out := make([]any, len(tv))
		for i, e := range tv {
			out[i] = cloneValue(e)
		}
		return out
	case json.Number:
		if f, err := tv.Float64(); err == nil {
			return f
		}
		return tv.String()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint())
	case reflect.Float32:
		return rv.Float()
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = cloneValue(rv.Index(i).Interface())
		}
		return out
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = cloneValue(iter.Value().Interface())
		}
		return out
	}
	return v
}
