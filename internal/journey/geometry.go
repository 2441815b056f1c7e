package journey

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"mockingbird/internal/domain"
)

// Page card dimensions on the journey canvas, in pixels.
const (
	NodeWidth          = 300.0
	HeaderHeight       = 60.0
	ComponentRowOffset = 40.0
	ComponentRowHeight = 32.0
	NodeBottomPadding  = 16.0
	CurveControlOffset = 100.0
)

// EdgeStyle selects how connection paths are drawn.
type EdgeStyle string

const (
	EdgeCurved     EdgeStyle = "curved"
	EdgeOrthogonal EdgeStyle = "orthogonal"
)

func ParseEdgeStyle(s string) (EdgeStyle, error) {
	switch EdgeStyle(s) {
	case "", EdgeCurved:
		return EdgeCurved, nil
	case EdgeOrthogonal:
		return EdgeOrthogonal, nil
	}
	return "", fmt.Errorf("unknown edge style %q", s)
}

// SortedComponents lists the page's components top-to-bottom then
// left-to-right, which is the order rows appear on the page card.
func SortedComponents(p domain.Page) []domain.GridContent {
	out := make([]domain.GridContent, len(p.Contents))
	copy(out, p.Contents)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position.Row != out[j].Position.Row {
			return out[i].Position.Row < out[j].Position.Row
		}
		return out[i].Position.Col < out[j].Position.Col
	})
	return out
}

// NodeHeight is the card height for a page with n components.
func NodeHeight(n int) float64 {
	if n < 1 {
		n = 1
	}
	return HeaderHeight + ComponentRowOffset - ComponentRowHeight/2 + float64(n)*ComponentRowHeight + NodeBottomPadding
}

// Anchor is an edge endpoint on the canvas. Resolved is false when the
// referenced page or component no longer exists and the anchor fell back.
type Anchor struct {
	Point    domain.Point `json:"point"`
	Resolved bool         `json:"resolved"`
}

// EdgePath is the drawable form of one connection.
type EdgePath struct {
	ConnectionID string         `json:"connectionId"`
	Color        string         `json:"color"`
	Label        string         `json:"label,omitempty"`
	Dashed       bool           `json:"dashed"`
	Style        EdgeStyle      `json:"style"`
	From         Anchor         `json:"from"`
	To           Anchor         `json:"to"`
	Points       []domain.Point `json:"points"`
	SVG          string         `json:"svg"`
}

// sourceAnchor sits on the right edge of the card: at the component's row
// when it exists, otherwise at the bottom of the header.
func sourceAnchor(s domain.State, pageID, componentID string) Anchor {
	return anchorAt(s, pageID, componentID, NodeWidth)
}

// destAnchor sits on the left edge of the card.
func destAnchor(s domain.State, pageID, componentID string) Anchor {
	return anchorAt(s, pageID, componentID, 0)
}

func anchorAt(s domain.State, pageID, componentID string, dx float64) Anchor {
	n, ok := Node(s.PageNodes, pageID)
	if !ok {
		return Anchor{}
	}
	at := domain.Point{X: n.Position.X + dx, Y: n.Position.Y + HeaderHeight}
	if componentID == "" {
		return Anchor{Point: at, Resolved: true}
	}
	p, ok := s.Page(pageID)
	if !ok {
		return Anchor{Point: at}
	}
	for i, c := range SortedComponents(p) {
		if c.ID == componentID {
			at.Y += ComponentRowOffset + float64(i)*ComponentRowHeight
			return Anchor{Point: at, Resolved: true}
		}
	}
	return Anchor{Point: at}
}

// Path computes the drawable path of connection id.
func Path(s domain.State, id string, style EdgeStyle) (EdgePath, error) {
	idx := IndexOf(s.Connections, id)
	if idx < 0 {
		return EdgePath{}, ErrConnNotFound
	}
	return pathFor(s, idx, style), nil
}

// Paths computes every drawable connection. Connections whose pages have
// no node are skipped.
func Paths(s domain.State, style EdgeStyle) []EdgePath {
	out := make([]EdgePath, 0, len(s.Connections))
	for i, c := range s.Connections {
		if _, ok := Node(s.PageNodes, c.FromPageID); !ok {
			continue
		}
		if _, ok := Node(s.PageNodes, c.ToPageID); !ok {
			continue
		}
		out = append(out, pathFor(s, i, style))
	}
	return out
}

func pathFor(s domain.State, idx int, style EdgeStyle) EdgePath {
	c := s.Connections[idx]
	e := EdgePath{
		ConnectionID: c.ID,
		Color:        ColorFor(idx),
		Dashed:       c.SamePage(),
		Style:        style,
		From:         sourceAnchor(s, c.FromPageID, c.FromComponentID),
		To:           destAnchor(s, c.ToPageID, c.ToComponentID),
	}
	if c.SamePage() {
		e.Label = "UI"
	}

	switch style {
	case EdgeOrthogonal:
		e.Points = orthoPath(s, c, e.From.Point, e.To.Point)
		e.SVG = polylineSVG(e.Points)
	default:
		e.Style = EdgeCurved
		from, to := e.From.Point, e.To.Point
		c1 := domain.Point{X: from.X + CurveControlOffset, Y: from.Y}
		c2 := domain.Point{X: to.X - CurveControlOffset, Y: to.Y}
		e.Points = []domain.Point{from, c1, c2, to}
		e.SVG = fmt.Sprintf("M %s %s C %s %s, %s %s, %s %s",
			num(from.X), num(from.Y), num(c1.X), num(c1.Y), num(c2.X), num(c2.Y), num(to.X), num(to.Y))
	}
	return e
}

func orthoPath(s domain.State, c domain.Connection, from, to domain.Point) []domain.Point {
	var src, dst *rect
	var others []rect
	for _, n := range s.PageNodes {
		p, _ := s.Page(n.PageID)
		r := rect{n.Position.X, n.Position.Y, NodeWidth, NodeHeight(len(p.Contents))}
		switch n.PageID {
		case c.FromPageID:
			rc := r
			src = &rc
		case c.ToPageID:
			rc := r
			dst = &rc
		default:
			others = append(others, r)
		}
	}
	return routeOrthogonal(from, to, sideRight, sideLeft, src, dst, others)
}

func polylineSVG(pts []domain.Point) string {
	var b strings.Builder
	for i, p := range pts {
		if i == 0 {
			b.WriteString("M ")
		} else {
			b.WriteString(" L ")
		}
		b.WriteString(num(p.X))
		b.WriteByte(' ')
		b.WriteString(num(p.Y))
	}
	return b.String()
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
