// Package journey manages the navigation graph between pages: one node per
// page on a free 2D canvas and directed connections between pages or the
// components on them.
package journey

import (
	"mockingbird/internal/domain"
)

var (
	ErrSamePage          = domain.NewRejection("source and destination are the same page")
	ErrNothingPending    = domain.NewRejection("no connection in progress")
	ErrPageNotFound      = domain.NewRejection("page not found")
	ErrComponentNotFound = domain.NewRejection("component not found on page")
	ErrNodeNotFound      = domain.NewRejection("page node not found")
	ErrConnNotFound      = domain.NewRejection("connection not found")
)

// Palette colors connections by their position in the list.
var Palette = []string{
	"#3b82f6", "#10b981", "#f59e0b", "#ef4444",
	"#8b5cf6", "#ec4899", "#14b8a6", "#f97316",
}

// ColorFor returns the palette color for the connection at index. Colors
// are positional, so they shift when an earlier connection is removed.
func ColorFor(index int) string {
	if index < 0 {
		index = -index
	}
	return Palette[index%len(Palette)]
}

// Connect validates both endpoints against pages and appends a new
// connection. Component endpoints must exist when the edge is created;
// afterwards they are weak references. A page-level edge from a page to
// itself is rejected; same-page edges that involve a component are UI
// interactions.
func Connect(pages []domain.Page, conns []domain.Connection, id string, from, to domain.Endpoint) ([]domain.Connection, domain.Connection, error) {
	if err := checkEndpoint(pages, from); err != nil {
		return conns, domain.Connection{}, err
	}
	if err := checkEndpoint(pages, to); err != nil {
		return conns, domain.Connection{}, err
	}
	if from.PageID == to.PageID && (to.ComponentID == "" || from.ComponentID == to.ComponentID) {
		return conns, domain.Connection{}, ErrSamePage
	}

	c := domain.Connection{
		ID:              id,
		FromPageID:      from.PageID,
		FromComponentID: from.ComponentID,
		ToPageID:        to.PageID,
		ToComponentID:   to.ComponentID,
	}
	out := make([]domain.Connection, len(conns), len(conns)+1)
	copy(out, conns)
	return append(out, c), c, nil
}

func checkEndpoint(pages []domain.Page, e domain.Endpoint) error {
	for _, p := range pages {
		if p.ID != e.PageID {
			continue
		}
		if e.ComponentID == "" {
			return nil
		}
		if _, ok := p.Content(e.ComponentID); ok {
			return nil
		}
		return ErrComponentNotFound
	}
	return ErrPageNotFound
}

// DeleteConnection removes connection id. Unknown ids are a no-op.
func DeleteConnection(conns []domain.Connection, id string) []domain.Connection {
	out := make([]domain.Connection, 0, len(conns))
	for _, c := range conns {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}

// RemovePage drops the page's node and every connection that has the page
// at either end. Nothing else is touched.
func RemovePage(nodes []domain.PageNode, conns []domain.Connection, pageID string) ([]domain.PageNode, []domain.Connection) {
	outNodes := make([]domain.PageNode, 0, len(nodes))
	for _, n := range nodes {
		if n.PageID != pageID {
			outNodes = append(outNodes, n)
		}
	}
	outConns := make([]domain.Connection, 0, len(conns))
	for _, c := range conns {
		if !c.Touches(pageID) {
			outConns = append(outConns, c)
		}
	}
	return outNodes, outConns
}

// IndexOf returns the position of connection id, or -1.
func IndexOf(conns []domain.Connection, id string) int {
	for i, c := range conns {
		if c.ID == id {
			return i
		}
	}
	return -1
}
