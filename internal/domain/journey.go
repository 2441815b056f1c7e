package domain

// Point is a position on the journey canvas, in pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// PageNode is the visual representation of a page on the journey canvas.
type PageNode struct {
	PageID   string `json:"pageId"`
	Position Point  `json:"position"`
}

// Connection is a directed journey edge. An empty component id means the
// endpoint is the page itself. Component ids are weak references and may
// dangle after the component is deleted.
type Connection struct {
	ID              string `json:"id"`
	FromPageID      string `json:"fromPageId"`
	FromComponentID string `json:"fromComponentId,omitempty"`
	ToPageID        string `json:"toPageId"`
	ToComponentID   string `json:"toComponentId,omitempty"`
}

// SamePage reports whether the edge stays on one page (a UI interaction).
func (c Connection) SamePage() bool {
	return c.FromPageID == c.ToPageID
}

// Touches reports whether pageID is either end of the edge.
func (c Connection) Touches(pageID string) bool {
	return c.FromPageID == pageID || c.ToPageID == pageID
}

// Endpoint identifies a page or a component on a page.
type Endpoint struct {
	PageID      string `json:"pageId"`
	ComponentID string `json:"componentId,omitempty"`
}
