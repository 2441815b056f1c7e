package journey

import "mockingbird/internal/domain"

const DefaultNodeSpacing = 400.0

// DefaultOrigin is where the first page node is placed.
var DefaultOrigin = domain.Point{X: 100, Y: 100}

// Placement controls where reconciled nodes land.
type Placement struct {
	Origin  domain.Point
	Spacing float64
}

func DefaultPlacement() Placement {
	return Placement{Origin: DefaultOrigin, Spacing: DefaultNodeSpacing}
}

// ReconcileNodes returns exactly one node per page, in page order. Existing
// positions are kept. A page without a node gets one Spacing to the right
// of the right-most node, on the origin row, or at the origin when there
// are no nodes yet. Nodes for unknown pages are dropped.
func ReconcileNodes(pages []domain.Page, nodes []domain.PageNode, pl Placement) []domain.PageNode {
	if pl.Spacing <= 0 {
		pl.Spacing = DefaultNodeSpacing
	}

	byPage := make(map[string]domain.PageNode, len(nodes))
	for _, n := range nodes {
		if _, dup := byPage[n.PageID]; !dup {
			byPage[n.PageID] = n
		}
	}

	var placed []domain.PageNode
	for _, p := range pages {
		if n, ok := byPage[p.ID]; ok {
			placed = append(placed, n)
		}
	}

	result := make([]domain.PageNode, 0, len(pages))
	for _, p := range pages {
		if n, ok := byPage[p.ID]; ok {
			result = append(result, n)
			continue
		}
		n := domain.PageNode{PageID: p.ID, Position: nextSlot(placed, pl)}
		placed = append(placed, n)
		result = append(result, n)
	}
	return result
}

func nextSlot(placed []domain.PageNode, pl Placement) domain.Point {
	if len(placed) == 0 {
		return pl.Origin
	}
	maxX := placed[0].Position.X
	for _, n := range placed[1:] {
		if n.Position.X > maxX {
			maxX = n.Position.X
		}
	}
	return domain.Point{X: maxX + pl.Spacing, Y: pl.Origin.Y}
}

// MoveNode sets the canvas position of the page's node.
func MoveNode(nodes []domain.PageNode, pageID string, pos domain.Point) ([]domain.PageNode, error) {
	idx := nodeIndex(nodes, pageID)
	if idx < 0 {
		return nodes, ErrNodeNotFound
	}
	out := make([]domain.PageNode, len(nodes))
	copy(out, nodes)
	out[idx].Position = pos
	return out, nil
}

// Node returns the node for pageID.
func Node(nodes []domain.PageNode, pageID string) (domain.PageNode, bool) {
	if idx := nodeIndex(nodes, pageID); idx >= 0 {
		return nodes[idx], true
	}
	return domain.PageNode{}, false
}

func nodeIndex(nodes []domain.PageNode, pageID string) int {
	for i, n := range nodes {
		if n.PageID == pageID {
			return i
		}
	}
	return -1
}

// NodeDrag tracks a header drag. The offset between the pointer and the
// node origin is fixed at pointer-down.
type NodeDrag struct {
	PageID string
	Offset domain.Point
}

// BeginDrag records the grab offset for the node of pageID.
func BeginDrag(nodes []domain.PageNode, pageID string, pointer domain.Point) (NodeDrag, error) {
	n, ok := Node(nodes, pageID)
	if !ok {
		return NodeDrag{}, ErrNodeNotFound
	}
	return NodeDrag{
		PageID: pageID,
		Offset: domain.Point{X: pointer.X - n.Position.X, Y: pointer.Y - n.Position.Y},
	}, nil
}

// PositionAt is the node position for the current pointer.
func (d NodeDrag) PositionAt(pointer domain.Point) domain.Point {
	return domain.Point{X: pointer.X - d.Offset.X, Y: pointer.Y - d.Offset.Y}
}
