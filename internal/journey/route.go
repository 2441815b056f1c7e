package journey

import (
	"math"
	"sort"

	"mockingbird/internal/domain"
)

// Orthogonal edge routing around page cards: a sparse visibility graph is
// built from inflated card edges and searched with Dijkstra, penalising
// bends. Falls back to a Z-shaped path when no route exists.

const routeMargin = 30.0

type side int

const (
	sideRight side = iota
	sideLeft
	sideTop
	sideBottom
)

func (s side) dir() (float64, float64) {
	switch s {
	case sideTop:
		return 0, -1
	case sideBottom:
		return 0, 1
	case sideLeft:
		return -1, 0
	}
	return 1, 0
}

func (s side) vertical() bool { return s == sideTop || s == sideBottom }

type rect struct {
	x, y, w, h float64
}

func (r rect) inflate(m float64) rect {
	return rect{r.x - m, r.y - m, r.w + 2*m, r.h + 2*m}
}

func (r rect) contains(p domain.Point, margin float64) bool {
	return p.X >= r.x-margin && p.X <= r.x+r.w+margin &&
		p.Y >= r.y-margin && p.Y <= r.y+r.h+margin
}

// crossedBy reports whether the axis-aligned segment a-b passes through
// the interior of r.
func (r rect) crossedBy(a, b domain.Point) bool {
	switch {
	case math.Abs(a.Y-b.Y) < 0.5:
		if a.Y <= r.y || a.Y >= r.y+r.h {
			return false
		}
		return math.Min(a.X, b.X) < r.x+r.w && math.Max(a.X, b.X) > r.x
	case math.Abs(a.X-b.X) < 0.5:
		if a.X <= r.x || a.X >= r.x+r.w {
			return false
		}
		return math.Min(a.Y, b.Y) < r.y+r.h && math.Max(a.Y, b.Y) > r.y
	}
	return false
}

func pointKey(p domain.Point) [2]int64 {
	return [2]int64{int64(math.Round(p.X * 100)), int64(math.Round(p.Y * 100))}
}

// routeOrthogonal returns the waypoints from -> to, both included.
func routeOrthogonal(from, to domain.Point, srcSide, dstSide side, src, dst *rect, others []rect) []domain.Point {
	if src == nil && dst == nil {
		return simpleRoute(from, to, srcSide, dstSide)
	}

	sdx, sdy := srcSide.dir()
	ddx, ddy := dstSide.dir()
	ant1 := domain.Point{X: from.X + sdx*routeMargin, Y: from.Y + sdy*routeMargin}
	ant2 := domain.Point{X: to.X + ddx*routeMargin, Y: to.Y + ddy*routeMargin}

	var shapes []rect
	if src != nil {
		shapes = append(shapes, *src)
	}
	if dst != nil {
		shapes = append(shapes, *dst)
	}

	var vRulers, hRulers []float64
	for _, r := range append(append([]rect(nil), shapes...), others...) {
		ir := r.inflate(routeMargin)
		vRulers = append(vRulers, ir.x, ir.x+ir.w)
		hRulers = append(hRulers, ir.y, ir.y+ir.h)
	}
	if srcSide.vertical() {
		vRulers = append(vRulers, ant1.X)
	} else {
		hRulers = append(hRulers, ant1.Y)
	}
	if dstSide.vertical() {
		vRulers = append(vRulers, ant2.X)
	} else {
		hRulers = append(hRulers, ant2.Y)
	}
	vr := uniqSorted(vRulers)
	hr := uniqSorted(hRulers)

	xs := append([]float64{from.X, to.X, ant1.X, ant2.X}, vr...)
	ys := append([]float64{from.Y, to.Y, ant1.Y, ant2.Y}, hr...)
	cellXs := append(append([]float64{minOf(xs) - routeMargin}, vr...), maxOf(xs)+routeMargin)
	cellYs := append(append([]float64{minOf(ys) - routeMargin}, hr...), maxOf(ys)+routeMargin)

	var raw []domain.Point
	for _, x := range cellXs {
		for _, y := range cellYs {
			raw = append(raw, domain.Point{X: x, Y: y})
		}
	}
	for i := 0; i < len(cellXs)-1; i++ {
		mx := (cellXs[i] + cellXs[i+1]) / 2
		for _, y := range cellYs {
			raw = append(raw, domain.Point{X: mx, Y: y})
		}
		for j := 0; j < len(cellYs)-1; j++ {
			raw = append(raw, domain.Point{X: mx, Y: (cellYs[j] + cellYs[j+1]) / 2})
		}
	}
	for j := 0; j < len(cellYs)-1; j++ {
		my := (cellYs[j] + cellYs[j+1]) / 2
		for _, x := range cellXs {
			raw = append(raw, domain.Point{X: x, Y: my})
		}
	}
	raw = append(raw, ant1, ant2)

	// Antennas are always kept; other spots inside the endpoint cards are not.
	k1, k2 := pointKey(ant1), pointKey(ant2)
	seen := map[[2]int64]bool{}
	var spots []domain.Point
	for _, p := range raw {
		k := pointKey(p)
		if seen[k] {
			continue
		}
		if k != k1 && k != k2 && insideAny(shapes, p) {
			continue
		}
		seen[k] = true
		spots = append(spots, p)
	}

	blockers := append(append([]rect(nil), shapes...), others...)
	path := shortestPath(spots, ant1, ant2, blockers)
	if path == nil {
		return simpleRoute(from, to, srcSide, dstSide)
	}

	full := append([]domain.Point{from}, append(path, to)...)
	return dedupe(simplify(full))
}

func insideAny(rs []rect, p domain.Point) bool {
	for _, r := range rs {
		if r.contains(p, 1) {
			return true
		}
	}
	return false
}

type graphEdge struct {
	to       [2]int64
	w        float64
	vertical bool
}

type searchNode struct {
	pt       domain.Point
	dist     float64
	prev     *searchNode
	vertical bool
	started  bool
}

// shortestPath runs Dijkstra over the spots, linking neighbours that share
// an x or y coordinate unless the segment crosses a blocker. Each change of
// direction costs (w+1)^2 extra so straighter routes win.
func shortestPath(spots []domain.Point, origin, dest domain.Point, blockers []rect) []domain.Point {
	byX := map[int64][]domain.Point{}
	byY := map[int64][]domain.Point{}
	for _, s := range spots {
		k := pointKey(s)
		byX[k[0]] = append(byX[k[0]], s)
		byY[k[1]] = append(byY[k[1]], s)
	}

	blocked := func(a, b domain.Point) bool {
		for _, r := range blockers {
			if r.crossedBy(a, b) {
				return true
			}
		}
		return false
	}

	adj := map[[2]int64][]graphEdge{}
	link := func(line []domain.Point, vertical bool) {
		for i := 0; i < len(line)-1; i++ {
			a, b := line[i], line[i+1]
			if blocked(a, b) {
				continue
			}
			w := math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
			adj[pointKey(a)] = append(adj[pointKey(a)], graphEdge{pointKey(b), w, vertical})
			adj[pointKey(b)] = append(adj[pointKey(b)], graphEdge{pointKey(a), w, vertical})
		}
	}
	for _, col := range byX {
		sort.Slice(col, func(i, j int) bool { return col[i].Y < col[j].Y })
		link(col, true)
	}
	for _, row := range byY {
		sort.Slice(row, func(i, j int) bool { return row[i].X < row[j].X })
		link(row, false)
	}

	nodes := make(map[[2]int64]*searchNode, len(spots))
	for _, s := range spots {
		nodes[pointKey(s)] = &searchNode{pt: s, dist: math.Inf(1)}
	}
	start, end := nodes[pointKey(origin)], nodes[pointKey(dest)]
	if start == nil || end == nil {
		return nil
	}

	start.dist = 0
	visited := map[[2]int64]bool{}
	pq := &queue{}
	pq.push(start)
	for pq.len() > 0 {
		cur := pq.pop()
		ck := pointKey(cur.pt)
		if visited[ck] {
			continue
		}
		visited[ck] = true
		if cur == end {
			break
		}
		for _, e := range adj[ck] {
			next := nodes[e.to]
			if next == nil || visited[e.to] {
				continue
			}
			d := cur.dist + e.w
			if cur.started && cur.vertical != e.vertical {
				d += (e.w + 1) * (e.w + 1)
			}
			if d < next.dist {
				next.dist = d
				next.prev = cur
				next.vertical = e.vertical
				next.started = true
				pq.push(next)
			}
		}
	}

	if math.IsInf(end.dist, 1) {
		return nil
	}
	var path []domain.Point
	for n := end; n != nil; n = n.prev {
		path = append([]domain.Point{n.pt}, path...)
	}
	return path
}

// queue is a binary min-heap on dist.
type queue []*searchNode

func (q *queue) len() int { return len(*q) }

func (q *queue) push(n *searchNode) {
	*q = append(*q, n)
	i := len(*q) - 1
	for i > 0 {
		p := (i - 1) / 2
		if (*q)[i].dist >= (*q)[p].dist {
			break
		}
		(*q)[i], (*q)[p] = (*q)[p], (*q)[i]
		i = p
	}
}

func (q *queue) pop() *searchNode {
	old := *q
	top := old[0]
	last := len(old) - 1
	old[0] = old[last]
	*q = old[:last]

	n, i := len(*q), 0
	for {
		s, l, r := i, 2*i+1, 2*i+2
		if l < n && (*q)[l].dist < (*q)[s].dist {
			s = l
		}
		if r < n && (*q)[r].dist < (*q)[s].dist {
			s = r
		}
		if s == i {
			break
		}
		(*q)[i], (*q)[s] = (*q)[s], (*q)[i]
		i = s
	}
	return top
}

// simpleRoute is a Z or L shaped path through both antenna points.
func simpleRoute(from, to domain.Point, srcSide, dstSide side) []domain.Point {
	sdx, sdy := srcSide.dir()
	ddx, ddy := dstSide.dir()
	a1 := domain.Point{X: from.X + sdx*routeMargin, Y: from.Y + sdy*routeMargin}
	a2 := domain.Point{X: to.X + ddx*routeMargin, Y: to.Y + ddy*routeMargin}

	var pts []domain.Point
	switch {
	case srcSide.vertical() && dstSide.vertical():
		midY := (a1.Y + a2.Y) / 2
		pts = []domain.Point{from, a1, {X: from.X, Y: midY}, {X: to.X, Y: midY}, a2, to}
	case !srcSide.vertical() && !dstSide.vertical():
		midX := (a1.X + a2.X) / 2
		pts = []domain.Point{from, a1, {X: midX, Y: from.Y}, {X: midX, Y: to.Y}, a2, to}
	case srcSide.vertical():
		pts = []domain.Point{from, a1, {X: from.X, Y: to.Y}, to}
	default:
		pts = []domain.Point{from, a1, {X: to.X, Y: from.Y}, to}
	}
	return dedupe(simplify(pts))
}

// simplify drops interior waypoints that sit on a straight line.
func simplify(pts []domain.Point) []domain.Point {
	if len(pts) < 3 {
		return pts
	}
	out := []domain.Point{pts[0]}
	for i := 1; i < len(pts)-1; i++ {
		prev, cur, next := pts[i-1], pts[i], pts[i+1]
		sameX := math.Abs(prev.X-cur.X) < 0.5 && math.Abs(cur.X-next.X) < 0.5
		sameY := math.Abs(prev.Y-cur.Y) < 0.5 && math.Abs(cur.Y-next.Y) < 0.5
		if !sameX && !sameY {
			out = append(out, cur)
		}
	}
	return append(out, pts[len(pts)-1])
}

func dedupe(pts []domain.Point) []domain.Point {
	if len(pts) == 0 {
		return pts
	}
	out := []domain.Point{pts[0]}
	for _, p := range pts[1:] {
		last := out[len(out)-1]
		if math.Abs(p.X-last.X) > 0.5 || math.Abs(p.Y-last.Y) > 0.5 {
			out = append(out, p)
		}
	}
	return out
}

func uniqSorted(vals []float64) []float64 {
	seen := map[int64]bool{}
	var out []float64
	for _, v := range vals {
		k := int64(math.Round(v * 100))
		if !seen[k] {
			seen[k] = true
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func minOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(vals []float64) float64 {
	m := vals[0]
	for _, v := range vals[1:] {
		m = math.Max(m, v)
	}
	return m
}
