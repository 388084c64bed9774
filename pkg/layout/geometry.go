package layout

import (
	"math"

	"github.com/matzehuels/topolayout/pkg/topology"
)

// box is a bounding box over node centres.
type box struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func newBox() box {
	return box{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1), empty: true}
}

func (b *box) add(p topology.Point) {
	b.minX, b.maxX = min(b.minX, p.X), max(b.maxX, p.X)
	b.minY, b.maxY = min(b.minY, p.Y), max(b.maxY, p.Y)
	b.empty = false
}

// centres returns the box over positioned nodes, optionally filtered.
func centres(nodes []topology.Node, keep func(topology.Node) bool) box {
	b := newBox()
	for _, n := range nodes {
		if n.Positioned && (keep == nil || keep(n)) {
			b.add(n.Position())
		}
	}
	return b
}

// extent returns the size of the region from the origin to the far edge of
// every node box and route point.
func extent(nodes []topology.Node, edges []topology.Edge, m metrics) (w, h float64) {
	for _, n := range nodes {
		if n.Positioned {
			w = max(w, n.X+m.nodeW/2)
			h = max(h, n.Y+m.nodeH/2)
		}
	}
	for _, e := range edges {
		for _, p := range e.Points {
			w = max(w, p.X)
			h = max(h, p.Y)
		}
	}
	return w, h
}

// straightRoute joins two node centres. Self-loops get a small loop on the
// right of the node.
func straightRoute(from, to topology.Point, selfLoop bool, m metrics) []topology.Point {
	if !selfLoop {
		return []topology.Point{from, to}
	}
	right := from.X + m.nodeW/2
	out := right + max(m.nodeSep/2, m.nodeW/4)
	top, bottom := from.Y-m.nodeH/4, from.Y+m.nodeH/4
	return []topology.Point{{X: right, Y: top}, {X: out, Y: top}, {X: out, Y: bottom}, {X: right, Y: bottom}}
}

// shift moves every node and route point by (dx, dy).
func shift(nodes []topology.Node, edges []topology.Edge, dx, dy float64) {
	if dx == 0 && dy == 0 {
		return
	}
	for i := range nodes {
		if nodes[i].Positioned {
			nodes[i].X += dx
			nodes[i].Y += dy
		}
	}
	for i := range edges {
		pts := make([]topology.Point, len(edges[i].Points))
		for j, p := range edges[i].Points {
			pts[j] = topology.Point{X: p.X + dx, Y: p.Y + dy}
		}
		edges[i].Points = pts
	}
}

// centre offsets the layout into the canvas: by the margins, and where the
// layout is smaller than the canvas, so that its node centres are centred.
func centre(nodes []topology.Node, edges []topology.Edge, width, height float64, opts Options) {
	b := centres(nodes, nil)
	if b.empty {
		return
	}
	dx, dy := opts.Margins.Left, opts.Margins.Top
	if inner := opts.innerWidth(); inner > 0 && width < inner {
		dx += (inner - (b.minX + b.maxX)) / 2
	}
	if inner := opts.innerHeight(); inner > 0 && height < inner {
		dy += (inner - (b.minY + b.maxY)) / 2
	}
	shift(nodes, edges, dx, dy)
}
