package layout

import (
	"math"

	"github.com/matzehuels/topolayout/pkg/topology"
)

// applyCachedPositions returns nodes with x and y taken from c for every
// node c knows. Nodes c does not know are returned unpositioned. No other
// field is read from c.
func applyCachedPositions(nodes []topology.Node, c *Cache) []topology.Node {
	out := make([]topology.Node, len(nodes))
	for i, n := range nodes {
		if e, ok := c.Node(n.ID); ok {
			out[i] = n.WithPosition(topology.Point{X: e.X, Y: e.Y})
		} else {
			out[i] = n.WithoutPosition()
		}
	}
	return out
}

// routeFromCache returns edges with cached routes where both endpoints are
// still where they were when the route was computed, and straight routes
// between node centres otherwise.
func routeFromCache(edges []topology.Edge, nodes []topology.Node, c *Cache, m metrics) []topology.Edge {
	pos := make(map[string]topology.Point, len(nodes))
	for _, n := range nodes {
		if n.Positioned {
			pos[n.ID] = n.Position()
		}
	}

	out := make([]topology.Edge, len(edges))
	for i, e := range edges {
		from, to := pos[e.Source], pos[e.Target]
		if entry, ok := c.Edge(e.ID); ok && len(entry.Points) >= 2 && entry.From == from && entry.To == to {
			out[i] = e.WithPoints(entry.Points)
		} else {
			out[i] = e.WithPoints(straightRoute(from, to, e.IsSelfLoop(), m))
		}
	}
	return out
}

// insertByRank positions the unpositioned nodes of nodes without moving the
// others. A node whose rank is held by a positioned node goes into the
// first free slot to the right of the right-most such node, on its row.
// When no positioned node has the rank, the right-most cached node of that rank
// is the anchor instead. Nodes left over are lined up in a new row below
// everything else.
func insertByRank(nodes []topology.Node, c *Cache, m metrics) {
	occupied := func(p topology.Point) bool {
		for _, n := range nodes {
			if n.Positioned && math.Abs(n.X-p.X) < m.pitchX()/2 && math.Abs(n.Y-p.Y) < m.pitchY()/2 {
				return true
			}
		}
		return false
	}
	slot := func(p topology.Point) topology.Point {
		for occupied(p) {
			p.X += m.pitchX()
		}
		return p
	}

	var rest []int
	for i, n := range nodes {
		if n.Positioned {
			continue
		}
		anchor, ok := rightMostOfRank(nodes, c, n.Rank)
		if !ok {
			rest = append(rest, i)
			continue
		}
		nodes[i] = n.WithPosition(slot(topology.Point{X: anchor.X + m.pitchX(), Y: anchor.Y}))
	}

	if len(rest) == 0 {
		return
	}
	b := centres(nodes, nil)
	start := topology.Point{X: m.nodeW / 2, Y: m.nodeH / 2}
	if !b.empty {
		start = topology.Point{X: b.minX, Y: b.maxY + m.pitchY()}
	}
	for _, i := range rest {
		p := slot(start)
		nodes[i] = nodes[i].WithPosition(p)
		start = p
	}
}

func rightMostOfRank(nodes []topology.Node, c *Cache, rank string) (topology.Point, bool) {
	if rank == "" {
		return topology.Point{}, false
	}
	var best topology.Point
	found := false
	for _, n := range nodes {
		if n.Positioned && n.Rank == rank && (!found || n.X > best.X) {
			best, found = n.Position(), true
		}
	}
	if found {
		return best, true
	}
	for _, id := range c.NodeIDs() {
		if e := c.Nodes[id]; e.Rank == rank && (!found || e.X > best.X) {
			best, found = topology.Point{X: e.X, Y: e.Y}, true
		}
	}
	return best, found
}
