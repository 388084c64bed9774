package sugiyama

import (
	"context"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/topolayout/pkg/dag"
	"github.com/matzehuels/topolayout/pkg/dag/transform"
	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/topology"
)

// DefaultPasses is the number of ordering sweeps when Engine.Passes is zero.
const DefaultPasses = 24

// Engine lays out graphs with the Sugiyama method. The zero value is usable.
type Engine struct {
	// Passes bounds the ordering sweeps per component. Zero means
	// DefaultPasses.
	Passes int
}

// New returns an engine with default settings.
func New() *Engine { return &Engine{} }

// Name identifies the engine in logs and hooks.
func (e *Engine) Name() string { return "sugiyama" }

// grid is the cell size shared by all components of one layout.
type grid struct {
	colPitch, rowPitch float64
	cellW, cellH       float64
}

func (gr grid) center(col, row int) topology.Point {
	return topology.Point{
		X: float64(col)*gr.colPitch + gr.cellW/2,
		Y: float64(row)*gr.rowPitch + gr.cellH/2,
	}
}

// Layout implements [layered.Engine].
func (e *Engine) Layout(ctx context.Context, g layered.Graph) (*layered.Positions, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	pos := &layered.Positions{
		Nodes: make(map[string]topology.Point, len(g.Nodes)),
		Edges: make(map[string][]topology.Point, len(g.Edges)),
	}
	if len(g.Nodes) == 0 {
		return pos, nil
	}

	gr := grid{}
	for _, n := range g.Nodes {
		gr.cellW = max(gr.cellW, n.Width)
		gr.cellH = max(gr.cellH, n.Height)
	}
	gr.colPitch = gr.cellW + g.NodeSep
	gr.rowPitch = gr.cellH + g.RankSep

	passes := e.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}

	offset := 0.0
	for _, comp := range components(g) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cols, err := layoutComponent(ctx, comp, gr, passes, offset, pos)
		if err != nil {
			return nil, err
		}
		offset += float64(cols) * gr.colPitch
	}

	sizes := make(map[string]layered.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		sizes[n.ID] = n
	}
	for _, edge := range g.Edges {
		if edge.Source == edge.Target {
			pos.Edges[edge.ID] = selfLoop(pos.Nodes[edge.Source], sizes[edge.Source], g.NodeSep)
		}
	}

	pos.Width, pos.Height = bounds(pos, sizes)
	return pos, nil
}

// component is a connected subgraph, with nodes and edges in input order.
type component struct {
	nodes []layered.Node
	edges []layered.Edge
}

// components splits g into connected components ordered by their first node
// in input order. Self-loops are dropped.
func components(g layered.Graph) []component {
	index := make(map[string]int64, len(g.Nodes))
	ug := simple.NewUndirectedGraph()
	for i, n := range g.Nodes {
		index[n.ID] = int64(i)
		ug.AddNode(simple.Node(i))
	}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		ug.SetEdge(ug.NewEdge(simple.Node(index[e.Source]), simple.Node(index[e.Target])))
	}

	compOf := make(map[int64]int, len(g.Nodes))
	var sets [][]int64
	for _, c := range topo.ConnectedComponents(ug) {
		ids := make([]int64, len(c))
		for i, n := range c {
			ids[i] = n.ID()
		}
		slices.Sort(ids)
		sets = append(sets, ids)
	}
	slices.SortFunc(sets, func(a, b []int64) int { return int(a[0] - b[0]) })

	comps := make([]component, len(sets))
	for ci, ids := range sets {
		for _, id := range ids {
			compOf[id] = ci
			comps[ci].nodes = append(comps[ci].nodes, g.Nodes[id])
		}
	}
	for _, e := range g.Edges {
		if e.Source == e.Target {
			continue
		}
		ci := compOf[index[e.Source]]
		comps[ci].edges = append(comps[ci].edges, e)
	}
	return comps
}

// layoutComponent places one component starting at x offset and returns the
// number of grid columns it used.
func layoutComponent(ctx context.Context, c component, gr grid, passes int, offset float64, pos *layered.Positions) (int, error) {
	g := dag.New()
	for _, n := range c.nodes {
		if err := g.AddNode(dag.Node{ID: n.ID, Width: n.Width, Height: n.Height}); err != nil {
			return 0, fmt.Errorf("sugiyama: %w", err)
		}
	}
	for _, e := range c.edges {
		if err := g.AddEdge(dag.Edge{ID: e.ID, From: e.Source, To: e.Target, MinLen: e.MinLen}); err != nil {
			return 0, fmt.Errorf("sugiyama: edge %s: %w", e.ID, err)
		}
	}

	transform.BreakCycles(g)
	transform.AssignLayers(g)
	chains := transform.Subdivide(g)

	if err := orderRows(ctx, g, passes); err != nil {
		return 0, err
	}
	cols := assignColumns(g)

	centers := make(map[string]topology.Point, g.NodeCount())
	for _, n := range g.Nodes() {
		p := gr.center(cols[n.ID], n.Row)
		p.X += offset
		centers[n.ID] = p
		if !n.IsDummy() {
			pos.Nodes[n.ID] = p
		}
	}

	reversed := make(map[string]bool, len(c.edges))
	for _, e := range g.Edges() {
		if e.Reversed {
			reversed[e.ID] = true
		}
	}
	for _, e := range c.edges {
		pos.Edges[e.ID] = route(e, chains[e.ID], reversed[e.ID], centers)
	}

	return g.MaxRowWidth(), nil
}

// route returns the polyline of e from source to target.
func route(e layered.Edge, chain []string, reversed bool, centers map[string]topology.Point) []topology.Point {
	upper, lower := e.Source, e.Target
	if reversed {
		upper, lower = lower, upper
	}
	pts := make([]topology.Point, 0, len(chain)+2)
	pts = append(pts, centers[upper])
	for _, id := range chain {
		pts = append(pts, centers[id])
	}
	pts = append(pts, centers[lower])
	if reversed {
		slices.Reverse(pts)
	}
	return pts
}

// selfLoop draws a rectangular loop off the right edge of the node box.
func selfLoop(c topology.Point, n layered.Node, sep float64) []topology.Point {
	right := c.X + n.Width/2
	out := right + max(sep/2, n.Width/4)
	top, bottom := c.Y-n.Height/4, c.Y+n.Height/4
	return []topology.Point{
		{X: right, Y: top},
		{X: out, Y: top},
		{X: out, Y: bottom},
		{X: right, Y: bottom},
	}
}

// bounds returns the extent of all node boxes and route points.
func bounds(pos *layered.Positions, sizes map[string]layered.Node) (w, h float64) {
	for id, p := range pos.Nodes {
		n := sizes[id]
		w = max(w, p.X+n.Width/2)
		h = max(h, p.Y+n.Height/2)
	}
	for _, pts := range pos.Edges {
		for _, p := range pts {
			w = max(w, p.X)
			h = max(h, p.Y)
		}
	}
	return w, h
}

var _ layered.Engine = (*Engine)(nil)
