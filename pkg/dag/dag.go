package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the same
	// ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrSelfLoop is returned by [DAG.AddEdge] for edges whose endpoints are
	// the same node. Self-loops cannot be layered and are routed separately.
	ErrSelfLoop = errors.New("self-loop")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge
	// connects nodes that are not in adjacent rows.
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// NodeKind distinguishes topology nodes from nodes synthesized during layout.
type NodeKind int

const (
	// NodeKindRegular is a node of the input graph.
	NodeKindRegular NodeKind = iota
	// NodeKindDummy is a zero-size waypoint inserted where an edge crosses a row.
	NodeKindDummy
)

// Node is a vertex with a row (layer) assignment.
type Node struct {
	ID     string
	Row    int
	Kind   NodeKind
	Width  float64
	Height float64

	// EdgeID names the routed edge a dummy node belongs to. Empty for
	// regular nodes.
	EdgeID string
}

// IsDummy reports whether the node is a synthesized edge waypoint.
func (n Node) IsDummy() bool { return n.Kind == NodeKindDummy }

// Edge is a directed connection.
//
// ID identifies the routed edge. After [transform.Subdivide] all segments of a
// long edge share the ID of the edge they replace.
type Edge struct {
	ID   string
	From string
	To   string

	// MinLen is the number of extra rows the edge must span beyond one.
	MinLen int
	// Reversed is set when cycle breaking flipped the edge. Routes of reversed
	// edges are read back to front.
	Reversed bool
}

// DAG is a directed graph with row assignments, used as the working structure
// of layered layout. Iteration order is insertion order everywhere so results
// are deterministic for a given input order.
//
// The zero value is not usable; use [New]. A DAG is not safe for concurrent use.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	outgoing map[string][]string
	incoming map[string][]string
	rows     map[int][]*Node
}

// New creates an empty graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
	}
}

// AddNode adds a node and indexes it by its Row.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	d.rows[node.Row] = append(d.rows[node.Row], node)
	return nil
}

// AddEdge adds a directed edge between two existing, distinct nodes.
// Parallel edges are allowed; they keep their own IDs.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.From]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := d.nodes[e.To]; !ok {
		return ErrUnknownTargetNode
	}
	if e.From == e.To {
		return ErrSelfLoop
	}
	d.edges = append(d.edges, e)
	d.outgoing[e.From] = append(d.outgoing[e.From], e.To)
	d.incoming[e.To] = append(d.incoming[e.To], e.From)
	return nil
}

// RemoveEdge removes the first edge from→to with the given ID.
// It is a no-op when no such edge exists.
func (d *DAG) RemoveEdge(id, from, to string) {
	i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.ID == id && e.From == from && e.To == to })
	if i < 0 {
		return
	}
	d.edges = slices.Delete(d.edges, i, i+1)
	d.outgoing[from] = removeOne(d.outgoing[from], to)
	d.incoming[to] = removeOne(d.incoming[to], from)
}

func removeOne(ids []string, id string) []string {
	if i := slices.Index(ids, id); i >= 0 {
		return slices.Delete(ids, i, i+1)
	}
	return ids
}

// ReverseEdge flips the direction of the first edge from→to with the given
// ID and toggles its Reversed flag. It reports whether an edge was flipped.
func (d *DAG) ReverseEdge(id, from, to string) bool {
	i := slices.IndexFunc(d.edges, func(e Edge) bool { return e.ID == id && e.From == from && e.To == to })
	if i < 0 {
		return false
	}
	e := d.edges[i]
	d.RemoveEdge(id, from, to)
	e.From, e.To, e.Reversed = e.To, e.From, !e.Reversed
	_ = d.AddEdge(e)
	return true
}

// SetRows updates row assignments and rebuilds the row index.
// Nodes missing from rows keep their current row.
func (d *DAG) SetRows(rows map[string]int) {
	d.rows = make(map[int][]*Node)
	for _, id := range d.order {
		n := d.nodes[id]
		if r, ok := rows[id]; ok {
			n.Row = r
		}
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// SetRowOrder replaces the left-to-right order of row with ids.
// ids must be a permutation of the nodes currently in the row.
func (d *DAG) SetRowOrder(row int, ids []string) {
	nodes := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n, ok := d.nodes[id]; ok && n.Row == row {
			nodes = append(nodes, n)
		}
	}
	d.rows[row] = nodes
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// graph's own nodes.
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	for i, id := range d.order {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// OutEdges returns copies of the edges leaving id.
func (d *DAG) OutEdges(id string) []Edge {
	var out []Edge
	for _, e := range d.edges {
		if e.From == id {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the targets of edges leaving id. Parallel edges repeat the
// target. The slice must not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the sources of edges entering id. The slice must not be
// modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of edges leaving id.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of edges entering id.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// NodesInRow returns the nodes of row in their current left-to-right order.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowIDs returns all row indices in ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// MaxRow returns the highest row index, or 0 for an empty graph.
func (d *DAG) MaxRow() int {
	ids := d.RowIDs()
	if len(ids) == 0 {
		return 0
	}
	return ids[len(ids)-1]
}

// MaxRowWidth returns the number of nodes in the widest row.
func (d *DAG) MaxRowWidth() int {
	w := 0
	for _, nodes := range d.rows {
		w = max(w, len(nodes))
	}
	return w
}

// Orders returns the current left-to-right order of every row.
func (d *DAG) Orders() map[int][]string {
	orders := make(map[int][]string, len(d.rows))
	for r, nodes := range d.rows {
		orders[r] = NodeIDs(nodes)
	}
	return orders
}

// Sources returns nodes without incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Validate checks that every edge connects consecutive rows and that the
// graph is acyclic. It is meant to run after subdivision.
func (d *DAG) Validate() error {
	for _, e := range d.edges {
		if d.nodes[e.To].Row != d.nodes[e.From].Row+1 {
			return ErrNonConsecutiveRows
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

// PosMap maps each ID to its index in ids.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node, preserving order.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
