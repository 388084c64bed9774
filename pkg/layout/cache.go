package layout

import (
	"maps"
	"slices"

	"github.com/matzehuels/topolayout/pkg/topology"
)

// Cache is the layout history of one topology. Treat it as immutable: [Do]
// returns a new Cache instead of modifying the one it was given.
//
// A Cache is plain data and encodes to JSON, so callers may persist it.
type Cache struct {
	// Key is the topology key the cache was built for.
	Key string `json:"key"`

	// Nodes holds the last position of every node ever laid out.
	Nodes map[string]NodeEntry `json:"nodes"`

	// Edges holds the last route of every edge ever laid out.
	Edges map[string]EdgeEntry `json:"edges"`

	// Last is the most recent layout.
	Last *Frame `json:"last,omitempty"`
}

// NodeEntry is the cached geometry of a node. Rank is kept for rank-based
// insertion only and is never copied onto nodes.
type NodeEntry struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Rank string  `json:"rank,omitempty"`
}

// EdgeEntry is the cached route of an edge together with the node centres
// it was routed between. A route is reused only while both centres are
// unchanged.
type EdgeEntry struct {
	Points []topology.Point `json:"points"`
	From   topology.Point   `json:"from"`
	To     topology.Point   `json:"to"`
}

// Frame is one layout result.
type Frame struct {
	Nodes  []topology.Node `json:"nodes"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
}

// NewCache returns an empty cache for key.
func NewCache(key string) *Cache {
	return &Cache{
		Key:   key,
		Nodes: map[string]NodeEntry{},
		Edges: map[string]EdgeEntry{},
	}
}

// Len returns the number of cached nodes.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Nodes)
}

// NodeIDs returns the IDs of all cached nodes, sorted.
func (c *Cache) NodeIDs() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.Nodes))
}

// Node returns the cached entry for id.
func (c *Cache) Node(id string) (NodeEntry, bool) {
	if c == nil {
		return NodeEntry{}, false
	}
	e, ok := c.Nodes[id]
	return e, ok
}

// Edge returns the cached entry for id.
func (c *Cache) Edge(id string) (EdgeEntry, bool) {
	if c == nil {
		return EdgeEntry{}, false
	}
	e, ok := c.Edges[id]
	return e, ok
}

// usable reports whether c holds a previous layout for key.
func (c *Cache) usable(key string) bool {
	return c != nil && c.Key == key && c.Last != nil
}

// with returns a copy of c extended by the positioned nodes and edges of a
// layout, which also becomes Last. c may be nil.
func (c *Cache) with(key string, nodes []topology.Node, edges []topology.Edge, width, height float64) *Cache {
	next := NewCache(key)
	if c != nil && c.Key == key {
		next.Nodes = maps.Clone(c.Nodes)
		next.Edges = maps.Clone(c.Edges)
	}
	if next.Nodes == nil {
		next.Nodes = map[string]NodeEntry{}
	}
	if next.Edges == nil {
		next.Edges = map[string]EdgeEntry{}
	}

	pos := make(map[string]topology.Point, len(nodes))
	for _, n := range nodes {
		if !n.Positioned {
			continue
		}
		next.Nodes[n.ID] = NodeEntry{X: n.X, Y: n.Y, Rank: n.Rank}
		pos[n.ID] = n.Position()
	}
	for _, e := range edges {
		from, okFrom := pos[e.Source]
		to, okTo := pos[e.Target]
		if len(e.Points) < 2 || !okFrom || !okTo {
			continue
		}
		next.Edges[e.ID] = EdgeEntry{Points: slices.Clone(e.Points), From: from, To: to}
	}

	next.Last = &Frame{Nodes: slices.Clone(nodes), Width: width, Height: height}
	return next
}
