package topology

import (
	"slices"

	"github.com/matzehuels/topolayout/pkg/errors"
)

// EdgeIDSeparator joins source and target IDs in an edge ID.
// Node IDs may not contain it; it must stay stable because persisted layout
// caches are keyed by edge ID.
const EdgeIDSeparator = "---"

// Point is a screen coordinate.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a vertex of a topology snapshot.
//
// Label, LabelMinor, Rank and Meta are semantic fields owned by the snapshot.
// X, Y and Positioned are owned by the layout engine; Degree is owned by
// [UpdateNodeDegrees].
type Node struct {
	ID         string         `json:"id" yaml:"id"`
	Rank       string         `json:"rank,omitempty" yaml:"rank,omitempty"`
	Adjacency  []string       `json:"adjacency,omitempty" yaml:"adjacency,omitempty"`
	Label      string         `json:"label,omitempty" yaml:"label,omitempty"`
	LabelMinor string         `json:"label_minor,omitempty" yaml:"label_minor,omitempty"`
	Meta       map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`

	Degree     int     `json:"degree" yaml:"degree"`
	X          float64 `json:"x" yaml:"x"`
	Y          float64 `json:"y" yaml:"y"`
	Positioned bool    `json:"positioned,omitempty" yaml:"positioned,omitempty"`
}

// Position returns the node's centre. The result is meaningless unless
// Positioned is set.
func (n Node) Position() Point { return Point{X: n.X, Y: n.Y} }

// WithPosition returns a copy of n placed at p.
func (n Node) WithPosition(p Point) Node {
	n.X, n.Y, n.Positioned = p.X, p.Y, true
	return n
}

// WithoutPosition returns a copy of n with layout coordinates cleared.
func (n Node) WithoutPosition() Node {
	n.X, n.Y, n.Positioned = 0, 0, false
	return n
}

// Edge is a directed link derived from a node's adjacency list.
type Edge struct {
	ID            string  `json:"id" yaml:"id"`
	Source        string  `json:"source" yaml:"source"`
	Target        string  `json:"target" yaml:"target"`
	Points        []Point `json:"points,omitempty" yaml:"points,omitempty"`
	Bidirectional bool    `json:"bidirectional,omitempty" yaml:"bidirectional,omitempty"`
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// WithPoints returns a copy of e routed through pts. pts is copied.
func (e Edge) WithPoints(pts []Point) Edge {
	e.Points = slices.Clone(pts)
	return e
}

// Snapshot is one immutable topology state.
//
// Snapshots are compared by pointer identity in memoized consumers, so a new
// state must always be a new *Snapshot.
type Snapshot struct {
	Nodes []Node
}

// NewSnapshot validates node IDs and returns a snapshot holding a copy of
// nodes. Duplicate IDs and IDs containing [EdgeIDSeparator] are rejected.
func NewSnapshot(nodes ...Node) (*Snapshot, error) {
	seen := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		if err := errors.ValidateNodeID(n.ID, EdgeIDSeparator); err != nil {
			return nil, err
		}
		if _, dup := seen[n.ID]; dup {
			return nil, errors.New(errors.ErrCodeInvalidInput, "duplicate node id %q", n.ID)
		}
		seen[n.ID] = struct{}{}
	}
	return &Snapshot{Nodes: slices.Clone(nodes)}, nil
}

// Len returns the number of nodes.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Nodes)
}

// NodeIDs returns node IDs in snapshot order.
func (s *Snapshot) NodeIDs() []string {
	if s == nil {
		return nil
	}
	return NodeIDs(s.Nodes)
}

// NodeIDs extracts IDs from nodes, preserving order.
func NodeIDs(nodes []Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}

// IndexNodes maps node ID to its index in nodes.
func IndexNodes(nodes []Node) map[string]int {
	m := make(map[string]int, len(nodes))
	for i, n := range nodes {
		m[n.ID] = i
	}
	return m
}
