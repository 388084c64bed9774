// Package layered defines the contract between the layout engine and the
// algorithms that place a directed graph on ranks.
//
// An [Engine] receives sized nodes and edges with minimum rank spans and
// returns node centres plus edge routes. The built-in implementation lives in
// package sugiyama; package dot delegates to Graphviz. Engines are pure: the
// same [Graph] yields the same [Positions].
package layered

import (
	"context"
	"fmt"

	"github.com/matzehuels/topolayout/pkg/topology"
)

// Node is a box to be placed.
type Node struct {
	ID     string
	Width  float64
	Height float64
}

// Edge asks for Target to sit at least 1+MinLen ranks below Source.
// Self-loops are allowed and are routed as small loops beside the node.
type Edge struct {
	ID     string
	Source string
	Target string
	MinLen int
}

// Graph is the input of an [Engine].
type Graph struct {
	Nodes []Node
	Edges []Edge

	// NodeSep is the horizontal gap between neighbouring nodes of a rank.
	NodeSep float64
	// RankSep is the vertical gap between ranks.
	RankSep float64
}

// Positions is the output of an [Engine]. Coordinates start at (0,0) in the
// top-left corner; Width and Height bound every node box and route point.
type Positions struct {
	Nodes  map[string]topology.Point
	Edges  map[string][]topology.Point
	Width  float64
	Height float64
}

// Engine lays out a [Graph].
type Engine interface {
	Layout(ctx context.Context, g Graph) (*Positions, error)
}

// EngineFunc adapts a function to [Engine].
type EngineFunc func(ctx context.Context, g Graph) (*Positions, error)

// Layout calls f.
func (f EngineFunc) Layout(ctx context.Context, g Graph) (*Positions, error) {
	return f(ctx, g)
}

// Validate checks that node and edge IDs are unique and non-empty and that
// every edge joins known nodes.
func (g Graph) Validate() error {
	ids := make(map[string]struct{}, len(g.Nodes))
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("layered: empty node id")
		}
		if _, dup := ids[n.ID]; dup {
			return fmt.Errorf("layered: duplicate node %q", n.ID)
		}
		ids[n.ID] = struct{}{}
	}
	edgeIDs := make(map[string]struct{}, len(g.Edges))
	for _, e := range g.Edges {
		if e.ID == "" {
			return fmt.Errorf("layered: empty edge id")
		}
		if _, dup := edgeIDs[e.ID]; dup {
			return fmt.Errorf("layered: duplicate edge %q", e.ID)
		}
		edgeIDs[e.ID] = struct{}{}
		if _, ok := ids[e.Source]; !ok {
			return fmt.Errorf("layered: edge %q: unknown source %q", e.ID, e.Source)
		}
		if _, ok := ids[e.Target]; !ok {
			return fmt.Errorf("layered: edge %q: unknown target %q", e.ID, e.Target)
		}
	}
	return nil
}
