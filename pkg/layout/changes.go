package layout

import (
	"math"

	"github.com/matzehuels/topolayout/pkg/topology"
)

// HasUnseenNodes reports whether current contains an ID missing from
// previous.
func HasUnseenNodes(current, previous []string) bool {
	seen := make(map[string]struct{}, len(previous))
	for _, id := range previous {
		seen[id] = struct{}{}
	}
	for _, id := range current {
		if _, ok := seen[id]; !ok {
			return true
		}
	}
	return false
}

// HasNewNodesOfExistingRank reports whether some node of current that is
// not in previous has a non-empty rank also held by a node of previous.
// Edges are accepted to match the other change predicates and are not
// consulted.
func HasNewNodesOfExistingRank(current []topology.Node, edges []topology.Edge, previous []topology.Node) bool {
	known := make(map[string]struct{}, len(previous))
	ranks := make(map[string]struct{})
	for _, n := range previous {
		known[n.ID] = struct{}{}
		if n.Rank != "" {
			ranks[n.Rank] = struct{}{}
		}
	}
	for _, n := range current {
		if _, old := known[n.ID]; old || n.Rank == "" {
			continue
		}
		if _, ok := ranks[n.Rank]; ok {
			return true
		}
	}
	return false
}

// MinNodeDistance returns the smallest distance between the centres of two
// positioned nodes, or +Inf when fewer than two are positioned.
func MinNodeDistance(nodes []topology.Node) float64 {
	best := math.Inf(1)
	for i := range nodes {
		if !nodes[i].Positioned {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			if !nodes[j].Positioned {
				continue
			}
			d := math.Hypot(nodes[i].X-nodes[j].X, nodes[i].Y-nodes[j].Y)
			best = min(best, d)
		}
	}
	return best
}
