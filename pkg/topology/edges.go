package topology

import "strings"

// ConstructEdgeID returns the deterministic ID of the edge source→target.
func ConstructEdgeID(source, target string) string {
	return source + EdgeIDSeparator + target
}

// SplitEdgeID is the inverse of [ConstructEdgeID].
// ok is false when id does not contain the separator.
func SplitEdgeID(id string) (source, target string, ok bool) {
	return strings.Cut(id, EdgeIDSeparator)
}

// ReverseEdgeID returns the ID of the opposite-direction edge, or "" when id
// is not a valid edge ID.
func ReverseEdgeID(id string) string {
	source, target, ok := SplitEdgeID(id)
	if !ok {
		return ""
	}
	return ConstructEdgeID(target, source)
}

// DeriveEdges builds the directed edge list from the nodes' adjacency lists.
//
// Adjacency entries that do not name a node in nodes are dropped silently:
// node and adjacency updates arrive independently while streaming, so a
// dangling reference is transient and resolves with the next snapshot.
// Repeated adjacency entries yield a single edge. Both directions of a mutual
// link are kept; see [CollapseMultiEdges].
//
// Edges are returned in node order, then adjacency order.
func DeriveEdges(nodes []Node) []Edge {
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.ID] = struct{}{}
	}

	var edges []Edge
	seen := make(map[string]struct{})
	for _, n := range nodes {
		for _, target := range n.Adjacency {
			if _, ok := present[target]; !ok {
				continue
			}
			id := ConstructEdgeID(n.ID, target)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			edges = append(edges, Edge{ID: id, Source: n.ID, Target: target})
		}
	}
	return edges
}

// CollapseMultiEdges folds opposite-direction edge pairs into one edge.
//
// The edges are scanned once in order. When the reverse of the current edge
// has already been kept, that kept edge is marked Bidirectional and the
// current one is dropped; otherwise the current edge is kept. The direction
// that survives therefore depends on input order, which is fine because a
// bidirectional edge is drawn without arrow semantics.
//
// Running CollapseMultiEdges on its own output returns an equal slice.
func CollapseMultiEdges(edges []Edge) []Edge {
	result := make([]Edge, 0, len(edges))
	kept := make(map[string]int, len(edges))
	for _, e := range edges {
		if _, dup := kept[e.ID]; dup {
			continue
		}
		if !e.IsSelfLoop() {
			if i, ok := kept[ConstructEdgeID(e.Target, e.Source)]; ok {
				result[i].Bidirectional = true
				continue
			}
		}
		kept[e.ID] = len(result)
		result = append(result, e)
	}
	return result
}
