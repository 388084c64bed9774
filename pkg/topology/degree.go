package topology

// UpdateNodeDegrees returns a copy of nodes with Degree set to the number of
// edges touching each node. A self-loop is a single edge and counts once.
// Edges referring to nodes outside nodes are ignored.
func UpdateNodeDegrees(nodes []Node, edges []Edge) []Node {
	degrees := make(map[string]int, len(nodes))
	for _, e := range edges {
		degrees[e.Source]++
		if e.Target != e.Source {
			degrees[e.Target]++
		}
	}

	out := make([]Node, len(nodes))
	for i, n := range nodes {
		n.Degree = degrees[n.ID]
		out[i] = n
	}
	return out
}
