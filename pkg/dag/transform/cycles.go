package transform

import "github.com/matzehuels/topolayout/pkg/dag"

// BreakCycles makes g acyclic by reversing every back edge found by a
// depth-first search that starts from the sources and then from any node
// still unvisited, in insertion order. Reversed edges keep their ID and have
// Reversed set, so routes can be flipped back afterwards.
//
// It returns the number of reversed edges. Reversing instead of removing
// keeps every edge in the layout: a cyclic topology still draws all links.
func BreakCycles(g *dag.DAG) int {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, g.NodeCount())
	var backEdges []dag.Edge

	var dfs func(node string)
	dfs = func(node string) {
		color[node] = gray
		for _, e := range g.OutEdges(node) {
			switch color[e.To] {
			case white:
				dfs(e.To)
			case gray:
				backEdges = append(backEdges, e)
			}
		}
		color[node] = black
	}

	for _, n := range g.Sources() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}
	for _, n := range g.Nodes() {
		if color[n.ID] == white {
			dfs(n.ID)
		}
	}

	for _, e := range backEdges {
		g.ReverseEdge(e.ID, e.From, e.To)
	}
	return len(backEdges)
}
