package transform

import "github.com/matzehuels/topolayout/pkg/dag"

// AssignLayers assigns rows by longest path from the sources.
//
// Each node is placed at the maximum over its incoming edges of
// parent.Row + 1 + edge.MinLen, so sources sit on row 0 and every edge spans
// at least 1+MinLen rows. Existing rows are overwritten.
//
// The graph must be acyclic; run [BreakCycles] first. Nodes on a cycle never
// reach in-degree zero and keep row 0.
//
// Time complexity is O(V·E) because out-edges are collected per node; layout
// inputs are capped well below the size where this matters.
func AssignLayers(g *dag.DAG) {
	nodes := g.Nodes()
	inDegree := make(map[string]int, len(nodes))
	rows := make(map[string]int, len(nodes))
	queue := make([]string, 0, len(nodes))

	for _, n := range nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]

		for _, e := range g.OutEdges(curr) {
			if row := rows[curr] + 1 + max(e.MinLen, 0); row > rows[e.To] {
				rows[e.To] = row
			}
			inDegree[e.To]--
			if inDegree[e.To] == 0 {
				queue = append(queue, e.To)
			}
		}
	}

	g.SetRows(rows)
}
