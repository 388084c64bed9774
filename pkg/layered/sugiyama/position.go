package sugiyama

import (
	"math"

	"github.com/matzehuels/topolayout/pkg/dag"
)

// assignColumns puts every node of g on a column of a grid as wide as the
// widest row, keeping each row's order.
//
// A node wants the rounded mean column of its parents; parentless nodes
// want their row centred. Columns are then made strictly increasing from
// the left and clamped to the grid from the right, so a row that fills the
// grid always gets columns 0..n-1.
func assignColumns(g *dag.DAG) map[string]int {
	width := g.MaxRowWidth()
	cols := make(map[string]int, g.NodeCount())

	for _, r := range g.RowIDs() {
		row := g.NodesInRow(r)
		shift := (width - len(row)) / 2

		want := make([]int, len(row))
		for i, n := range row {
			want[i] = i + shift
			sum, k := 0, 0
			for _, p := range g.Parents(n.ID) {
				if c, ok := cols[p]; ok {
					sum += c
					k++
				}
			}
			if k > 0 {
				want[i] = int(math.Round(float64(sum) / float64(k)))
			}
		}

		for i := range want {
			if i == 0 {
				want[i] = max(want[i], 0)
			} else {
				want[i] = max(want[i], want[i-1]+1)
			}
		}
		for i := len(want) - 1; i >= 0; i-- {
			if i == len(want)-1 {
				want[i] = min(want[i], width-1)
			} else {
				want[i] = min(want[i], want[i+1]-1)
			}
		}

		for i, n := range row {
			cols[n.ID] = want[i]
		}
	}
	return cols
}
