package sugiyama

import (
	"context"
	"slices"

	"github.com/matzehuels/topolayout/pkg/dag"
)

// orderRows reduces crossings by alternating downward and upward barycenter
// sweeps, each followed by transposition of neighbours. The best ordering
// seen is written back to g.
func orderRows(ctx context.Context, g *dag.DAG, passes int) error {
	rows := g.RowIDs()
	if len(rows) < 2 {
		return nil
	}

	best := g.Orders()
	bestCross := dag.CountCrossings(g, best)

	for pass := 0; pass < passes && bestCross > 0; pass++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		orders := cloneOrders(best)
		if pass%2 == 0 {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = barycenterSort(orders[rows[i]], g.Parents, dag.PosMap(orders[rows[i-1]]))
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = barycenterSort(orders[rows[i]], g.Children, dag.PosMap(orders[rows[i+1]]))
			}
		}
		transpose(g, rows, orders)

		if c := dag.CountCrossings(g, orders); c < bestCross {
			best, bestCross = orders, c
		}
	}

	for r, ids := range best {
		g.SetRowOrder(r, ids)
	}
	return nil
}

// barycenterSort orders ids by the mean position of their neighbours in the
// adjacent row. Nodes without neighbours there keep their current index as
// their weight. The sort is stable.
func barycenterSort(ids []string, neighbours func(string) []string, adjPos map[string]int) []string {
	weight := make(map[string]float64, len(ids))
	for i, id := range ids {
		sum, n := 0, 0
		for _, nb := range neighbours(id) {
			if p, ok := adjPos[nb]; ok {
				sum += p
				n++
			}
		}
		if n == 0 {
			weight[id] = float64(i)
		} else {
			weight[id] = float64(sum) / float64(n)
		}
	}

	out := slices.Clone(ids)
	slices.SortStableFunc(out, func(a, b string) int {
		switch wa, wb := weight[a], weight[b]; {
		case wa < wb:
			return -1
		case wa > wb:
			return 1
		}
		return 0
	})
	return out
}

// transpose swaps adjacent nodes while that lowers the crossings with both
// neighbouring rows.
func transpose(g *dag.DAG, rows []int, orders map[int][]string) {
	for improved, rounds := true, 0; improved && rounds < len(rows)*4; rounds++ {
		improved = false
		for i, r := range rows {
			var above, below map[string]int
			if i > 0 {
				above = dag.PosMap(orders[rows[i-1]])
			}
			if i < len(rows)-1 {
				below = dag.PosMap(orders[rows[i+1]])
			}

			row := orders[r]
			for j := 0; j+1 < len(row); j++ {
				u, v := row[j], row[j+1]
				before := pairCrossings(g, u, v, above, below)
				after := pairCrossings(g, v, u, above, below)
				if after < before {
					row[j], row[j+1] = v, u
					improved = true
				}
			}
		}
	}
}

func pairCrossings(g *dag.DAG, left, right string, above, below map[string]int) int {
	c := 0
	if above != nil {
		c += dag.CountPairCrossings(g, left, right, above, true)
	}
	if below != nil {
		c += dag.CountPairCrossings(g, left, right, below, false)
	}
	return c
}

func cloneOrders(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
