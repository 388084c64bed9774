package layout

import (
	"cmp"
	"math"
	"slices"

	"github.com/matzehuels/topolayout/pkg/topology"
)

// singletonRow is the number of singletons kept on a single row when the
// canvas width does not bound the grid.
const singletonRow = 8

// packSingletons places every degree-0 node of nodes on a grid and returns
// the updated slice. The grid goes to the right of the connected nodes when
// their layout is portrait (width/height < 1) and below it otherwise; its
// first cell lines up with the connected block's top or left centre.
//
// Without a canvas width, up to singletonRow singletons share one row and
// larger sets get an about square grid of ceil(sqrt(n)) columns. With a
// width the column count is widened or narrowed to the space left free.
// Singletons are ordered by rank, ties keeping input order.
func packSingletons(nodes []topology.Node, connW, connH float64, m metrics, opts Options) {
	var singles []int
	for i, n := range nodes {
		if n.Degree == 0 {
			singles = append(singles, i)
		}
	}
	if len(singles) == 0 {
		return
	}
	slices.SortStableFunc(singles, func(a, b int) int { return cmp.Compare(nodes[a].Rank, nodes[b].Rank) })

	x0, y0 := m.nodeW/2, m.nodeH/2
	if conn := centres(nodes, func(n topology.Node) bool { return n.Degree > 0 }); !conn.empty {
		aspect := 1.0
		if connH > 0 {
			aspect = connW / connH
		}
		if aspect < 1 {
			x0, y0 = conn.maxX+m.pitchX(), conn.minY
		} else {
			x0, y0 = conn.minX, conn.maxY+m.pitchY()
		}
	}

	cols := max(int(math.Ceil(math.Sqrt(float64(len(singles))))), min(len(singles), singletonRow))
	if inner := opts.innerWidth(); inner > 0 {
		free := inner - (x0 - m.nodeW/2)
		fit := int(math.Floor((free + m.nodeSep) / m.pitchX()))
		switch {
		case fit > cols:
			cols = min(len(singles), fit)
		case fit < cols:
			cols = max(1, fit)
		}
	}

	for k, i := range singles {
		row, col := k/cols, k%cols
		nodes[i] = nodes[i].WithPosition(topology.Point{
			X: x0 + float64(col)*m.pitchX(),
			Y: y0 + float64(row)*m.pitchY(),
		})
	}
}
