package transform

import (
	"fmt"

	"github.com/matzehuels/topolayout/pkg/dag"
)

// Subdivide replaces every edge spanning more than one row by a chain of
// [dag.NodeKindDummy] nodes, one per intermediate row:
//
//	Before: lb (row 0) → db (row 3)
//	After:  lb → d1 → d2 → db
//
// All segments keep the ID and Reversed flag of the edge they replace, and
// every dummy records that ID in EdgeID. The returned map lists, per edge ID,
// the dummy IDs from the upper row to the lower row; rows are assigned, so
// run [AssignLayers] first.
//
// Dummy IDs have the form "edge#row" with a numeric suffix on collision, and
// never clash with existing node IDs.
func Subdivide(g *dag.DAG) map[string][]string {
	gen := newIDGen(g.Nodes())
	chains := make(map[string][]string)

	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row <= src.Row+1 {
			continue
		}

		g.RemoveEdge(e.ID, e.From, e.To)
		prev := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := gen.next(e.ID, row)
			mustAdd(g.AddNode(dag.Node{ID: id, Row: row, Kind: dag.NodeKindDummy, EdgeID: e.ID}))
			mustAdd(g.AddEdge(dag.Edge{ID: e.ID, From: prev, To: id, Reversed: e.Reversed}))
			chains[e.ID] = append(chains[e.ID], id)
			prev = id
		}
		mustAdd(g.AddEdge(dag.Edge{ID: e.ID, From: prev, To: dst.ID, Reversed: e.Reversed}))
	}
	return chains
}

// mustAdd panics on errors that indicate a bug in Subdivide itself: every ID
// comes from idGen and every endpoint was just added.
func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	m := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		m[n.ID] = struct{}{}
	}
	return &idGen{used: m}
}

func (gen *idGen) next(base string, row int) string {
	prefix := fmt.Sprintf("%s#%d", base, row)
	id := prefix
	for i := 1; ; i++ {
		if _, exists := gen.used[id]; !exists {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s__%d", prefix, i)
	}
}
