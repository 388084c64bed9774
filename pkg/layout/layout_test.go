package layout

import (
	"context"
	stderrors "errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/topology"
)

// With this scale nodes are 30px wide and separations 100px.
var testScale = LinearScale(40)

func node(id, rank string, adjacency ...string) topology.Node {
	return topology.Node{ID: id, Rank: rank, Label: id, Adjacency: adjacency}
}

func do(t *testing.T, nodes []topology.Node, opts Options) *Result {
	t.Helper()
	if opts.Scale == nil {
		opts.Scale = testScale
	}
	res, err := Do(context.Background(), nodes, topology.DeriveEdges(nodes), opts)
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	return res
}

func byID(res *Result) map[string]topology.Node {
	m := make(map[string]topology.Node, len(res.Nodes))
	for _, n := range res.Nodes {
		m[n.ID] = n
	}
	return m
}

func edgesByID(res *Result) map[string]topology.Edge {
	m := make(map[string]topology.Edge, len(res.Edges))
	for _, e := range res.Edges {
		m[e.ID] = e
	}
	return m
}

func samePositions(t *testing.T, want, got *Result) {
	t.Helper()
	g := byID(got)
	for _, w := range want.Nodes {
		if n, ok := g[w.ID]; !ok || n.X != w.X || n.Y != w.Y {
			t.Errorf("node %s at (%v,%v), want (%v,%v)", w.ID, n.X, n.Y, w.X, w.Y)
		}
	}
	ge := edgesByID(got)
	for _, w := range want.Edges {
		if e, ok := ge[w.ID]; !ok || !reflect.DeepEqual(e.Points, w.Points) {
			t.Errorf("edge %s points %v, want %v", w.ID, e.Points, w.Points)
		}
	}
}

func failingEngine(t *testing.T) layered.Engine {
	return layered.EngineFunc(func(context.Context, layered.Graph) (*layered.Positions, error) {
		t.Error("layered engine should not be called")
		return nil, stderrors.New("unexpected call")
	})
}

func TestDoRectangle(t *testing.T) {
	res := do(t, []topology.Node{
		node("A", "", "C", "D"),
		node("B", "", "D"),
		node("C", ""),
		node("D", ""),
	}, Options{NoCache: true})

	n := byID(res)
	A, B, C, D := n["A"], n["B"], n["C"], n["D"]
	checks := []struct {
		name string
		ok   bool
	}{
		{"x[A] < x[B]", A.X < B.X},
		{"y[A] == y[B]", A.Y == B.Y},
		{"x[A] == x[C]", A.X == C.X},
		{"y[A] < y[C]", A.Y < C.Y},
		{"x[C] < x[D]", C.X < D.X},
		{"y[C] == y[D]", C.Y == D.Y},
	}
	for _, c := range checks {
		if !c.ok {
			t.Errorf("%s violated: A=%v B=%v C=%v D=%v", c.name, A.Position(), B.Position(), C.Position(), D.Position())
		}
	}
	if res.Strategy != StrategyFull {
		t.Errorf("Strategy = %s, want full", res.Strategy)
	}
}

func TestDoEmpty(t *testing.T) {
	res, err := Do(context.Background(), nil, nil, Options{Scale: testScale, Engine: failingEngine(t)})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if len(res.Nodes) != 0 || len(res.Edges) != 0 || res.Width != 0 || res.Height != 0 {
		t.Errorf("empty input gave %+v", res)
	}
	if res.Strategy != StrategyNone || res.Cache == nil {
		t.Errorf("Strategy = %s, Cache = %v", res.Strategy, res.Cache)
	}
}

func TestDoInvalidOptions(t *testing.T) {
	nodes := []topology.Node{node("a", "")}
	tests := []struct {
		name string
		opts Options
	}{
		{"missing scale", Options{}},
		{"zero scale", Options{Scale: LinearScale(0)}},
		{"negative width", Options{Scale: testScale, Width: -1}},
		{"NaN height", Options{Scale: testScale, Height: math.NaN()}},
		{"negative margin", Options{Scale: testScale, Margins: Margins{Left: -5}}},
		{"negative max nodes", Options{Scale: testScale, MaxNodes: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Do(context.Background(), nodes, nil, tt.opts)
			if !errors.Is(err, errors.ErrCodeInvalidOptions) {
				t.Errorf("Do() error = %v, want INVALID_OPTIONS", err)
			}
		})
	}
}

func TestDoTooManyNodes(t *testing.T) {
	var nodes []topology.Node
	for i := 0; i <= DefaultMaxNodes; i++ {
		n := node(fmt.Sprintf("n%d", i), "")
		if i > 0 {
			n.Adjacency = []string{fmt.Sprintf("n%d", i-1)}
		}
		nodes = append(nodes, n)
	}

	res, err := Do(context.Background(), nodes, topology.DeriveEdges(nodes), Options{Scale: testScale, Engine: failingEngine(t)})
	if err != nil {
		t.Fatalf("Do() error = %v, want nil", err)
	}
	if !res.TooManyNodes {
		t.Error("TooManyNodes = false, want true")
	}
	if len(res.Nodes) != len(nodes) {
		t.Errorf("returned %d nodes, want %d", len(res.Nodes), len(nodes))
	}
	for _, n := range res.Nodes {
		if n.Positioned {
			t.Fatalf("node %s positioned despite capacity guard", n.ID)
		}
	}
	for _, e := range res.Edges {
		if len(e.Points) != 0 {
			t.Fatalf("edge %s routed despite capacity guard", e.ID)
		}
	}
}

func TestDoMaxNodesOption(t *testing.T) {
	res := do(t, []topology.Node{node("a", "", "b"), node("b", "")}, Options{MaxNodes: 1})
	if !res.TooManyNodes {
		t.Error("MaxNodes=1 should refuse two nodes")
	}
}

func TestDoIdempotentWithCache(t *testing.T) {
	nodes := []topology.Node{
		node("lb", "web", "app1", "app2"),
		node("app1", "app", "db"),
		node("app2", "app", "db"),
		node("db", "db"),
		node("lonely", ""),
	}
	first := do(t, nodes, Options{NoCache: true})
	second := do(t, nodes, Options{Cache: first.Cache})

	if second.Strategy != StrategyCached {
		t.Errorf("Strategy = %s, want cached", second.Strategy)
	}
	samePositions(t, first, second)
	if second.Width != first.Width || second.Height != first.Height {
		t.Errorf("size %vx%v, want %vx%v", second.Width, second.Height, first.Width, first.Height)
	}
}

func TestDoRemoveAndReAddEdge(t *testing.T) {
	full := []topology.Node{node("a", "", "b", "c"), node("b", "", "c"), node("c", "")}
	without := []topology.Node{node("a", "", "b"), node("b", "", "c"), node("c", "")}

	r1 := do(t, full, Options{})
	r2 := do(t, without, Options{Cache: r1.Cache})
	r3 := do(t, full, Options{Cache: r2.Cache})

	if r2.Strategy != StrategyCached || r3.Strategy != StrategyCached {
		t.Errorf("strategies = %s, %s, want cached twice", r2.Strategy, r3.Strategy)
	}
	if _, ok := edgesByID(r2)["a---c"]; ok {
		t.Error("removed edge leaked into the intermediate layout")
	}
	samePositions(t, r1, r3)
}

func TestDoReappearingNode(t *testing.T) {
	full := []topology.Node{node("a", "", "b"), node("c", "", "b"), node("b", "")}
	without := []topology.Node{node("a", "", "b"), node("b", "")}

	r1 := do(t, full, Options{})
	r2 := do(t, without, Options{Cache: r1.Cache})
	r3 := do(t, full, Options{Cache: r2.Cache})

	if len(r2.Nodes) != 2 {
		t.Errorf("intermediate layout has %d nodes, want 2", len(r2.Nodes))
	}
	samePositions(t, r1, r3)
}

func TestDoStableUnderLabelChange(t *testing.T) {
	before := []topology.Node{node("a", "", "b"), node("b", "")}
	after := []topology.Node{node("a", "", "b"), node("b", "")}
	after[0].Label = "renamed"
	after[1].Meta = map[string]any{"cpu": 0.93}

	r1 := do(t, before, Options{})
	r2 := do(t, after, Options{Cache: r1.Cache})

	samePositions(t, r1, r2)
	n := byID(r2)
	if n["a"].Label != "renamed" {
		t.Errorf("label = %q, want renamed", n["a"].Label)
	}
	if n["b"].Meta["cpu"] != 0.93 {
		t.Errorf("meta = %v, want cpu 0.93", n["b"].Meta)
	}
}

func TestDoCacheNeverLeaksSemantics(t *testing.T) {
	old := []topology.Node{
		{ID: "n1", Label: "lold", Rank: "rold", Adjacency: []string{"n2"}},
		{ID: "n2"},
	}
	r1 := do(t, old, Options{})
	cached := byID(r1)["n1"]

	fresh := []topology.Node{
		{ID: "n1", Label: "lnew", Rank: "rnew", Adjacency: []string{"n2"}, X: 111, Y: 109, Positioned: true},
		{ID: "n2"},
	}
	r2 := do(t, fresh, Options{Cache: r1.Cache})

	got := byID(r2)["n1"]
	if got.Label != "lnew" || got.Rank != "rnew" {
		t.Errorf("semantic fields = %q/%q, want lnew/rnew", got.Label, got.Rank)
	}
	if got.X != cached.X || got.Y != cached.Y {
		t.Errorf("position = (%v,%v), want cached (%v,%v)", got.X, got.Y, cached.X, cached.Y)
	}
	if got.X == 111 || got.Y == 109 {
		t.Error("snapshot geometry won over the cache")
	}
}

func TestDoSingletonPacking(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"canvas", Options{Width: 1000, Height: 800}},
		{"no canvas", Options{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := do(t, []topology.Node{
				node("a", "", "b"),
				node("s1", ""),
				node("b", ""),
				node("s2", ""),
				node("s3", ""),
			}, tt.opts)

			n := byID(res)
			pairMaxX := max(n["a"].X, n["b"].X)
			pairMaxY := max(n["a"].Y, n["b"].Y)
			singles := []topology.Node{n["s1"], n["s2"], n["s3"]}

			for i, s := range singles {
				if !s.Positioned {
					t.Fatalf("%s not positioned", s.ID)
				}
				if s.Y != singles[0].Y {
					t.Errorf("%s not on the shared baseline: y=%v want %v", s.ID, s.Y, singles[0].Y)
				}
				if s.X <= pairMaxX && s.Y <= pairMaxY {
					t.Errorf("%s at %v is neither right of nor below the connected pair", s.ID, s.Position())
				}
				if i > 0 && s.X-singles[i-1].X < 30 {
					t.Errorf("%s overlaps or precedes %s", s.ID, singles[i-1].ID)
				}
			}
		})
	}
}

func TestDoManySingletonsWithoutCanvasWrap(t *testing.T) {
	nodes := make([]topology.Node, 20)
	for i := range nodes {
		nodes[i] = node(fmt.Sprintf("s%02d", i), "")
	}
	res := do(t, nodes, Options{})

	rows := map[float64]int{}
	for _, n := range res.Nodes {
		rows[n.Y]++
	}
	if len(rows) < 2 {
		t.Errorf("20 singletons without a canvas on %d row(s), want a wrapped grid", len(rows))
	}
}

func TestDoSingletonsOrderedByRank(t *testing.T) {
	res := do(t, []topology.Node{node("z", "b"), node("y", "a"), node("x", "b")}, Options{Width: 1000})
	n := byID(res)
	if !(n["y"].X < n["z"].X && n["z"].X < n["x"].X) {
		t.Errorf("want y < z < x by rank then input order, got y=%v z=%v x=%v", n["y"].X, n["z"].X, n["x"].X)
	}
}

func TestDoOnlySingletonsSkipsEngine(t *testing.T) {
	res, err := Do(context.Background(), []topology.Node{node("a", ""), node("b", "")}, nil,
		Options{Scale: testScale, Engine: failingEngine(t)})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	for _, n := range res.Nodes {
		if !n.Positioned {
			t.Errorf("%s not positioned", n.ID)
		}
	}
}

func TestDoInsertByRank(t *testing.T) {
	before := []topology.Node{node("a", "web", "db"), node("b", "web", "db"), node("db", "db")}
	after := append(before[:len(before):len(before)], node("c", "web", "db"))

	r1 := do(t, before, Options{})
	r2 := do(t, after, Options{Cache: r1.Cache})

	if r2.Strategy != StrategyInsert {
		t.Fatalf("Strategy = %s, want insert", r2.Strategy)
	}
	old, n := byID(r1), byID(r2)
	for _, id := range []string{"a", "b", "db"} {
		if n[id].Position() != old[id].Position() {
			t.Errorf("%s moved from %v to %v", id, old[id].Position(), n[id].Position())
		}
	}
	if n["c"].Y != n["a"].Y {
		t.Errorf("c.y = %v, want rank row %v", n["c"].Y, n["a"].Y)
	}
	if n["c"].X <= max(n["a"].X, n["b"].X) {
		t.Errorf("c.x = %v, want right of a and b", n["c"].X)
	}
	e := edgesByID(r2)["c---db"]
	if len(e.Points) != 2 || e.Points[0] != n["c"].Position() || e.Points[1] != n["db"].Position() {
		t.Errorf("c---db points = %v", e.Points)
	}
}

func TestDoNewRankRunsFullLayout(t *testing.T) {
	before := []topology.Node{node("a", "web", "b"), node("b", "db")}
	after := []topology.Node{node("a", "web", "b"), node("b", "db", "q"), node("q", "queue")}

	r1 := do(t, before, Options{})
	r2 := do(t, after, Options{Cache: r1.Cache})
	if r2.Strategy != StrategyFull {
		t.Errorf("Strategy = %s, want full", r2.Strategy)
	}
}

func TestDoForceRelayoutKeepsHistory(t *testing.T) {
	r1 := do(t, []topology.Node{node("a", "", "b"), node("b", ""), node("x", "")}, Options{})
	r2 := do(t, []topology.Node{node("a", "", "b"), node("b", "")}, Options{Cache: r1.Cache, ForceRelayout: true})

	if r2.Strategy != StrategyFull {
		t.Errorf("Strategy = %s, want full", r2.Strategy)
	}
	if _, ok := r2.Cache.Node("x"); !ok {
		t.Error("ForceRelayout dropped cache history")
	}
}

func TestDoNoCacheDiscardsHistory(t *testing.T) {
	r1 := do(t, []topology.Node{node("a", "", "b"), node("b", ""), node("x", "")}, Options{})
	r2 := do(t, []topology.Node{node("a", "", "b"), node("b", "")}, Options{Cache: r1.Cache, NoCache: true})

	if _, ok := r2.Cache.Node("x"); ok {
		t.Error("NoCache kept old cache entries")
	}
}

func TestDoTopologyPartitionsCache(t *testing.T) {
	nodes := []topology.Node{node("a", "", "b"), node("b", "")}
	r1 := do(t, nodes, Options{TopologyID: "hosts"})
	r2 := do(t, nodes, Options{TopologyID: "containers", Cache: r1.Cache})

	if r2.Strategy != StrategyFull {
		t.Errorf("Strategy = %s, want full for a foreign cache", r2.Strategy)
	}
	if r2.Cache.Key == r1.Cache.Key {
		t.Errorf("cache keys should differ per topology: %q", r2.Cache.Key)
	}

	r3 := do(t, nodes, Options{TopologyID: "hosts", TopologyOptions: map[string]string{"system": "hide"}, Cache: r1.Cache})
	if r3.Strategy != StrategyFull {
		t.Errorf("Strategy = %s, want full for other topology options", r3.Strategy)
	}
}

func TestDoDoesNotMutateInputs(t *testing.T) {
	nodes := []topology.Node{node("a", "", "b"), node("b", "")}
	edges := topology.DeriveEdges(nodes)
	r1 := do(t, nodes, Options{})
	cacheNodes := len(r1.Cache.Nodes)

	moreNodes := []topology.Node{node("a", "", "b"), node("b", ""), node("c", "")}
	if _, err := Do(context.Background(), moreNodes, topology.DeriveEdges(moreNodes), Options{Scale: testScale, Cache: r1.Cache}); err != nil {
		t.Fatal(err)
	}

	if len(r1.Cache.Nodes) != cacheNodes {
		t.Error("Do modified the cache it was given")
	}
	for _, n := range nodes {
		if n.Positioned || n.Degree != 0 {
			t.Errorf("input node %s modified: %+v", n.ID, n)
		}
	}
	for _, e := range edges {
		if e.Points != nil {
			t.Errorf("input edge %s modified", e.ID)
		}
	}
}

func TestDoOverlappingCacheFallsBack(t *testing.T) {
	nodes := []topology.Node{node("a", "", "b"), node("b", "")}
	r1 := do(t, nodes, Options{})

	broken := *r1.Cache
	broken.Nodes = map[string]NodeEntry{"a": {X: 10, Y: 10}, "b": {X: 10, Y: 10}}
	r2 := do(t, nodes, Options{Cache: &broken})

	if r2.Strategy != StrategyFull {
		t.Errorf("Strategy = %s, want full after overlap", r2.Strategy)
	}
	if d := MinNodeDistance(r2.Nodes); d < 30 {
		t.Errorf("nodes still overlap: distance %v", d)
	}
}

func TestDoEngineFailure(t *testing.T) {
	boom := layered.EngineFunc(func(context.Context, layered.Graph) (*layered.Positions, error) {
		return nil, stderrors.New("boom")
	})
	_, err := Do(context.Background(), []topology.Node{node("a", "", "b"), node("b", "")},
		topology.DeriveEdges([]topology.Node{node("a", "", "b"), node("b", "")}),
		Options{Scale: testScale, Engine: boom})
	if !errors.Is(err, errors.ErrCodeLayoutFailed) {
		t.Errorf("Do() error = %v, want LAYOUT_FAILED", err)
	}
}

func TestDoCentersOnCanvas(t *testing.T) {
	res := do(t, []topology.Node{node("a", "", "b"), node("b", "")}, Options{Width: 1000, Height: 1000})

	n := byID(res)
	if cx := (n["a"].X + n["b"].X) / 2; cx != 500 {
		t.Errorf("horizontal centre = %v, want 500", cx)
	}
	if cy := (n["a"].Y + n["b"].Y) / 2; cy != 500 {
		t.Errorf("vertical centre = %v, want 500", cy)
	}
}

func TestDoMarginsWithoutCanvas(t *testing.T) {
	res := do(t, []topology.Node{node("a", "")}, Options{Margins: Margins{Top: 7, Left: 11}})
	a := byID(res)["a"]
	if a.X != 15+11 || a.Y != 15+7 {
		t.Errorf("a = %v, want (26,22)", a.Position())
	}
}

func TestDoSelfLoop(t *testing.T) {
	res := do(t, []topology.Node{node("a", "", "a")}, Options{})
	e := edgesByID(res)["a---a"]
	if len(e.Points) < 2 {
		t.Errorf("self-loop points = %v", e.Points)
	}
	if a := byID(res)["a"]; !a.Positioned || a.Degree != 1 {
		t.Errorf("a = %+v", a)
	}
}

func TestDoDropsDanglingEdges(t *testing.T) {
	nodes := []topology.Node{node("a", ""), node("b", "")}
	edges := []topology.Edge{
		{ID: "a---b", Source: "a", Target: "b"},
		{ID: "a---ghost", Source: "a", Target: "ghost"},
	}
	res, err := Do(context.Background(), nodes, edges, Options{Scale: testScale})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Edges) != 1 || res.Edges[0].ID != "a---b" {
		t.Errorf("edges = %v, want only a---b", res.Edges)
	}
}

func TestDoUsesCustomEngine(t *testing.T) {
	var calls int
	engine := layered.EngineFunc(func(_ context.Context, g layered.Graph) (*layered.Positions, error) {
		calls++
		if g.NodeSep != 100 || g.RankSep != 100 {
			t.Errorf("separations = %v/%v, want 100", g.NodeSep, g.RankSep)
		}
		for _, e := range g.Edges {
			if want := map[bool]int{true: 1, false: 0}[e.Source == e.Target]; e.MinLen != want {
				t.Errorf("edge %s MinLen = %d, want %d", e.ID, e.MinLen, want)
			}
		}
		pos := &layered.Positions{Nodes: map[string]topology.Point{}, Edges: map[string][]topology.Point{}, Width: 30, Height: 30}
		for i, n := range g.Nodes {
			if n.Width != 30 || n.Height != 30 {
				t.Errorf("node %s size = %vx%v, want 30x30", n.ID, n.Width, n.Height)
			}
			pos.Nodes[n.ID] = topology.Point{X: 15 + float64(i)*130, Y: 15}
		}
		return pos, nil
	})

	res := do(t, []topology.Node{node("a", "", "b", "a"), node("b", "")}, Options{Engine: engine})
	if calls != 1 {
		t.Errorf("engine called %d times, want 1", calls)
	}
	for _, e := range res.Edges {
		if len(e.Points) < 2 {
			t.Errorf("edge %s lacks a fallback route", e.ID)
		}
	}
}
