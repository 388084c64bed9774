package chart

import (
	"context"
	"reflect"
	"sync/atomic"
	"testing"

	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/layered/sugiyama"
	"github.com/matzehuels/topolayout/pkg/layout"
	"github.com/matzehuels/topolayout/pkg/topology"
)

func snapshot(t *testing.T, nodes ...topology.Node) *topology.Snapshot {
	t.Helper()
	s, err := topology.NewSnapshot(nodes...)
	if err != nil {
		t.Fatalf("NewSnapshot() error = %v", err)
	}
	return s
}

func node(id, rank string, adjacency ...string) topology.Node {
	return topology.Node{ID: id, Rank: rank, Label: id, Adjacency: adjacency}
}

// countingEngine wraps the built-in engine and counts runs.
func countingEngine(runs *atomic.Int32) layered.Engine {
	inner := sugiyama.New()
	return layered.EngineFunc(func(ctx context.Context, g layered.Graph) (*layered.Positions, error) {
		runs.Add(1)
		return inner.Layout(ctx, g)
	})
}

func layoutOf(t *testing.T, s *Selector, snap *topology.Snapshot, opts Options) Chart {
	t.Helper()
	c, err := s.Layout(context.Background(), snap, opts)
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	return c
}

func TestSelectorMemoizes(t *testing.T) {
	var runs atomic.Int32
	s := New(Config{Engine: countingEngine(&runs)})
	snap := snapshot(t, node("a", "", "b"), node("b", ""))
	opts := Options{TopologyID: "hosts"}

	first := layoutOf(t, s, snap, opts)
	second := layoutOf(t, s, snap, opts)

	if runs.Load() != 1 {
		t.Errorf("engine ran %d times, want 1", runs.Load())
	}
	if !reflect.DeepEqual(first, second) {
		t.Error("memoized chart differs")
	}

	layoutOf(t, s, snap, Options{TopologyID: "hosts", Width: 800})
	if runs.Load() != 1 {
		t.Errorf("option change with known nodes should use the cache, engine ran %d times", runs.Load())
	}
}

func TestSelectorThreadsCache(t *testing.T) {
	s := New(Config{})
	opts := Options{TopologyID: "hosts"}

	first := layoutOf(t, s, snapshot(t, node("a", "", "b"), node("b", "")), opts)
	second := layoutOf(t, s, snapshot(t, node("a", "", "b"), node("b", "")), opts)

	if first.Strategy != layout.StrategyFull || second.Strategy != layout.StrategyCached {
		t.Fatalf("strategies = %s, %s, want full, cached", first.Strategy, second.Strategy)
	}
	for i := range first.Nodes {
		if first.Nodes[i].Position() != second.Nodes[i].Position() {
			t.Errorf("node %s moved", first.Nodes[i].ID)
		}
	}
}

func TestSelectorCollapsesEdges(t *testing.T) {
	s := New(Config{})
	c := layoutOf(t, s, snapshot(t, node("a", "", "b"), node("b", "", "a")), Options{})

	if len(c.Edges) != 1 {
		t.Fatalf("edges = %d, want 1", len(c.Edges))
	}
	if e := c.Edges[0]; e.ID != "a---b" || !e.Bidirectional || len(e.Points) < 2 {
		t.Errorf("edge = %+v, want routed bidirectional a---b", e)
	}
}

func TestSelectorEmpty(t *testing.T) {
	var runs atomic.Int32
	s := New(Config{Engine: countingEngine(&runs)})

	for _, snap := range []*topology.Snapshot{nil, snapshot(t)} {
		c := layoutOf(t, s, snap, Options{TopologyID: "hosts"})
		if len(c.Nodes) != 0 || c.Width != 0 || c.Height != 0 || c.Strategy != layout.StrategyNone {
			t.Errorf("Layout(%v) = %+v, want empty chart", snap, c)
		}
	}
	if runs.Load() != 0 || s.Cache("hosts", "") != nil {
		t.Error("empty snapshot should not touch engine or history")
	}
}

func TestSelectorPerTopologyHistory(t *testing.T) {
	s := New(Config{})
	hosts := snapshot(t, node("a", "", "b"), node("b", ""))
	procs := snapshot(t, node("p", "", "q"), node("q", ""))

	layoutOf(t, s, hosts, Options{TopologyID: "hosts"})
	layoutOf(t, s, procs, Options{TopologyID: "procs"})

	if s.Cache("hosts", "") == nil || s.Cache("procs", "") == nil {
		t.Fatal("each topology should keep its own history")
	}

	again := snapshot(t, node("a", "", "b"), node("b", ""))
	if c := layoutOf(t, s, again, Options{TopologyID: "hosts"}); c.Strategy != layout.StrategyCached {
		t.Errorf("back to hosts: strategy = %s, want cached", c.Strategy)
	}

	withOpts := Options{TopologyID: "hosts", TopologyOptions: "stopped=hide"}
	if c := layoutOf(t, s, again, withOpts); c.Strategy != layout.StrategyFull {
		t.Errorf("new topology options: strategy = %s, want full", c.Strategy)
	}
}

func TestSelectorReset(t *testing.T) {
	s := New(Config{})
	snap := snapshot(t, node("a", "", "b"), node("b", ""))
	opts := Options{TopologyID: "hosts"}

	layoutOf(t, s, snap, opts)
	layoutOf(t, s, snap, Options{TopologyID: "hosts", TopologyOptions: "a=1"})
	layoutOf(t, s, snap, Options{TopologyID: "procs"})
	s.Reset("hosts")

	if s.Cache("hosts", "") != nil || s.Cache("hosts", "a=1") != nil {
		t.Error("Reset should drop every view of the topology")
	}
	if s.Cache("procs", "") == nil {
		t.Error("Reset should keep other topologies")
	}
	if c := layoutOf(t, s, snap, opts); c.Strategy != layout.StrategyFull {
		t.Errorf("after Reset: strategy = %s, want full", c.Strategy)
	}
}

func TestSelectorSetCache(t *testing.T) {
	s := New(Config{})
	snap := snapshot(t, node("a", "", "b"), node("b", ""))
	first := layoutOf(t, s, snap, Options{TopologyID: "hosts"})
	saved := s.Cache("hosts", "")

	restored := New(Config{})
	if err := restored.SetCache("hosts", "", saved); err != nil {
		t.Fatalf("SetCache() error = %v", err)
	}
	c := layoutOf(t, restored, snap, Options{TopologyID: "hosts"})
	if c.Strategy != layout.StrategyCached || !reflect.DeepEqual(c.Nodes, first.Nodes) {
		t.Errorf("restored history not used: strategy = %s", c.Strategy)
	}

	if err := restored.SetCache("hosts", "broken", saved); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("SetCache(malformed options) error = %v, want INVALID_OPTIONS", err)
	}
}

func TestSelectorTooManyNodes(t *testing.T) {
	s := New(Config{MaxNodes: 1})
	c := layoutOf(t, s, snapshot(t, node("a", "", "b"), node("b", "")), Options{})
	if !c.TooManyNodes {
		t.Fatal("TooManyNodes = false, want true")
	}
	for _, n := range c.Nodes {
		if n.Positioned {
			t.Errorf("node %s positioned", n.ID)
		}
	}
}

func TestSelectorInvalidOptions(t *testing.T) {
	s := New(Config{})
	snap := snapshot(t, node("a", ""))

	if _, err := s.Layout(context.Background(), snap, Options{Width: -1}); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("negative width error = %v, want INVALID_OPTIONS", err)
	}
	if _, err := s.Layout(context.Background(), snap, Options{TopologyOptions: "=x"}); !errors.Is(err, errors.ErrCodeInvalidOptions) {
		t.Errorf("malformed topology options error = %v, want INVALID_OPTIONS", err)
	}
}

func TestParseTopologyOptions(t *testing.T) {
	tests := []struct {
		in      string
		want    map[string]string
		wantErr bool
	}{
		{in: "", want: nil},
		{in: "  ", want: nil},
		{in: "a=1", want: map[string]string{"a": "1"}},
		{in: " a = 1 , b=2,", want: map[string]string{"a": "1", "b": "2"}},
		{in: "a=", want: map[string]string{"a": ""}},
		{in: "a", wantErr: true},
		{in: "=1", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTopologyOptions(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseTopologyOptions(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseTopologyOptions(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
