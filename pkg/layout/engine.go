package layout

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/observability"
	"github.com/matzehuels/topolayout/pkg/topology"
)

// Strategy names how a [Result] was produced.
type Strategy string

const (
	// StrategyNone: nothing was laid out (empty input or too many nodes).
	StrategyNone Strategy = "none"
	// StrategyFull: the layered engine ran.
	StrategyFull Strategy = "full"
	// StrategyCached: all coordinates came from the cache.
	StrategyCached Strategy = "cached"
	// StrategyInsert: new nodes were slotted in next to nodes of their rank.
	StrategyInsert Strategy = "insert"
)

// Result is the outcome of [Do].
type Result struct {
	// Nodes and Edges hold exactly the input IDs, in input order. Edges
	// whose endpoints are missing from the input nodes are dropped.
	Nodes []topology.Node
	Edges []topology.Edge

	// Width and Height are the size of the laid out region.
	Width  float64
	Height float64

	Strategy Strategy

	// TooManyNodes is set when the input exceeded Options.MaxNodes. Nodes
	// are then returned unpositioned and edges without points.
	TooManyNodes bool

	// Cache is the history to pass to the next call.
	Cache *Cache
}

// Do lays out nodes and edges. See the package documentation for the
// strategies. Inputs are not modified.
//
// Do returns an INVALID_OPTIONS error for malformed options and a
// LAYOUT_FAILED error when the layered engine fails. Oversized inputs are
// not an error; see Result.TooManyNodes.
func Do(ctx context.Context, nodes []topology.Node, edges []topology.Edge, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	logger := opts.Logger
	if logger == nil {
		logger = log.FromContext(ctx)
	}

	start := time.Now()
	observability.Layout().OnLayoutStart(ctx, len(nodes))

	res, err := run(ctx, logger, nodes, edges, opts)

	strategy := StrategyNone
	if res != nil {
		strategy = res.Strategy
	}
	observability.Layout().OnLayoutComplete(ctx, string(strategy), len(nodes), time.Since(start), err)
	return res, err
}

func run(ctx context.Context, logger *log.Logger, nodes []topology.Node, edges []topology.Edge, opts Options) (*Result, error) {
	key := opts.Keyer.TopologyKey(opts.TopologyID, opts.TopologyOptions)
	history := opts.Cache
	if opts.NoCache || (history != nil && history.Key != key) {
		history = nil
	}

	edges = liveEdges(nodes, edges)
	nodes = topology.UpdateNodeDegrees(nodes, edges)

	if len(nodes) == 0 {
		return &Result{Nodes: nodes, Edges: edges, Strategy: StrategyNone, Cache: keep(history, key)}, nil
	}
	if len(nodes) > opts.MaxNodes {
		logger.Warn("too many nodes to lay out", "nodes", len(nodes), "max", opts.MaxNodes, "topology", opts.TopologyID)
		for i := range nodes {
			nodes[i] = nodes[i].WithoutPosition()
		}
		for i := range edges {
			edges[i].Points = nil
		}
		return &Result{Nodes: nodes, Edges: edges, Strategy: StrategyNone, TooManyNodes: true, Cache: keep(history, key)}, nil
	}

	m := newMetrics(opts.Scale)
	res := &Result{}

	switch {
	case opts.ForceRelayout || !history.usable(key):
		res.Strategy = StrategyFull
	case !HasUnseenNodes(topology.NodeIDs(nodes), history.NodeIDs()):
		res.Strategy = StrategyCached
	case HasNewNodesOfExistingRank(nodes, edges, history.Last.Nodes):
		res.Strategy = StrategyInsert
	default:
		res.Strategy = StrategyFull
	}

	if res.Strategy != StrategyFull {
		res.Nodes = applyCachedPositions(nodes, history)
		if res.Strategy == StrategyInsert {
			insertByRank(res.Nodes, history, m)
		}
		res.Edges = routeFromCache(edges, res.Nodes, history, m)
		res.Width, res.Height = history.Last.Width, history.Last.Height
		if res.Strategy == StrategyInsert {
			b := centres(res.Nodes, nil)
			res.Width = max(res.Width, b.maxX-b.minX+m.nodeW)
			res.Height = max(res.Height, b.maxY-b.minY+m.nodeH)
		}

		if d := MinNodeDistance(res.Nodes); d < m.nodeW {
			logger.Debug("cached positions overlap, relayout", "strategy", res.Strategy, "distance", d)
			res.Strategy = StrategyFull
		}
	}

	if res.Strategy == StrategyFull {
		var err error
		res.Nodes, res.Edges, res.Width, res.Height, err = full(ctx, nodes, edges, m, opts)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("layout", "strategy", res.Strategy, "nodes", len(res.Nodes), "edges", len(res.Edges), "topology", opts.TopologyID)
	res.Cache = history.with(key, res.Nodes, res.Edges, res.Width, res.Height)
	return res, nil
}

// full runs the layered engine on the connected nodes, packs singletons and
// centres the result.
func full(ctx context.Context, nodes []topology.Node, edges []topology.Edge, m metrics, opts Options) ([]topology.Node, []topology.Edge, float64, float64, error) {
	out := make([]topology.Node, len(nodes))
	copy(out, nodes)
	routed := make([]topology.Edge, len(edges))
	copy(routed, edges)

	g := layered.Graph{NodeSep: m.nodeSep, RankSep: m.rankSep}
	for _, n := range out {
		if n.Degree > 0 {
			g.Nodes = append(g.Nodes, layered.Node{ID: n.ID, Width: m.nodeW, Height: m.nodeH})
		}
	}
	for _, e := range routed {
		minLen := 0
		if e.IsSelfLoop() {
			minLen = 1
		}
		g.Edges = append(g.Edges, layered.Edge{ID: e.ID, Source: e.Source, Target: e.Target, MinLen: minLen})
	}

	var connW, connH float64
	if len(g.Nodes) > 0 {
		start := time.Now()
		pos, err := opts.Engine.Layout(ctx, g)
		observability.Layout().OnEngineRun(ctx, engineName(opts.Engine), len(g.Nodes), len(g.Edges), time.Since(start), err)
		if err != nil {
			return nil, nil, 0, 0, errors.Wrap(errors.ErrCodeLayoutFailed, err, "%s engine", engineName(opts.Engine))
		}
		for i, n := range out {
			if n.Degree == 0 {
				out[i] = n.WithoutPosition()
				continue
			}
			p, ok := pos.Nodes[n.ID]
			if !ok {
				return nil, nil, 0, 0, errors.New(errors.ErrCodeLayoutFailed, "%s engine returned no position for %q", engineName(opts.Engine), n.ID)
			}
			out[i] = n.WithPosition(p)
		}
		index := topology.IndexNodes(out)
		for i, e := range routed {
			if pts := pos.Edges[e.ID]; len(pts) >= 2 {
				routed[i] = e.WithPoints(pts)
			} else {
				routed[i] = e.WithPoints(straightRoute(out[index[e.Source]].Position(), out[index[e.Target]].Position(), e.IsSelfLoop(), m))
			}
		}
		connW, connH = pos.Width, pos.Height
	} else {
		for i := range out {
			out[i] = out[i].WithoutPosition()
		}
	}

	packSingletons(out, connW, connH, m, opts)
	w, h := extent(out, routed, m)
	centre(out, routed, w, h, opts)
	return out, routed, w, h, nil
}

// liveEdges drops edges with a missing endpoint and repeated IDs.
func liveEdges(nodes []topology.Node, edges []topology.Edge) []topology.Edge {
	present := make(map[string]struct{}, len(nodes))
	for _, n := range nodes {
		present[n.ID] = struct{}{}
	}
	seen := make(map[string]struct{}, len(edges))
	out := make([]topology.Edge, 0, len(edges))
	for _, e := range edges {
		_, okS := present[e.Source]
		_, okT := present[e.Target]
		if _, dup := seen[e.ID]; dup || !okS || !okT {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}

// keep returns the cache to hand back when nothing was laid out.
func keep(c *Cache, key string) *Cache {
	if c != nil {
		return c
	}
	return NewCache(key)
}

func engineName(e layered.Engine) string {
	if n, ok := e.(interface{ Name() string }); ok {
		return n.Name()
	}
	return fmt.Sprintf("%T", e)
}
