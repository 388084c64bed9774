// Package chart turns topology snapshots into positioned charts.
//
// A [Selector] derives edges from the adjacency lists of a snapshot, runs
// [layout.Do] with the layout history of the current topology and collapses
// reciprocal edges for drawing. Calls are memoized on the snapshot pointer and
// the options, so re-rendering an unchanged snapshot is free.
package chart

import (
	"context"
	"maps"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topolayout/pkg/cache"
	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/layout"
	"github.com/matzehuels/topolayout/pkg/memo"
	"github.com/matzehuels/topolayout/pkg/topology"
)

// DefaultScaleFactor is the pixel size of one layout unit when
// Config.Scale is nil.
const DefaultScaleFactor = 40

// Options select the view of a snapshot. Options is comparable and is part of
// the memo key.
type Options struct {
	Width, Height float64
	Margins       layout.Margins
	ForceRelayout bool
	NoCache       bool

	TopologyID string
	// TopologyOptions is a comma separated list of key=value pairs, see
	// [ParseTopologyOptions].
	TopologyOptions string
}

// Chart is a positioned snapshot ready for drawing.
type Chart struct {
	Nodes        []topology.Node
	Edges        []topology.Edge
	Width        float64
	Height       float64
	TooManyNodes bool
	Strategy     layout.Strategy
}

// Config holds the settings that do not change between calls.
type Config struct {
	Scale    layout.ScaleFunc
	MaxNodes int
	Engine   layered.Engine
	Keyer    cache.Keyer
	Logger   *log.Logger
}

type memoKey struct {
	snap *topology.Snapshot
	opts Options
}

type history struct {
	topologyID string
	cache      *layout.Cache
}

// Selector is safe for concurrent use.
type Selector struct {
	cfg  Config
	memo memo.Memo[memoKey, Chart]

	mu     sync.Mutex
	caches map[string]history
}

// New creates a Selector.
func New(cfg Config) *Selector {
	if cfg.Scale == nil {
		cfg.Scale = layout.LinearScale(DefaultScaleFactor)
	}
	if cfg.Keyer == nil {
		cfg.Keyer = cache.NewDefaultKeyer()
	}
	return &Selector{cfg: cfg, caches: make(map[string]history)}
}

// Layout returns the chart for snap. A nil or empty snapshot yields an empty
// chart without touching the layout history.
func (s *Selector) Layout(ctx context.Context, snap *topology.Snapshot, opts Options) (Chart, error) {
	if snap.Len() == 0 {
		return Chart{Strategy: layout.StrategyNone}, nil
	}
	c, _, err := s.memo.Get(memoKey{snap: snap, opts: opts}, func(k memoKey) (Chart, error) {
		return s.compute(ctx, k.snap, k.opts)
	})
	return c, err
}

func (s *Selector) compute(ctx context.Context, snap *topology.Snapshot, opts Options) (Chart, error) {
	topoOpts, err := ParseTopologyOptions(opts.TopologyOptions)
	if err != nil {
		return Chart{}, err
	}
	key := s.cfg.Keyer.TopologyKey(opts.TopologyID, topoOpts)

	res, err := layout.Do(ctx, snap.Nodes, topology.DeriveEdges(snap.Nodes), layout.Options{
		Cache:           s.Cache(opts.TopologyID, opts.TopologyOptions),
		NoCache:         opts.NoCache,
		ForceRelayout:   opts.ForceRelayout,
		Width:           opts.Width,
		Height:          opts.Height,
		Margins:         opts.Margins,
		Scale:           s.cfg.Scale,
		TopologyID:      opts.TopologyID,
		TopologyOptions: topoOpts,
		MaxNodes:        s.cfg.MaxNodes,
		Engine:          s.cfg.Engine,
		Keyer:           s.cfg.Keyer,
		Logger:          s.cfg.Logger,
	})
	if err != nil {
		return Chart{}, err
	}

	s.mu.Lock()
	s.caches[key] = history{topologyID: opts.TopologyID, cache: res.Cache}
	s.mu.Unlock()

	return Chart{
		Nodes:        res.Nodes,
		Edges:        topology.CollapseMultiEdges(res.Edges),
		Width:        res.Width,
		Height:       res.Height,
		TooManyNodes: res.TooManyNodes,
		Strategy:     res.Strategy,
	}, nil
}

// Cache returns the layout history of a topology view, or nil.
// Malformed options have no history.
func (s *Selector) Cache(topologyID, topologyOptions string) *layout.Cache {
	key, ok := s.key(topologyID, topologyOptions)
	if !ok {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.caches[key].cache
}

// SetCache installs c as the history of a topology view, e.g. one restored
// from disk. A nil c removes it.
func (s *Selector) SetCache(topologyID, topologyOptions string, c *layout.Cache) error {
	opts, err := ParseTopologyOptions(topologyOptions)
	if err != nil {
		return err
	}
	key := s.cfg.Keyer.TopologyKey(topologyID, opts)

	s.mu.Lock()
	if c == nil {
		delete(s.caches, key)
	} else {
		s.caches[key] = history{topologyID: topologyID, cache: c}
	}
	s.mu.Unlock()
	s.memo.Reset()
	return nil
}

// Reset drops the history of every view of topologyID, so the next call
// lays it out from scratch.
func (s *Selector) Reset(topologyID string) {
	s.mu.Lock()
	maps.DeleteFunc(s.caches, func(_ string, h history) bool {
		return h.topologyID == topologyID
	})
	s.mu.Unlock()
	s.memo.Reset()
}

func (s *Selector) key(topologyID, topologyOptions string) (string, bool) {
	opts, err := ParseTopologyOptions(topologyOptions)
	if err != nil {
		return "", false
	}
	return s.cfg.Keyer.TopologyKey(topologyID, opts), true
}

// ParseTopologyOptions parses "k1=v1,k2=v2". Blank entries are skipped; an
// entry without "=" or with an empty key is an INVALID_OPTIONS error.
func ParseTopologyOptions(s string) (map[string]string, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	out := make(map[string]string)
	for _, pair := range strings.Split(s, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidOptions, "topology option %q: expected key=value", pair)
		}
		out[k] = strings.TrimSpace(v)
	}
	return out, nil
}
