package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/topolayout/pkg/cache"
	"github.com/matzehuels/topolayout/pkg/chart"
	"github.com/matzehuels/topolayout/pkg/config"
	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/layered/dot"
	"github.com/matzehuels/topolayout/pkg/layered/sugiyama"
	"github.com/matzehuels/topolayout/pkg/layout"
)

// layoutFlags are the flags shared by replay and watch. Zero values defer
// to the config file.
type layoutFlags struct {
	width, height float64
	scale         float64
	engine        string
	maxNodes      int
	topology      string
	options       string
	noCache       bool
	force         bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.Float64Var(&f.width, "width", 0, "canvas width in pixels (0: from config)")
	fs.Float64Var(&f.height, "height", 0, "canvas height in pixels (0: from config)")
	fs.Float64Var(&f.scale, "scale", 0, "pixels per layout unit (0: from config)")
	fs.StringVar(&f.engine, "engine", "", "layered engine: sugiyama or dot (default from config)")
	fs.IntVar(&f.maxNodes, "max-nodes", 0, "largest snapshot to lay out (0: from config)")
	fs.StringVar(&f.topology, "topology", "", "topology id (default: from the snapshot)")
	fs.StringVar(&f.options, "topology-options", "", "topology options as k=v,k2=v2 (default: from the snapshot)")
	fs.BoolVar(&f.noCache, "no-cache", false, "ignore layout history")
	fs.BoolVar(&f.force, "force-relayout", false, "run a full layout for every snapshot")
}

// apply merges the flags over cfg.
func (f *layoutFlags) apply(cfg *config.Config) {
	l := &cfg.Layout
	if f.width > 0 {
		l.Width = f.width
	}
	if f.height > 0 {
		l.Height = f.height
	}
	if f.scale > 0 {
		l.ScaleFactor = f.scale
	}
	if f.engine != "" {
		l.Engine = f.engine
	}
	if f.maxNodes > 0 {
		l.MaxNodes = f.maxNodes
	}
}

// selectorConfig builds the selector settings from cfg.
func selectorConfig(cfg *config.Config) (chart.Config, error) {
	engine, err := newEngine(cfg.Layout.Engine)
	if err != nil {
		return chart.Config{}, err
	}
	keyer := cache.NewDefaultKeyer()
	if cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(keyer, cfg.Cache.Prefix)
	}
	return chart.Config{
		Scale:    layout.LinearScale(cfg.Layout.ScaleFactor),
		MaxNodes: cfg.Layout.MaxNodes,
		Engine:   engine,
		Keyer:    keyer,
	}, nil
}

// chartOptions returns the per-call options for a snapshot whose document
// names topologyID and topologyOptions. Flags win over the document.
func (f *layoutFlags) chartOptions(cfg *config.Config, topologyID, topologyOptions string) chart.Options {
	if f.topology != "" {
		topologyID = f.topology
	}
	if f.options != "" {
		topologyOptions = f.options
	}
	return chart.Options{
		Width:           cfg.Layout.Width,
		Height:          cfg.Layout.Height,
		Margins:         cfg.Layout.Margins,
		ForceRelayout:   f.force,
		NoCache:         f.noCache,
		TopologyID:      topologyID,
		TopologyOptions: topologyOptions,
	}
}

func newEngine(name string) (layered.Engine, error) {
	switch name {
	case "", "sugiyama":
		return sugiyama.New(), nil
	case "dot":
		return dot.New(), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidEngine, "unknown engine %q (want sugiyama or dot)", name)
}
