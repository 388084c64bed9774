package layout

import (
	"math"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/topolayout/pkg/cache"
	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/layered/sugiyama"
)

// DefaultMaxNodes is the largest snapshot laid out when Options.MaxNodes is
// zero.
const DefaultMaxNodes = 100

// Abstract spacing units, converted to pixels by Options.Scale.
const (
	nodeSizeUnit   = 0.75
	separationUnit = 2.5
)

// Margins are kept free around the layout when centring it on the canvas.
type Margins struct {
	Top    float64 `json:"top" toml:"top"`
	Left   float64 `json:"left" toml:"left"`
	Right  float64 `json:"right" toml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom"`
}

// ScaleFunc maps abstract spacing units to pixels.
type ScaleFunc func(float64) float64

// LinearScale returns a ScaleFunc multiplying by factor.
func LinearScale(factor float64) ScaleFunc {
	return func(v float64) float64 { return v * factor }
}

// Options configures one call to [Do].
type Options struct {
	// Cache is the value returned in Result.Cache by the previous call.
	// Nil means no history.
	Cache *Cache

	// NoCache ignores and discards Cache.
	NoCache bool

	// ForceRelayout runs a full layout but keeps Cache history.
	ForceRelayout bool

	// Width and Height are the canvas size; zero means unknown.
	Width  float64
	Height float64

	Margins Margins

	// Scale is required.
	Scale ScaleFunc

	// TopologyID and TopologyOptions partition caches: a cache built for
	// another topology key is ignored.
	TopologyID      string
	TopologyOptions map[string]string

	// MaxNodes defaults to DefaultMaxNodes.
	MaxNodes int

	// Engine defaults to the built-in Sugiyama engine.
	Engine layered.Engine

	// Keyer derives Cache.Key from the topology; defaults to
	// cache.NewDefaultKeyer().
	Keyer cache.Keyer

	// Logger defaults to the logger in the context, see log.FromContext.
	Logger *log.Logger
}

// Validate reports caller mistakes. It is called by [Do].
func (o Options) Validate() error {
	if o.Scale == nil {
		return errors.New(errors.ErrCodeInvalidOptions, "scale function is required")
	}
	if s := o.Scale(nodeSizeUnit); s <= 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return errors.New(errors.ErrCodeInvalidOptions, "scale(%v) must be positive, got %v", nodeSizeUnit, s)
	}
	if s := o.Scale(separationUnit); s < 0 || math.IsInf(s, 0) || math.IsNaN(s) {
		return errors.New(errors.ErrCodeInvalidOptions, "scale(%v) must be non-negative, got %v", separationUnit, s)
	}
	for _, d := range []struct {
		name string
		v    float64
	}{
		{"width", o.Width},
		{"height", o.Height},
		{"margins.top", o.Margins.Top},
		{"margins.left", o.Margins.Left},
		{"margins.right", o.Margins.Right},
		{"margins.bottom", o.Margins.Bottom},
	} {
		if err := errors.ValidateDimension(d.name, d.v); err != nil {
			return err
		}
	}
	if o.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "max nodes must not be negative, got %d", o.MaxNodes)
	}
	return nil
}

func (o Options) withDefaults() Options {
	if o.MaxNodes == 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	if o.Engine == nil {
		o.Engine = sugiyama.New()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	return o
}

// innerWidth is the canvas width minus horizontal margins, or 0 if unknown.
func (o Options) innerWidth() float64 {
	if o.Width == 0 {
		return 0
	}
	return max(o.Width-o.Margins.Left-o.Margins.Right, 0)
}

func (o Options) innerHeight() float64 {
	if o.Height == 0 {
		return 0
	}
	return max(o.Height-o.Margins.Top-o.Margins.Bottom, 0)
}

// metrics are the pixel sizes derived from Scale.
type metrics struct {
	nodeW, nodeH     float64
	nodeSep, rankSep float64
}

func newMetrics(scale ScaleFunc) metrics {
	size, sep := scale(nodeSizeUnit), scale(separationUnit)
	return metrics{nodeW: size, nodeH: size, nodeSep: sep, rankSep: sep}
}

func (m metrics) pitchX() float64 { return m.nodeW + m.nodeSep }
func (m metrics) pitchY() float64 { return m.nodeH + m.rankSep }
