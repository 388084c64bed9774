// Package config loads topolayout settings from a TOML file.
package config

import (
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/layout"
)

const appName = "topolayout"

// Config holds topolayout settings. CLI flags override them.
type Config struct {
	Layout LayoutConfig `toml:"layout"`
	Cache  CacheConfig  `toml:"cache"`
}

// LayoutConfig controls the canvas and the layout engine.
type LayoutConfig struct {
	Width       float64        `toml:"width"`
	Height      float64        `toml:"height"`
	Margins     layout.Margins `toml:"margins"`
	ScaleFactor float64        `toml:"scale_factor"`
	Engine      string         `toml:"engine"` // "sugiyama" or "dot"
	MaxNodes    int            `toml:"max_nodes"`
}

// CacheConfig controls persistence of layout history between runs.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"` // empty means the user cache directory

	// Prefix namespaces stored layout keys, for setups that share one cache
	// directory between several views.
	Prefix string `toml:"prefix"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			Margins:     layout.Margins{Top: 24, Left: 24, Right: 24, Bottom: 24},
			ScaleFactor: 40,
			Engine:      "sugiyama",
			MaxNodes:    layout.DefaultMaxNodes,
		},
		Cache: CacheConfig{Enabled: true},
	}
}

// Dir returns the topolayout config directory.
func Dir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, appName)
}

// Path returns the default config file path.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file at path over the defaults. A missing file is
// not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read config %s", path)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config %s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		f.Close()
		return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return f.Close()
}

// Validate checks values that the layout engine would reject later.
func (c *Config) Validate() error {
	l := c.Layout
	if l.ScaleFactor <= 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "layout.scale_factor must be positive, got %v", l.ScaleFactor)
	}
	if l.MaxNodes < 0 {
		return errors.New(errors.ErrCodeInvalidOptions, "layout.max_nodes must not be negative, got %d", l.MaxNodes)
	}
	switch l.Engine {
	case "sugiyama", "dot":
	default:
		return errors.New(errors.ErrCodeInvalidEngine, "layout.engine %q: want sugiyama or dot", l.Engine)
	}
	for name, v := range map[string]float64{
		"layout.width":          l.Width,
		"layout.height":         l.Height,
		"layout.margins.top":    l.Margins.Top,
		"layout.margins.left":   l.Margins.Left,
		"layout.margins.right":  l.Margins.Right,
		"layout.margins.bottom": l.Margins.Bottom,
	} {
		if err := errors.ValidateDimension(name, v); err != nil {
			return err
		}
	}
	return nil
}

// CacheDir returns the configured cache directory or the default one under
// the user cache directory.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "locate user cache directory")
	}
	return filepath.Join(dir, appName), nil
}
