// Package cli implements the topolayout command-line interface.
//
// Commands:
//   - replay: lay out a sequence of snapshots, threading the layout history
//   - watch: re-lay out a snapshot file whenever it changes
//   - cache: inspect or clear persisted layout history
//
// Settings come from the TOML config file (see pkg/config) and are
// overridden by flags. All commands support --verbose (-v) for debug-level
// logging; the logger travels in the command context.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topolayout/pkg/buildinfo"
	"github.com/matzehuels/topolayout/pkg/cache"
	"github.com/matzehuels/topolayout/pkg/config"
)

// appName is the application name used for directories and display.
const appName = "topolayout"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// layoutKeyType labels persisted layout caches in cache hooks.
const layoutKeyType = "layout"

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath overrides the default config file location.
	ConfigPath string
}

// New creates a new CLI instance.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Topolayout positions topology snapshots and keeps them stable",
		Long:         `Topolayout lays out topology graphs (hosts, containers, processes) and keeps node positions stable across successive snapshots, so that live views do not jump around.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
		},
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", c.ConfigPath, "config file (default "+config.Path()+")")

	root.AddCommand(c.replayCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config or the default one.
func (c *CLI) loadConfig() (*config.Config, error) {
	path := c.ConfigPath
	if path == "" {
		path = config.Path()
	}
	return config.Load(path)
}

// newStore opens the persistent layout cache, or a null cache when caching
// is disabled.
func newStore(cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache || !cfg.Cache.Enabled {
		return cache.NewNullCache(), nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return nil, err
	}
	return cache.NewFileCache(dir)
}
