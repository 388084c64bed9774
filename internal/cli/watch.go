package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/topolayout/pkg/cache"
	"github.com/matzehuels/topolayout/pkg/chart"
	"github.com/matzehuels/topolayout/pkg/errors"
	topoio "github.com/matzehuels/topolayout/pkg/io"
)

const (
	// watchDebounce coalesces the bursts of events editors emit per save.
	watchDebounce = 100 * time.Millisecond

	// Re-read attempts for a snapshot caught mid-write.
	reloadAttempts = 5
	reloadDelay    = 20 * time.Millisecond
)

func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
	)
	cmd := &cobra.Command{
		Use:   "watch <snapshot>",
		Short: "Re-lay out a snapshot file whenever it changes",
		Long: `Watch lays out the snapshot file, then again after every change to it,
keeping the positions of nodes that were already on screen. The chart is
rewritten to --output (stdout by default) after each change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], &flags, output)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path string, flags *layoutFlags, output string) error {
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	flags.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	store, err := newStore(cfg, flags.noCache)
	if err != nil {
		return err
	}
	defer store.Close()

	selCfg, err := selectorConfig(cfg)
	if err != nil {
		return err
	}
	selCfg.Logger = logger
	sel := chart.New(selCfg)
	hist := newHistory(store, selCfg.Keyer)

	render := func() error {
		doc, err := reloadSnapshot(ctx, path)
		if err != nil {
			return err
		}
		opts := flags.chartOptions(cfg, doc.Topology, doc.Options)
		if !flags.noCache {
			if _, err := hist.restore(ctx, sel, opts.TopologyID, opts.TopologyOptions); err != nil {
				return err
			}
		}
		ch, err := sel.Layout(ctx, doc.Snapshot, opts)
		if err != nil {
			return err
		}
		if output == "" || output == "-" {
			err = topoio.WriteChart(os.Stdout, opts.TopologyID, ch, topoio.FormatJSON)
		} else {
			err = topoio.ExportChart(output, opts.TopologyID, ch)
		}
		if err != nil {
			return err
		}
		logger.Info("laid out", "snapshot", path, "strategy", ch.Strategy, "nodes", len(ch.Nodes), "edges", len(ch.Edges))
		return hist.save(ctx, sel)
	}

	if err := render(); err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "start file watcher")
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "resolve %s", path)
	}
	// Watch the directory: editors replace files by renaming over them.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", filepath.Dir(abs))
	}
	logger.Info("watching", "snapshot", path)

	return watchFile(ctx, w, abs, watchDebounce, func() {
		if err := render(); err != nil {
			logger.Error("layout failed", "snapshot", path, "err", err)
		}
	})
}

// reloadSnapshot reads path, retrying while the file is missing or
// malformed, which is what a concurrent writer looks like from outside.
func reloadSnapshot(ctx context.Context, path string) (*topoio.Document, error) {
	var doc *topoio.Document
	err := cache.RetryWithBackoff(ctx, reloadAttempts, reloadDelay, func() error {
		d, err := topoio.ImportSnapshot(path)
		if errors.Is(err, errors.ErrCodeInvalidFormat) || errors.Is(err, errors.ErrCodeFileNotFound) {
			return cache.Retryable(err)
		}
		doc = d
		return err
	})
	return doc, err
}

// watchFile calls onChange after writes to path have settled for debounce.
// It returns nil when ctx is done or the watcher is closed.
func watchFile(ctx context.Context, w *fsnotify.Watcher, path string, debounce time.Duration, onChange func()) error {
	logger := loggerFromContext(ctx)
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", "err", err)
		case <-timer.C:
			onChange()
		}
	}
}
