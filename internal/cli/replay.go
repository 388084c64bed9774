package cli

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/topolayout/pkg/cache"
	"github.com/matzehuels/topolayout/pkg/chart"
	"github.com/matzehuels/topolayout/pkg/config"
	topoio "github.com/matzehuels/topolayout/pkg/io"
)

// maxParallelLoads bounds concurrent snapshot reads.
const maxParallelLoads = 16

// step is the outcome of laying out one snapshot.
type step struct {
	path     string
	topology string
	chart    chart.Chart
}

func (c *CLI) replayCommand() *cobra.Command {
	var (
		flags  layoutFlags
		output string
		each   bool
	)
	cmd := &cobra.Command{
		Use:   "replay <snapshot>...",
		Short: "Lay out a sequence of snapshots",
		Long: `Replay lays out snapshots in the given order, each one starting from the
layout of the previous one. Unchanged nodes keep their positions; new nodes
are slotted in next to nodes of the same rank where possible.

The chart of the last snapshot is written to --output (stdout by default).
With --each, one chart per snapshot is written into the --output directory.
Layout history is stored in the cache directory and picked up by the next run
unless --no-cache is given.`,
		Example: `  topolayout replay t0.json t1.json t2.json -o chart.json
  topolayout replay snaps/*.yaml --each -o charts/ --engine dot`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReplay(cmd.Context(), args, &flags, output, each)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, or directory with --each (default: stdout)")
	cmd.Flags().BoolVar(&each, "each", false, "write one chart per snapshot")
	return cmd
}

func (c *CLI) runReplay(ctx context.Context, paths []string, flags *layoutFlags, output string, each bool) error {
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

	toStdout := !each && (output == "" || output == "-")

	prog := newProgress(logger)
	docs, err := loadSnapshots(ctx, paths)
	if err != nil {
		return err
	}
	prog.done("Loaded " + pluralize(len(docs), "snapshot"))

	steps, err := replay(ctx, cfg, flags, store, paths, docs)
	if err != nil {
		return err
	}

	if each {
		dir := output
		if dir == "" {
			dir = "."
		}
		for _, s := range steps {
			path := filepath.Join(dir, chartFileName(s.path))
			if err := topoio.ExportChart(path, s.topology, s.chart); err != nil {
				return err
			}
			printFile(path)
		}
		return nil
	}

	last := steps[len(steps)-1]
	if toStdout {
		return topoio.WriteChart(os.Stdout, last.topology, last.chart, topoio.FormatJSON)
	}
	if err := topoio.ExportChart(output, last.topology, last.chart); err != nil {
		return err
	}
	printSuccess("Replayed %s", pluralize(len(steps), "snapshot"))
	printStats(len(last.chart.Nodes), len(last.chart.Edges), last.chart.Strategy)
	printFile(output)
	return nil
}

// replay threads the snapshots through one selector and persists the
// resulting layout history.
func replay(ctx context.Context, cfg *config.Config, flags *layoutFlags, store cache.Cache, paths []string, docs []*topoio.Document) ([]step, error) {
	logger := loggerFromContext(ctx)
	selCfg, err := selectorConfig(cfg)
	if err != nil {
		return nil, err
	}
	selCfg.Logger = logger
	sel := chart.New(selCfg)
	hist := newHistory(store, selCfg.Keyer)

	steps := make([]step, 0, len(docs))
	for i, doc := range docs {
		opts := flags.chartOptions(cfg, doc.Topology, doc.Options)
		if !flags.noCache {
			restored, err := hist.restore(ctx, sel, opts.TopologyID, opts.TopologyOptions)
			if err != nil {
				return nil, err
			}
			if restored {
				logger.Debug("restored layout history", "topology", opts.TopologyID)
			}
		}

		ch, err := sel.Layout(ctx, doc.Snapshot, opts)
		if err != nil {
			return nil, err
		}
		logger.Info("laid out", "snapshot", paths[i], "strategy", ch.Strategy, "nodes", len(ch.Nodes), "edges", len(ch.Edges))
		steps = append(steps, step{path: paths[i], topology: opts.TopologyID, chart: ch})
	}

	if err := hist.save(ctx, sel); err != nil {
		return nil, err
	}
	return steps, nil
}

// loadSnapshots reads all paths concurrently, preserving order.
func loadSnapshots(ctx context.Context, paths []string) ([]*topoio.Document, error) {
	docs := make([]*topoio.Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelLoads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := topoio.ImportSnapshot(path)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// chartFileName maps "snaps/t1.yaml" to "t1.chart.json".
func chartFileName(snapshotPath string) string {
	base := filepath.Base(snapshotPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".chart.json"
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}
