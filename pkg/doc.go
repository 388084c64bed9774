// Package pkg provides the libraries behind topolayout, an incremental layout
// engine for live topology views.
//
// # Overview
//
// A topology view (hosts, containers, processes) is redrawn every time the
// underlying data changes. Running a graph layout from scratch on every
// update makes nodes jump around; topolayout instead remembers where nodes
// were and only lays out what is new.
//
// The data flow:
//
//	Snapshot (nodes with adjacency lists)
//	         ↓
//	    [topology] derive edges, annotate degrees
//	         ↓
//	    [layout] pick a strategy: cached, insert by rank, or full
//	         ↓                          ↓
//	    [layered] engine          [layout.Cache] history
//	    (sugiyama or dot)
//	         ↓
//	    [chart] collapse reciprocal edges, memoize per snapshot
//	         ↓
//	    positioned chart (JSON/YAML via [io])
//
// # Packages
//
//   - [topology]: node, edge and snapshot types; edge derivation and
//     multi-edge collapsing; degree annotation
//   - [layout]: the incremental layout engine and its cache
//   - [layered]: the contract for full layouts, with the [layered/sugiyama]
//     and [layered/dot] backends
//   - [dag], [dag/transform]: the layered graph used by the Sugiyama engine
//   - [chart]: memoized snapshot-to-chart selection with per-topology history
//   - [memo]: compute-if-changed memoization
//   - [cache]: byte caches and topology keys for persisting layout history
//   - [io], [config]: snapshot/chart files and TOML settings
//   - [errors], [observability]: coded errors and instrumentation hooks
//
// # Quick Start
//
//	sel := chart.New(chart.Config{})
//	snap, _ := topology.NewSnapshot(
//	    topology.Node{ID: "web", Adjacency: []string{"db"}},
//	    topology.Node{ID: "db"},
//	)
//	c, err := sel.Layout(ctx, snap, chart.Options{TopologyID: "hosts", Width: 800, Height: 600})
//
// Call Layout again with each new snapshot; nodes seen before keep their
// coordinates.
//
// [topology]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/topology
// [layout]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/layout
// [layout.Cache]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/layout#Cache
// [layered]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/layered
// [layered/sugiyama]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/layered/sugiyama
// [layered/dot]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/layered/dot
// [dag]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/dag
// [dag/transform]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/dag/transform
// [chart]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/chart
// [memo]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/memo
// [cache]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/cache
// [io]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/io
// [config]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/topolayout/pkg/observability
package pkg
