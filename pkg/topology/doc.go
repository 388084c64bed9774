// Package topology defines the node and edge collections exchanged between
// snapshot ingestion, the layout engine and renderers.
//
// # Overview
//
// A topology snapshot is a set of nodes (hosts, containers, processes) where
// each node lists the IDs of its neighbours in an adjacency list. Edges are
// never transmitted; they are derived from adjacency with [DeriveEdges]:
//
//	snap, _ := topology.NewSnapshot(
//	    topology.Node{ID: "web", Adjacency: []string{"db"}},
//	    topology.Node{ID: "db"},
//	)
//	edges := topology.DeriveEdges(snap.Nodes) // web---db
//
// # Edge Identity
//
// Edge IDs are built with [ConstructEdgeID] as source + [EdgeIDSeparator] +
// target. The ID is stable regardless of which snapshot produced the edge, so
// layout caches keyed by edge ID survive across snapshots and reverse edges can
// be found by swapping the halves ([ReverseEdgeID]).
//
// # Collapsing
//
// [DeriveEdges] keeps both directions of a mutual link because layered layout
// uses direction. Renderers only care that a link exists, so
// [CollapseMultiEdges] folds each A→B/B→A pair into one edge marked
// Bidirectional.
//
// # Immutability
//
// All functions return new slices and never modify their inputs. Callers may
// share snapshots between goroutines as long as nobody writes to them.
package topology
