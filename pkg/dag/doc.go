// Package dag provides the directed, row-layered graph that layered layout
// works on.
//
// # Overview
//
// Layered (Sugiyama-style) layout assigns every node to a horizontal row,
// replaces edges that span several rows by chains of dummy nodes, orders each
// row to reduce crossings and finally turns rows and orders into coordinates.
// [DAG] holds the intermediate state of that pipeline: nodes with a Row,
// directed edges with a minimum length, and the current left-to-right order
// of each row.
//
//	g := dag.New()
//	_ = g.AddNode(dag.Node{ID: "web"})
//	_ = g.AddNode(dag.Node{ID: "db"})
//	_ = g.AddEdge(dag.Edge{ID: "web---db", From: "web", To: "db"})
//
// Iteration order is insertion order, which keeps layouts deterministic for
// a given snapshot order.
//
// # Node Kinds
//
//   - [NodeKindRegular]: a node of the input topology
//   - [NodeKindDummy]: a waypoint inserted where a long edge crosses a row;
//     its EdgeID names the edge whose route it belongs to
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count crossings with a Fenwick
// tree in O(E log V); [CountPairCrossings] evaluates a single adjacent swap.
//
// # Concurrency
//
// A DAG is not safe for concurrent use. Layout builds a fresh DAG for every
// call, so no synchronization is needed in practice.
//
// The [transform] subpackage provides cycle breaking, rank assignment and
// edge subdivision.
//
// [transform]: github.com/matzehuels/topolayout/pkg/dag/transform
package dag
