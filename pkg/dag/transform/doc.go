// Package transform prepares a [dag.DAG] for layered layout.
//
// The three steps run in this order:
//
//  1. [BreakCycles] reverses back edges so the graph is acyclic
//  2. [AssignLayers] puts every node on a row by longest path, honouring
//     each edge's MinLen
//  3. [Subdivide] replaces edges spanning several rows by chains of dummy
//     nodes so that every edge joins consecutive rows
//
// After step 3, [dag.DAG.Validate] succeeds and crossing reduction can work
// row pair by row pair. Dummy nodes become the waypoints of edge routes.
//
// All functions modify the graph in place and panic on a nil graph.
package transform
