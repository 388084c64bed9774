// Package sugiyama is the built-in [layered.Engine].
//
// Each connected component is laid out on its own in four phases, then the
// components are placed side by side from left to right:
//
//  1. cycle breaking: back edges are reversed ([transform.BreakCycles])
//  2. ranking: longest path from the sources, honouring edge MinLen
//     ([transform.AssignLayers]), then long edges are split by dummy nodes
//     ([transform.Subdivide])
//  3. ordering: alternating barycenter sweeps plus adjacent-pair transposition;
//     a sweep is kept only if it lowers the total crossing count
//     ([dag.CountCrossings])
//  4. positioning: every rank shares one column grid as wide as the widest
//     rank; nodes move towards the mean column of their parents
//
// Nodes sit on a uniform grid whose pitch is the largest node box plus the
// separations, so rows of equal size come out as a rectangle. Edge routes
// run through the dummy nodes of their chain and are flipped back for edges
// that cycle breaking reversed. Self-loops never enter the DAG; they are
// drawn as a small loop on the right side of their node.
//
// Connected components are found with gonum's topo.ConnectedComponents.
package sugiyama
