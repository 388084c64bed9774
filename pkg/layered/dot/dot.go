// Package dot implements [layered.Engine] on top of Graphviz's dot layout,
// run in-process through go-graphviz.
//
// The graph is written as DOT source with fixed-size box nodes, laid out and
// rendered to Graphviz's JSON output, whose pos attributes are read back.
// Graphviz puts the origin at the bottom left; coordinates are flipped so
// that y grows downwards like in the rest of the module. One DOT unit (a
// typographic point) maps to one layout unit.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-json"

	"github.com/matzehuels/topolayout/pkg/layered"
	"github.com/matzehuels/topolayout/pkg/topology"
)

// pointsPerInch converts layout units to the inches Graphviz expects for
// sizes and separations.
const pointsPerInch = 72.0

// formatJSON is Graphviz's -Tjson output.
const formatJSON graphviz.Format = "json"

// Engine lays out graphs with Graphviz dot.
type Engine struct{}

// New returns a Graphviz-backed engine.
func New() *Engine { return &Engine{} }

// Name identifies the engine in logs and hooks.
func (e *Engine) Name() string { return "dot" }

// Layout implements [layered.Engine].
func (e *Engine) Layout(ctx context.Context, g layered.Graph) (*layered.Positions, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(g.Nodes) == 0 {
		return &layered.Positions{
			Nodes: map[string]topology.Point{},
			Edges: map[string][]topology.Point{},
		}, nil
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	graph, err := graphviz.ParseBytes([]byte(ToDOT(g)))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer graph.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, formatJSON, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return parseJSON(buf.Bytes(), g)
}

// ToDOT writes g as DOT source. Edges carry their ID in the id attribute so
// routes can be matched after layout.
func ToDOT(g layered.Graph) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	fmt.Fprintf(&buf, "  nodesep=%s;\n", inches(g.NodeSep))
	fmt.Fprintf(&buf, "  ranksep=%s;\n", inches(g.RankSep))
	buf.WriteString("  node [shape=box, fixedsize=true, label=\"\"];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes {
		fmt.Fprintf(&buf, "  %q [width=%s, height=%s];\n", n.ID, inches(n.Width), inches(n.Height))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q, minlen=%d];\n", e.Source, e.Target, e.ID, 1+max(e.MinLen, 0))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func inches(v float64) string {
	return strconv.FormatFloat(v/pointsPerInch, 'f', 4, 64)
}

// graphJSON is the subset of Graphviz JSON output that carries geometry.
type graphJSON struct {
	BB      string `json:"bb"`
	Objects []struct {
		Name string `json:"name"`
		Pos  string `json:"pos"`
	} `json:"objects"`
	Edges []struct {
		ID  string `json:"id"`
		Pos string `json:"pos"`
	} `json:"edges"`
}

// parseJSON reads node centres and edge splines from Graphviz JSON output.
func parseJSON(data []byte, g layered.Graph) (*layered.Positions, error) {
	var doc graphJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode graphviz json: %w", err)
	}

	bb, err := parseFloats(doc.BB, 4)
	if err != nil {
		return nil, fmt.Errorf("bounding box %q: %w", doc.BB, err)
	}
	x0, y0, x1, y1 := bb[0], bb[1], bb[2], bb[3]
	flip := func(x, y float64) topology.Point {
		return topology.Point{X: x - x0, Y: y1 - y}
	}

	pos := &layered.Positions{
		Nodes:  make(map[string]topology.Point, len(g.Nodes)),
		Edges:  make(map[string][]topology.Point, len(g.Edges)),
		Width:  x1 - x0,
		Height: y1 - y0,
	}

	for _, o := range doc.Objects {
		if o.Pos == "" {
			continue
		}
		xy, err := parseFloats(o.Pos, 2)
		if err != nil {
			return nil, fmt.Errorf("node %s pos %q: %w", o.Name, o.Pos, err)
		}
		pos.Nodes[o.Name] = flip(xy[0], xy[1])
	}
	for _, n := range g.Nodes {
		if _, ok := pos.Nodes[n.ID]; !ok {
			return nil, fmt.Errorf("graphviz returned no position for node %s", n.ID)
		}
	}

	for _, e := range doc.Edges {
		if e.ID == "" || e.Pos == "" {
			continue
		}
		pts, err := parseSpline(e.Pos)
		if err != nil {
			return nil, fmt.Errorf("edge %s pos %q: %w", e.ID, e.Pos, err)
		}
		route := make([]topology.Point, len(pts))
		for i, p := range pts {
			route[i] = flip(p.X, p.Y)
		}
		pos.Edges[e.ID] = route
	}
	return pos, nil
}

// parseSpline reads a Graphviz spline: optional "s,x,y" and "e,x,y" arrow
// endpoints followed by control points. The start point comes first and
// the end point last.
func parseSpline(s string) ([]topology.Point, error) {
	var start, end *topology.Point
	var ctrl []topology.Point
	for _, tok := range strings.Fields(s) {
		marker := ""
		if strings.HasPrefix(tok, "s,") || strings.HasPrefix(tok, "e,") {
			marker, tok = tok[:1], tok[2:]
		}
		xy, err := parseFloats(tok, 2)
		if err != nil {
			return nil, err
		}
		p := topology.Point{X: xy[0], Y: xy[1]}
		switch marker {
		case "s":
			start = &p
		case "e":
			end = &p
		default:
			ctrl = append(ctrl, p)
		}
	}

	var pts []topology.Point
	if start != nil {
		pts = append(pts, *start)
	}
	pts = append(pts, ctrl...)
	if end != nil {
		pts = append(pts, *end)
	}
	return pts, nil
}

func parseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) < n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(parts))
	}
	out := make([]float64, n)
	for i := range out {
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[i]), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

var _ layered.Engine = (*Engine)(nil)
