package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/topolayout/pkg/chart"
	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/topology"
)

const snapshotJSON = `{
  "topology": "containers",
  "options": "system=hide",
  "nodes": [
    {"id": "web", "rank": "frontend", "adjacency": ["db"], "x": 12, "positioned": true},
    {"id": "db", "label": "postgres", "meta": {"image": "postgres:16"}}
  ]
}`

const snapshotYAML = `topology: containers
options: system=hide
nodes:
  - id: web
    rank: frontend
    adjacency: [db]
    x: 12
    positioned: true
  - id: db
    label: postgres
    meta:
      image: postgres:16
`

func TestReadSnapshot(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"json", snapshotJSON, FormatJSON},
		{"yaml", snapshotYAML, FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := ReadSnapshot(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("ReadSnapshot() error = %v", err)
			}
			if doc.Topology != "containers" || doc.Options != "system=hide" {
				t.Errorf("header = %q %q", doc.Topology, doc.Options)
			}
			nodes := doc.Snapshot.Nodes
			if len(nodes) != 2 {
				t.Fatalf("nodes = %d, want 2", len(nodes))
			}
			web, db := nodes[0], nodes[1]
			if web.ID != "web" || web.Rank != "frontend" || !reflect.DeepEqual(web.Adjacency, []string{"db"}) {
				t.Errorf("web = %+v", web)
			}
			if web.Positioned || web.X != 0 {
				t.Error("layout fields should be discarded")
			}
			if db.Label != "postgres" || db.Meta["image"] != "postgres:16" {
				t.Errorf("db = %+v", db)
			}
		})
	}
}

func TestReadSnapshotErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		code   errors.Code
	}{
		{"malformed json", `{"nodes": [`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"unknown field", `{"nodes": [], "edges": []}`, FormatJSON, errors.ErrCodeInvalidFormat},
		{"malformed yaml", "nodes: [", FormatYAML, errors.ErrCodeInvalidFormat},
		{"duplicate id", `{"nodes": [{"id": "a"}, {"id": "a"}]}`, FormatJSON, errors.ErrCodeInvalidInput},
		{"separator in id", `{"nodes": [{"id": "a---b"}]}`, FormatJSON, errors.ErrCodeInvalidNodeID},
		{"unknown format", `{}`, Format("xml"), errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSnapshot(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	for _, f := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(f), func(t *testing.T) {
			in, err := ReadSnapshot(strings.NewReader(snapshotJSON), FormatJSON)
			if err != nil {
				t.Fatal(err)
			}
			var buf bytes.Buffer
			if err := WriteSnapshot(&buf, in, f); err != nil {
				t.Fatalf("WriteSnapshot() error = %v", err)
			}
			out, err := ReadSnapshot(&buf, f)
			if err != nil {
				t.Fatalf("ReadSnapshot() error = %v", err)
			}
			if !reflect.DeepEqual(in, out) {
				t.Errorf("round trip changed document:\n in: %+v\nout: %+v", in.Snapshot.Nodes, out.Snapshot.Nodes)
			}
		})
	}
}

func TestImportSnapshot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snap.yml")
	if err := os.WriteFile(path, []byte(snapshotYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	doc, err := ImportSnapshot(path)
	if err != nil {
		t.Fatalf("ImportSnapshot() error = %v", err)
	}
	if doc.Snapshot.Len() != 2 {
		t.Errorf("nodes = %d, want 2", doc.Snapshot.Len())
	}

	if _, err := ImportSnapshot(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := ImportSnapshot(filepath.Join(dir, "snap.txt")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("bad extension error = %v, want INVALID_FORMAT", err)
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ImportSnapshot(bad); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("malformed file error = %v, want INVALID_FORMAT", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"a.json", FormatJSON, false},
		{"dir/a.JSON", FormatJSON, false},
		{"a.yaml", FormatYAML, false},
		{"a.yml", FormatYAML, false},
		{"a", "", true},
		{"a.toml", "", true},
	}
	for _, tt := range tests {
		got, err := FormatFromPath(tt.path)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("FormatFromPath(%q) = %q, %v", tt.path, got, err)
		}
	}
}

func TestExportChart(t *testing.T) {
	snap, _ := topology.NewSnapshot(
		topology.Node{ID: "a", Adjacency: []string{"b"}},
		topology.Node{ID: "b", Adjacency: []string{"a"}},
	)
	c, err := chart.New(chart.Config{}).Layout(context.Background(), snap, chart.Options{})
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"out/chart.json", "out/chart.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := ExportChart(path, "hosts", c); err != nil {
				t.Fatalf("ExportChart() error = %v", err)
			}
			f, _ := FormatFromPath(path)
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			doc, err := ReadChart(bytes.NewReader(data), f)
			if err != nil {
				t.Fatalf("ReadChart() error = %v", err)
			}
			if doc.Topology != "hosts" || doc.Strategy != "full" || len(doc.Nodes) != 2 || len(doc.Edges) != 1 {
				t.Fatalf("doc = %+v", doc)
			}
			if !doc.Edges[0].Bidirectional || !reflect.DeepEqual(doc.Edges[0].Points, c.Edges[0].Points) {
				t.Errorf("edge = %+v, want %+v", doc.Edges[0], c.Edges[0])
			}
			if doc.Nodes[0].Position() != c.Nodes[0].Position() {
				t.Errorf("node a at %v, want %v", doc.Nodes[0].Position(), c.Nodes[0].Position())
			}
		})
	}
}

func TestWriteChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteChart(&buf, "", chart.Chart{Strategy: "none"}, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"nodes": []`) {
		t.Errorf("empty chart should encode empty arrays, got %s", buf.String())
	}
}

func TestWriteChartKeepsZeroCoordinates(t *testing.T) {
	c := chart.Chart{
		Strategy: "full",
		Nodes:    []topology.Node{{ID: "a", X: 0, Y: 40, Positioned: true}},
	}
	tests := []struct {
		format Format
		want   []string
	}{
		{FormatJSON, []string{`"x": 0`, `"y": 40`}},
		{FormatYAML, []string{"x: 0", "y: 40"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteChart(&buf, "hosts", c, tt.format); err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("chart missing %q:\n%s", w, buf.String())
				}
			}
		})
	}
}
