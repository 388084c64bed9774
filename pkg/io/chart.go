package io

import (
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/topolayout/pkg/chart"
	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/topology"
)

// ChartDocument is the encoded form of a chart.
type ChartDocument struct {
	Topology     string          `json:"topology,omitempty" yaml:"topology,omitempty"`
	Strategy     string          `json:"strategy" yaml:"strategy"`
	Width        float64         `json:"width" yaml:"width"`
	Height       float64         `json:"height" yaml:"height"`
	TooManyNodes bool            `json:"too_many_nodes,omitempty" yaml:"too_many_nodes,omitempty"`
	Nodes        []topology.Node `json:"nodes" yaml:"nodes"`
	Edges        []topology.Edge `json:"edges" yaml:"edges"`
}

// NewChartDocument wraps c for encoding.
func NewChartDocument(topologyID string, c chart.Chart) ChartDocument {
	doc := ChartDocument{
		Topology:     topologyID,
		Strategy:     string(c.Strategy),
		Width:        c.Width,
		Height:       c.Height,
		TooManyNodes: c.TooManyNodes,
		Nodes:        c.Nodes,
		Edges:        c.Edges,
	}
	if doc.Nodes == nil {
		doc.Nodes = []topology.Node{}
	}
	if doc.Edges == nil {
		doc.Edges = []topology.Edge{}
	}
	return doc
}

// WriteChart encodes c to w.
func WriteChart(w io.Writer, topologyID string, c chart.Chart, f Format) error {
	return encode(w, f, NewChartDocument(topologyID, c))
}

// ReadChart decodes a document written by [WriteChart].
func ReadChart(r io.Reader, f Format) (*ChartDocument, error) {
	var doc ChartDocument
	if err := decode(r, f, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ExportChart writes c to path, creating parent directories. The codec is
// chosen from the extension.
func ExportChart(path, topologyID string, c chart.Chart) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "create %s", dir)
		}
	}
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	if err := WriteChart(out, topologyID, c, f); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
