package io

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"

	json "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/topolayout/pkg/errors"
	"github.com/matzehuels/topolayout/pkg/topology"
)

// Document is a decoded snapshot file.
type Document struct {
	Topology string
	Options  string
	Snapshot *topology.Snapshot
}

type document struct {
	Topology string          `json:"topology,omitempty" yaml:"topology,omitempty"`
	Options  string          `json:"options,omitempty" yaml:"options,omitempty"`
	Nodes    []topology.Node `json:"nodes" yaml:"nodes"`
}

// ReadSnapshot decodes a snapshot document from r. Layout fields present in
// the input (degree, coordinates) are discarded.
func ReadSnapshot(r io.Reader, f Format) (*Document, error) {
	var doc document
	if err := decode(r, f, &doc); err != nil {
		return nil, err
	}
	for i, n := range doc.Nodes {
		n.Degree = 0
		doc.Nodes[i] = n.WithoutPosition()
	}
	snap, err := topology.NewSnapshot(doc.Nodes...)
	if err != nil {
		return nil, err
	}
	return &Document{Topology: doc.Topology, Options: doc.Options, Snapshot: snap}, nil
}

// ImportSnapshot reads the snapshot file at path, choosing the codec from
// its extension.
func ImportSnapshot(path string) (*Document, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, openError(path, err)
	}
	doc, err := ReadSnapshot(bytes.NewReader(data), f)
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "%s", path)
	}
	return doc, nil
}

// WriteSnapshot encodes doc to w.
func WriteSnapshot(w io.Writer, doc *Document, f Format) error {
	out := document{Topology: doc.Topology, Options: doc.Options}
	if doc.Snapshot != nil {
		out.Nodes = doc.Snapshot.Nodes
	}
	if out.Nodes == nil {
		out.Nodes = []topology.Node{}
	}
	return encode(w, f, out)
}

func decode(r io.Reader, f Format, v any) error {
	var err error
	switch f {
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		err = dec.Decode(v)
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		err = dec.Decode(v)
		if stderrors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", f)
	}
	return nil
}

func encode(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode json")
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
		}
		return enc.Close()
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
}

func openError(path string, err error) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
	}
	return errors.Wrap(errors.ErrCodeInvalidInput, err, "read %s", path)
}
