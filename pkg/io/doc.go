// Package io reads topology snapshots and writes positioned charts.
//
// # Snapshot format
//
// A snapshot file holds the topology it belongs to and its nodes. Edges are
// not stored; they are derived from adjacency lists:
//
//	{
//	  "topology": "containers",
//	  "options": "system=hide",
//	  "nodes": [
//	    {"id": "web", "rank": "frontend", "adjacency": ["db"]},
//	    {"id": "db", "label": "postgres", "meta": {"image": "postgres:16"}}
//	  ]
//	}
//
// The same document can be written as YAML. [FormatFromPath] picks the codec
// from the file extension: .json, .yaml or .yml.
//
// # Chart format
//
// [WriteChart] emits the nodes with their coordinates and the collapsed edges
// with their route points, plus the size of the laid out region and the
// strategy used to produce it.
//
// # Errors
//
// Malformed documents are INVALID_FORMAT errors, missing files are
// FILE_NOT_FOUND, and invalid or duplicate node IDs keep the code returned by
// [topology.NewSnapshot].
package io
