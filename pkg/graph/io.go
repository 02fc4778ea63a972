package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/nodeflow/pkg/node"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension. Anything other
// than .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// =============================================================================
// Document Encoding
// =============================================================================

// MarshalDocument encodes doc as indented JSON.
func MarshalDocument(doc Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(&buf, doc, FormatJSON); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes a JSON document.
func UnmarshalDocument(data []byte) (Document, error) {
	return ReadDocument(bytes.NewReader(data), FormatJSON)
}

// WriteDocument encodes doc to w in the given format.
//
// YAML output is produced from the JSON form, so positions are re-encoded
// as YAML sequences rather than kept as raw bytes.
func WriteDocument(w io.Writer, doc Document, f Format) error {
	normalize(&doc)
	switch f {
	case FormatYAML:
		data, err := json.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode: %w", err)
		}
		return nil
	}
}

// ReadDocument decodes a document from r in the given format.
func ReadDocument(r io.Reader, f Format) (Document, error) {
	var doc Document
	switch f {
	case FormatYAML:
		var generic any
		if err := yaml.NewDecoder(r).Decode(&generic); err != nil && err != io.EOF {
			return Document{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		data, err := json.Marshal(generic)
		if err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
	default:
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return Document{}, fmt.Errorf("%w: %w", ErrMalformedDocument, err)
		}
	}
	normalize(&doc)
	return doc, nil
}

// normalize replaces nil collections so that encoded documents always carry
// "nodes", "edges" and "parameters" as arrays and objects.
func normalize(doc *Document) {
	if doc.Nodes == nil {
		doc.Nodes = []NodeRecord{}
	}
	if doc.Edges == nil {
		doc.Edges = []EdgeRecord{}
	}
	for i := range doc.Nodes {
		if doc.Nodes[i].Parameters == nil {
			doc.Nodes[i].Parameters = map[string]any{}
		}
	}
}

// =============================================================================
// File API
// =============================================================================

// WriteFile writes doc to path, choosing the format from the extension.
func WriteFile(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteDocument(f, doc, FormatFromPath(path)); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a document from path, choosing the format from the
// extension.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDocument(f, FormatFromPath(path))
}

// WriteGraphFile serializes g and writes it to path.
func WriteGraphFile(g *Graph, path string) error {
	return WriteFile(path, g.Serialize())
}

// ReadGraphFile reads a document from path and loads it into a new graph.
func ReadGraphFile(path string, reg *node.Registry, opts ...Option) (*Graph, LoadReport, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, LoadReport{}, err
	}
	g := New(opts...)
	report, err := g.Deserialize(doc, reg)
	if err != nil {
		return nil, report, err
	}
	return g, report, nil
}

func sortedKeys(m map[string]any) []string {
	return slices.Sorted(maps.Keys(m))
}
