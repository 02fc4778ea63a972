package graph

import (
	"fmt"
	"maps"

	"github.com/matzehuels/nodeflow/pkg/node"
)

// Document is the persisted shape of a graph. It holds plain records only;
// turning them back into live nodes requires a [node.Registry].
type Document struct {
	Nodes []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges []EdgeRecord `json:"edges" yaml:"edges"`
}

// NodeRecord is the persisted form of a node.
type NodeRecord struct {
	ID         string         `json:"id" yaml:"id"`
	Name       string         `json:"name" yaml:"name"`
	Parameters map[string]any `json:"parameters" yaml:"parameters"`
	Pos        node.Position  `json:"pos" yaml:"pos"` // Opaque editor metadata
}

// EdgeRecord is the persisted form of an edge.
type EdgeRecord struct {
	SourceNodeID     string `json:"source_node_id" yaml:"source_node_id"`
	SourceOutputName string `json:"source_output_name" yaml:"source_output_name"`
	TargetNodeID     string `json:"target_node_id" yaml:"target_node_id"`
	TargetInputName  string `json:"target_input_name" yaml:"target_input_name"`
}

// Edge converts the record to an [Edge].
func (r EdgeRecord) Edge() Edge {
	return Edge{
		SourceNodeID: r.SourceNodeID,
		SourceOutput: r.SourceOutputName,
		TargetNodeID: r.TargetNodeID,
		TargetInput:  r.TargetInputName,
	}
}

// SkippedNode is a document node that could not be reconstructed.
type SkippedNode struct {
	ID     string
	Name   string
	Reason string
}

// LoadReport describes what [Graph.Deserialize] could not restore.
type LoadReport struct {
	// Loaded is the number of nodes added to the graph.
	Loaded int
	// Skipped lists nodes whose name was not in the registry or whose type
	// cannot take a persisted identity.
	Skipped []SkippedNode
	// DroppedEdges lists edges rejected because an endpoint was missing,
	// usually as a consequence of a skipped node.
	DroppedEdges []EdgeRecord
	// IgnoredParams maps node IDs to persisted parameter names the node
	// type does not declare.
	IgnoredParams map[string][]string
}

// Clean reports whether the document loaded without losing anything.
func (r LoadReport) Clean() bool {
	return len(r.Skipped) == 0 && len(r.DroppedEdges) == 0 && len(r.IgnoredParams) == 0
}

// Serialize produces the persisted form of the graph. Nodes and edges
// appear in insertion order. Nodes that do not implement
// [node.Restorable] are written with the default position.
func (g *Graph) Serialize() Document {
	doc := Document{
		Nodes: make([]NodeRecord, 0, len(g.nodeOrder)),
		Edges: make([]EdgeRecord, 0, len(g.edgeOrder)),
	}
	for _, n := range g.Nodes() {
		params := n.Params()
		if params == nil {
			params = node.Params{}
		}
		rec := NodeRecord{
			ID:         n.ID(),
			Name:       n.Name(),
			Parameters: map[string]any(params),
		}
		if r, ok := n.(node.Restorable); ok {
			rec.Pos = r.Position()
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{
			SourceNodeID:     e.SourceNodeID,
			SourceOutputName: e.SourceOutput,
			TargetNodeID:     e.TargetNodeID,
			TargetInputName:  e.TargetInput,
		})
	}
	return doc
}

// Deserialize replaces the contents of the graph with the nodes and edges
// of doc. It always clears the graph first, so it is not additive.
//
// Nodes are constructed by name through reg, then their ID, parameter
// values and position are restored. A name missing from reg is skipped with
// a warning and recorded in the report, as is one whose constructor
// returns nil. Edges are re-added through
// [Graph.AddEdge]; those whose endpoints are missing are dropped and
// recorded.
//
// A document that repeats a node ID is rejected; the graph is left empty.
func (g *Graph) Deserialize(doc Document, reg *node.Registry) (LoadReport, error) {
	g.Clear()
	report := LoadReport{}

	if reg == nil {
		return report, ErrNilRegistry
	}

	for _, rec := range doc.Nodes {
		ctor, ok := reg.Lookup(rec.Name)
		if !ok {
			g.logger.Warn("node class not found, skipping", "name", rec.Name, "id", rec.ID)
			report.Skipped = append(report.Skipped, SkippedNode{ID: rec.ID, Name: rec.Name, Reason: "unknown node type"})
			continue
		}

		n := ctor()
		if n == nil {
			g.logger.Warn("node constructor returned nil, skipping", "name", rec.Name, "id", rec.ID)
			report.Skipped = append(report.Skipped, SkippedNode{ID: rec.ID, Name: rec.Name, Reason: "constructor returned nil"})
			continue
		}
		r, ok := n.(node.Restorable)
		if !ok && rec.ID != "" && rec.ID != n.ID() {
			g.logger.Warn("node type cannot restore its ID, skipping", "name", rec.Name, "id", rec.ID)
			report.Skipped = append(report.Skipped, SkippedNode{ID: rec.ID, Name: rec.Name, Reason: "identity not restorable"})
			continue
		}

		var ignored []string
		if ok {
			if rec.ID != "" {
				r.RestoreID(rec.ID)
			}
			ignored = r.RestoreParams(node.Params(maps.Clone(rec.Parameters)))
			r.SetPosition(rec.Pos)
		} else {
			ignored = setParams(n, rec.Parameters)
		}
		if len(ignored) > 0 {
			g.logger.Warn("ignoring undeclared parameters", "name", rec.Name, "id", n.ID(), "params", ignored)
			if report.IgnoredParams == nil {
				report.IgnoredParams = make(map[string][]string)
			}
			report.IgnoredParams[n.ID()] = ignored
		}

		if err := g.AddNode(n); err != nil {
			g.Clear()
			return LoadReport{}, fmt.Errorf("add node %s: %w", rec.ID, err)
		}
		report.Loaded++
	}

	for _, rec := range doc.Edges {
		_, _, err := g.AddEdge(rec.SourceNodeID, rec.SourceOutputName, rec.TargetNodeID, rec.TargetInputName)
		if err != nil {
			g.logger.Warn("dropping edge", "edge", rec.Edge().ID(), "err", err)
			report.DroppedEdges = append(report.DroppedEdges, rec)
		}
	}

	return report, nil
}

// setParams applies values through the public Node API for node types that
// do not implement Restorable.
func setParams(n node.Node, values map[string]any) []string {
	var ignored []string
	for _, k := range sortedKeys(values) {
		if err := n.SetParamValue(k, values[k]); err != nil {
			ignored = append(ignored, k)
		}
	}
	return ignored
}
