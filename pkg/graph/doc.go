// Package graph provides the entity model for nodeflow pipelines: a set of
// nodes and the port-to-port edges between them.
//
// # Overview
//
// A [Graph] owns its nodes exclusively and enforces referential integrity:
// every edge must connect two nodes already present in the graph. Nodes are
// kept in insertion order, which the engine uses as its scheduling
// tie-break. Edges are identified by their endpoints, so adding a
// structurally identical edge twice keeps a single entry.
//
//	g := graph.New()
//	g.AddNode(a)
//	g.AddNode(b)
//	g.AddEdge(a.ID(), "image", b.ID(), "image")
//
// A graph may contain cycles while being edited. Acyclicity is only
// required to execute it, see package engine.
//
// # Documents
//
// [Graph.Serialize] produces a [Document], the persisted shape of a
// pipeline:
//
//	{
//	  "nodes": [{"id": "...", "name": "Blur", "parameters": {"kernel_size": 5}, "pos": [0, 0]}],
//	  "edges": [{"source_node_id": "...", "source_output_name": "image",
//	             "target_node_id": "...", "target_input_name": "image"}]
//	}
//
// [Graph.Deserialize] rebuilds nodes through a [node.Registry]. Names absent
// from the registry are skipped with a warning and the edges that would
// have touched them are dropped; the rest of the document still loads.
//
// Use [ReadFile] and [WriteFile] for JSON or YAML files, chosen by
// extension.
//
// # Concurrency
//
// Graph is not safe for concurrent use. A graph must not be mutated while
// the engine processes it.
package graph
