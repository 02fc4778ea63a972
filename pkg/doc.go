// Package pkg provides the libraries behind nodeflow, a dataflow graph
// substrate: named processing nodes with typed ports, connected by edges,
// executed one at a time in dependency order.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. Core - [node] (the Node contract and Registry), [graph] (nodes,
//     edges and the document format) and [engine] (ordering and execution)
//  2. Catalog - [nodes], the built-in node types
//  3. Surfaces - [render/nodelink] diagrams, [server] HTTP API, [cache]
//     artifact storage, [errors] coded errors, [observability] hooks
//
// # Data Flow
//
//	JSON/YAML document
//	         ↓
//	    [graph] Deserialize (with a [node.Registry])
//	         ↓
//	    [engine] Order + Process
//	         ↓
//	    RunResult + values published through the Observer
//
// # Quick Start
//
//	reg := nodes.DefaultRegistry()
//	g, report, err := graph.ReadGraphFile("pipeline.json", reg)
//	if err != nil {
//	    return err
//	}
//	for _, sk := range report.Skipped {
//	    log.Warn("skipped", "id", sk.ID, "reason", sk.Reason)
//	}
//
//	rec := &node.Recorder{}
//	res := engine.New().Process(node.WithObserver(ctx, rec), g)
//	if err := res.Err(); err != nil {
//	    return err
//	}
//
// # Extending
//
// Custom node types embed [node.Base], implement Execute, and are added to
// a registry under their display name:
//
//	reg.MustRegister("Invert", func() node.Node { return NewInvert() })
//
// [render/nodelink]: github.com/matzehuels/nodeflow/pkg/render/nodelink
package pkg
