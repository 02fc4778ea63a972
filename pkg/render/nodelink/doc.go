// Package nodelink renders nodeflow graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// nodes appear as boxes connected by arrows labelled with the ports they
// join.
//
// # Usage
//
// Convert a graph to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Ports: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
// The [Options] struct controls diagram generation:
//
//   - Detailed: node labels include the short ID and parameter values
//   - Ports: nodes are drawn as records with one field per port, and edges
//     attach to the fields they connect
//   - RankDir: layout direction, "TB" (default) or "LR"
//   - States: per-node fill colors, typically from [StatesFromRun]
//
// # Run Overlays
//
// [StatesFromRun] turns an [engine.RunResult] into node states so a diagram
// shows which nodes executed, which one failed and which were skipped or
// blocked by a cycle.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
//
// [engine.RunResult]: github.com/matzehuels/nodeflow/pkg/engine.RunResult
package nodelink
