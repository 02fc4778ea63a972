// Package server exposes graph processing over HTTP.
//
// The server is a thin JSON surface over [graph], [engine] and
// [nodelink] for applications that submit documents instead of building
// graphs in process. Every request carries a complete document; nothing
// is stored between requests except rendered artifacts in the optional
// [cache.Cache].
//
// # Routes
//
//	GET  /healthz   liveness check
//	GET  /nodes     catalog of registered node types
//	POST /order     topological order of the posted document
//	POST /process   execute the posted document
//	POST /render    DOT or SVG diagram of the posted document
//
// Request bodies are JSON documents as produced by [graph.WriteDocument].
// Malformed documents get 400, runs that hit a cycle or a failing node get
// 422 with the run report in the body.
//
// The server runs whatever the registry can build, so a registry handed to
// it should leave out the file nodes or confine them:
//
//	nodes.DefaultRegistry(nodes.WithoutFiles())
//	nodes.DefaultRegistry(nodes.WithFileRoot(root))
//
// # Usage
//
//	reg := nodes.DefaultRegistry(nodes.WithoutFiles())
//	srv := server.New(reg, server.WithLogger(logger))
//	err := srv.ListenAndServe(ctx, "localhost:8080")
//
// [nodelink]: github.com/matzehuels/nodeflow/pkg/render/nodelink
package server
