// Package engine executes a [graph.Graph] once, in dependency order.
//
// # Overview
//
// A run has two phases. [Order] computes a topological order with Kahn's
// algorithm, then [Engine.Process] walks that order, executing each node
// exactly once and routing output values to downstream inputs along the
// graph's edges.
//
//	eng := engine.New(engine.WithLogger(logger))
//	res := eng.Process(ctx, g)
//	if err := res.Err(); err != nil {
//	    return err
//	}
//
// # Ordering
//
// Nodes with no incoming edges are seeded in graph insertion order and
// processed first-in first-out, so two nodes without a dependency between
// them always run in the order they were added. A graph that cannot be
// ordered yields an [OrderResult] with Cyclic set, which is distinct from
// the empty order of an empty graph. A single node with an edge to itself
// is a cycle.
//
// # Input Routing
//
// Before a node executes, the engine builds its input [node.Values] from
// the incoming edges: for each edge, the value the source node produced on
// the edge's source port is bound to the edge's target port. Ports without
// an incoming edge are absent from the map. When a producer did not emit
// the source port, the target port is absent too. A node that returns a nil
// map is treated as having produced no outputs.
//
// All outputs of a run live in a run cache owned by a single Process call.
// It is never returned and never reused.
//
// # Outcomes
//
// [RunResult.Status] is one of:
//
//   - [StatusSucceeded]: every node executed
//   - [StatusCycleDetected]: the graph has a cycle; nothing executed
//   - [StatusNodeFailed]: a node returned an error or panicked; the run
//     stopped at that node and [RunResult.Failure] names it
//   - [StatusCanceled]: the context was canceled between two nodes
//
// # Concurrency
//
// Execution is sequential: no two nodes of a run overlap. An [Engine] holds
// no per-run state and may be shared between goroutines, but a graph must
// not be mutated while a run against it is in progress.
package engine
