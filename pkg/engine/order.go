package engine

import (
	"github.com/matzehuels/nodeflow/pkg/graph"
)

// OrderResult is the outcome of [Order]. Either Sequence holds a complete
// topological order, or Cyclic is set and Sequence is nil.
type OrderResult struct {
	Sequence []string // Node IDs in execution order
	Cyclic   bool     // The graph contains at least one cycle

	blocked []string
}

// Ok reports whether the graph could be ordered. An empty graph is Ok with
// an empty Sequence.
func (r OrderResult) Ok() bool { return !r.Cyclic }

// Blocked returns the IDs of nodes that never became ready because they lie
// on, or downstream of, a cycle. It is empty when the result is Ok.
func (r OrderResult) Blocked() []string { return append([]string(nil), r.blocked...) }

// Order computes a topological order of g using Kahn's algorithm.
//
// Zero in-degree nodes are seeded in node insertion order and the queue is
// FIFO. Successors are released in edge insertion order.
func Order(g *graph.Graph) OrderResult {
	ids := g.NodeIDs()
	inDegree := make(map[string]int, len(ids))
	successors := make(map[string][]string, len(ids))
	for _, e := range g.Edges() {
		inDegree[e.TargetNodeID]++
		successors[e.SourceNodeID] = append(successors[e.SourceNodeID], e.TargetNodeID)
	}

	queue := make([]string, 0, len(ids))
	for _, id := range ids {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	sequence := make([]string, 0, len(ids))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		sequence = append(sequence, id)

		for _, next := range successors[id] {
			inDegree[next]--
			if inDegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}

	if len(sequence) == len(ids) {
		return OrderResult{Sequence: sequence}
	}

	var blocked []string
	for _, id := range ids {
		if inDegree[id] > 0 {
			blocked = append(blocked, id)
		}
	}
	return OrderResult{Cyclic: true, blocked: blocked}
}
