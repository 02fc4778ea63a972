package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
	"github.com/matzehuels/nodeflow/pkg/observability"
)

var (
	// ErrCycleDetected is matched by [RunResult.Err] when the graph could not
	// be ordered. No node executed.
	ErrCycleDetected = errors.New("graph contains a cycle")

	// ErrNodePanicked is wrapped by the cause of a [NodeExecutionError] when
	// the node panicked instead of returning an error.
	ErrNodePanicked = errors.New("node panicked")
)

// NodeExecutionError reports the node that stopped a run.
type NodeExecutionError struct {
	NodeID   string
	NodeName string
	Cause    error
}

func (e *NodeExecutionError) Error() string {
	return fmt.Sprintf("node %s (%s) failed: %v", e.NodeID, e.NodeName, e.Cause)
}

func (e *NodeExecutionError) Unwrap() error { return e.Cause }

// Status is the outcome of a run.
type Status string

const (
	StatusSucceeded     Status = "succeeded"
	StatusCycleDetected Status = "cycle_detected"
	StatusNodeFailed    Status = "node_failed"
	StatusCanceled      Status = "canceled"
)

// RunResult describes a single [Engine.Process] call.
type RunResult struct {
	Status   Status              // Outcome of the run
	Order    []string            // Computed order; nil when a cycle was detected
	Executed []string            // Nodes that completed, in execution order
	Blocked  []string            // Nodes that could not be ordered
	Failure  *NodeExecutionError // Set when Status is StatusNodeFailed
	Cause    error               // Context error when Status is StatusCanceled
	Duration time.Duration       // Wall time of the run
}

// Succeeded reports whether every node executed.
func (r RunResult) Succeeded() bool { return r.Status == StatusSucceeded }

// Err converts the result to an error, or nil on success.
func (r RunResult) Err() error {
	switch r.Status {
	case StatusSucceeded:
		return nil
	case StatusCycleDetected:
		if len(r.Blocked) == 0 {
			return ErrCycleDetected
		}
		return fmt.Errorf("%w: blocked nodes %s", ErrCycleDetected, strings.Join(r.Blocked, ", "))
	case StatusNodeFailed:
		return r.Failure
	case StatusCanceled:
		return fmt.Errorf("run canceled: %w", r.Cause)
	default:
		return fmt.Errorf("unknown run status %q", r.Status)
	}
}

// Option configures an [Engine].
type Option func(*Engine)

// WithLogger sets the logger. By default the engine logs nothing.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithHooks sets the hooks notified about run and node events. Without this
// option the globally registered [observability.Engine] hooks are used.
func WithHooks(h observability.EngineHooks) Option {
	return func(e *Engine) { e.hooks = h }
}

// Engine runs graphs. It holds no state between calls.
type Engine struct {
	logger *log.Logger
	hooks  observability.EngineHooks
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{logger: log.New(io.Discard)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Process executes every node of g exactly once in topological order.
//
// On a cycle nothing executes. On the first node failure the run stops and
// the remaining nodes are skipped. The context is checked before each node
// and is passed to [node.Node.Execute], so observers attached with
// [node.WithObserver] reach the nodes.
func (e *Engine) Process(ctx context.Context, g *graph.Graph) RunResult {
	hooks := e.hooks
	if hooks == nil {
		hooks = observability.Engine()
	}

	start := time.Now()
	hooks.OnRunStart(ctx, g.NodeCount())
	res := e.run(ctx, g, hooks)
	res.Duration = time.Since(start)
	hooks.OnRunComplete(ctx, string(res.Status), len(res.Executed), res.Duration, res.Err())

	switch res.Status {
	case StatusSucceeded:
		e.logger.Debug("run complete", "nodes", len(res.Executed), "duration", res.Duration)
	case StatusCycleDetected:
		e.logger.Warn("graph contains a cycle, nothing executed", "blocked", len(res.Blocked))
	case StatusNodeFailed:
		e.logger.Error("node failed", "id", res.Failure.NodeID, "name", res.Failure.NodeName, "err", res.Failure.Cause)
	case StatusCanceled:
		e.logger.Warn("run canceled", "executed", len(res.Executed), "err", res.Cause)
	}
	return res
}

func (e *Engine) run(ctx context.Context, g *graph.Graph, hooks observability.EngineHooks) RunResult {
	ord := Order(g)
	if !ord.Ok() {
		return RunResult{Status: StatusCycleDetected, Blocked: ord.Blocked()}
	}

	res := RunResult{Order: ord.Sequence, Executed: make([]string, 0, len(ord.Sequence))}
	incoming := incomingIndex(g)
	cache := make(map[string]node.Values, len(ord.Sequence))

	for _, id := range ord.Sequence {
		if err := ctx.Err(); err != nil {
			res.Status = StatusCanceled
			res.Cause = err
			return res
		}

		n, _ := g.Node(id)
		in := gatherInputs(incoming[id], cache)

		e.logger.Debug("executing node", "id", id, "name", n.Name(), "inputs", len(in))
		hooks.OnNodeStart(ctx, id, n.Name())
		nodeStart := time.Now()
		out, err := execute(ctx, n, in)
		hooks.OnNodeComplete(ctx, id, n.Name(), time.Since(nodeStart), err)

		if err != nil {
			res.Status = StatusNodeFailed
			res.Failure = &NodeExecutionError{NodeID: id, NodeName: n.Name(), Cause: err}
			return res
		}
		if out == nil {
			out = node.Values{}
		}
		cache[id] = out
		res.Executed = append(res.Executed, id)
	}

	res.Status = StatusSucceeded
	return res
}

// incomingIndex groups edges by target node, keeping edge insertion order.
func incomingIndex(g *graph.Graph) map[string][]graph.Edge {
	idx := make(map[string][]graph.Edge)
	for _, e := range g.Edges() {
		idx[e.TargetNodeID] = append(idx[e.TargetNodeID], e)
	}
	return idx
}

// gatherInputs binds producer outputs to target ports. When two edges feed
// the same port, the later edge wins.
func gatherInputs(edges []graph.Edge, cache map[string]node.Values) node.Values {
	in := make(node.Values, len(edges))
	for _, edge := range edges {
		out, ok := cache[edge.SourceNodeID]
		if !ok {
			continue
		}
		if v, ok := out[edge.SourceOutput]; ok {
			in[edge.TargetInput] = v
		}
	}
	return in
}

func execute(ctx context.Context, n node.Node, in node.Values) (out node.Values, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("%w: %v", ErrNodePanicked, r)
		}
	}()
	return n.Execute(ctx, in)
}
