package graph

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/nodeflow/pkg/node"
)

// Edge connects an output port of one node to an input port of another.
// Edges are values: two edges with the same endpoints are the same edge.
type Edge struct {
	SourceNodeID string
	SourceOutput string
	TargetNodeID string
	TargetInput  string
}

// ID returns the identity derived from the edge's endpoints, in the form
// "src:out->dst:in".
func (e Edge) ID() string {
	return EdgeID(e.SourceNodeID, e.SourceOutput, e.TargetNodeID, e.TargetInput)
}

// String implements fmt.Stringer.
func (e Edge) String() string { return e.ID() }

// EdgeID formats the identity of the edge src.srcPort → dst.dstPort.
//
// The identity is only unambiguous when node IDs contain no "->" and port
// names contain neither ":" nor "->". Documents are checked for this by
// errors.ValidateDocument; graphs built in code must keep to it or risk two
// edges sharing an ID.
func EdgeID(src, srcPort, dst, dstPort string) string {
	return src + ":" + srcPort + "->" + dst + ":" + dstPort
}

// ParseEdgeID is the inverse of [EdgeID]. Port names are taken to be the
// text after the last colon on each side of the arrow.
func ParseEdgeID(id string) (Edge, error) {
	left, right, ok := strings.Cut(id, "->")
	if !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrInvalidEdgeID, id)
	}
	src, srcPort, ok1 := cutLast(left, ":")
	dst, dstPort, ok2 := cutLast(right, ":")
	if !ok1 || !ok2 || src == "" || dst == "" {
		return Edge{}, fmt.Errorf("%w: %q", ErrInvalidEdgeID, id)
	}
	return Edge{SourceNodeID: src, SourceOutput: srcPort, TargetNodeID: dst, TargetInput: dstPort}, nil
}

func cutLast(s, sep string) (before, after string, found bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}

// Option configures a [Graph].
type Option func(*Graph)

// WithLogger sets the logger used for warnings such as duplicate edges or
// skipped document entries.
func WithLogger(l *log.Logger) Option {
	return func(g *Graph) {
		if l != nil {
			g.logger = l
		}
	}
}

// Graph is the set of nodes and edges of a pipeline.
//
// The zero value is not usable; create graphs with [New].
type Graph struct {
	nodes     map[string]node.Node
	nodeOrder []string
	edges     map[string]Edge
	edgeOrder []string
	logger    *log.Logger
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		nodes:  make(map[string]node.Node),
		edges:  make(map[string]Edge),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Logger returns the graph's logger. It is never nil.
func (g *Graph) Logger() *log.Logger { return g.logger }

// AddNode adds n to the graph. It returns a *DuplicateNodeError if a node
// with the same ID is already present, in which case the graph is unchanged.
func (g *Graph) AddNode(n node.Node) error {
	if n == nil {
		return ErrNilNode
	}
	id := n.ID()
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[id]; exists {
		return &DuplicateNodeError{ID: id}
	}
	g.nodes[id] = n
	g.nodeOrder = append(g.nodeOrder, id)
	return nil
}

// AddEdge connects the output port srcPort of node src to the input port
// dstPort of node dst.
//
// It returns a *MissingNodeError if either node is absent; the graph is
// then unchanged. Adding an edge that already exists is not an error: the
// existing edge is returned with added == false and a warning is logged.
func (g *Graph) AddEdge(src, srcPort, dst, dstPort string) (e Edge, added bool, err error) {
	if _, ok := g.nodes[src]; !ok {
		return Edge{}, false, &MissingNodeError{ID: src, Endpoint: EndpointSource}
	}
	if _, ok := g.nodes[dst]; !ok {
		return Edge{}, false, &MissingNodeError{ID: dst, Endpoint: EndpointTarget}
	}

	e = Edge{SourceNodeID: src, SourceOutput: srcPort, TargetNodeID: dst, TargetInput: dstPort}
	id := e.ID()
	if _, exists := g.edges[id]; exists {
		g.logger.Warn("edge already exists", "edge", id)
		return e, false, nil
	}
	g.edges[id] = e
	g.edgeOrder = append(g.edgeOrder, id)
	return e, true, nil
}

// RemoveNode removes the node and every edge that has it as source or
// target. It returns the removed edges. Removing an absent node is a no-op.
func (g *Graph) RemoveNode(id string) []Edge {
	if _, ok := g.nodes[id]; !ok {
		return nil
	}

	var removed []Edge
	for _, eid := range g.edgeOrder {
		e := g.edges[eid]
		if e.SourceNodeID == id || e.TargetNodeID == id {
			removed = append(removed, e)
		}
	}

	delete(g.nodes, id)
	g.nodeOrder = slices.DeleteFunc(g.nodeOrder, func(s string) bool { return s == id })
	for _, e := range removed {
		delete(g.edges, e.ID())
	}
	if len(removed) > 0 {
		g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(s string) bool {
			_, ok := g.edges[s]
			return !ok
		})
	}
	return removed
}

// RemoveEdge removes the edge with the given ID and reports whether it was
// present.
func (g *Graph) RemoveEdge(edgeID string) bool {
	if _, ok := g.edges[edgeID]; !ok {
		return false
	}
	delete(g.edges, edgeID)
	g.edgeOrder = slices.DeleteFunc(g.edgeOrder, func(s string) bool { return s == edgeID })
	return true
}

// Clear removes every node and edge.
func (g *Graph) Clear() {
	clear(g.nodes)
	clear(g.edges)
	g.nodeOrder = nil
	g.edgeOrder = nil
}

// Node returns the node with the given ID and true, or nil and false.
func (g *Graph) Node(id string) (node.Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID is present.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []node.Node {
	out := make([]node.Node, len(g.nodeOrder))
	for i, id := range g.nodeOrder {
		out[i] = g.nodes[id]
	}
	return out
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.nodeOrder) }

// Edge returns the edge with the given ID.
func (g *Graph) Edge(id string) (Edge, bool) {
	e, ok := g.edges[id]
	return e, ok
}

// HasEdge reports whether an edge with the given ID is present.
func (g *Graph) HasEdge(id string) bool {
	_, ok := g.edges[id]
	return ok
}

// Edges returns a copy of all edges in insertion order. The order carries
// no meaning beyond making iteration deterministic.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edgeOrder))
	for i, id := range g.edgeOrder {
		out[i] = g.edges[id]
	}
	return out
}

// IncomingEdges returns the edges whose target is the given node.
func (g *Graph) IncomingEdges(id string) []Edge {
	var out []Edge
	for _, eid := range g.edgeOrder {
		if e := g.edges[eid]; e.TargetNodeID == id {
			out = append(out, e)
		}
	}
	return out
}

// OutgoingEdges returns the edges whose source is the given node.
func (g *Graph) OutgoingEdges(id string) []Edge {
	var out []Edge
	for _, eid := range g.edgeOrder {
		if e := g.edges[eid]; e.SourceNodeID == id {
			out = append(out, e)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// String summarizes the graph.
func (g *Graph) String() string {
	return fmt.Sprintf("Graph with %d nodes and %d edges.", len(g.nodes), len(g.edges))
}

// PortIssue describes an edge that refers to a port its node does not
// declare. Such edges are legal but never carry a value.
type PortIssue struct {
	Edge     Edge
	Endpoint Endpoint
	Port     string
}

func (p PortIssue) String() string {
	return fmt.Sprintf("edge %s: %s port %q is not declared", p.Edge.ID(), p.Endpoint, p.Port)
}

// UndeclaredPorts lists edges whose endpoint ports are not declared by the
// connected nodes.
func (g *Graph) UndeclaredPorts() []PortIssue {
	var issues []PortIssue
	for _, e := range g.Edges() {
		if src := g.nodes[e.SourceNodeID]; !slices.Contains(src.Outputs(), e.SourceOutput) {
			issues = append(issues, PortIssue{Edge: e, Endpoint: EndpointSource, Port: e.SourceOutput})
		}
		if dst := g.nodes[e.TargetNodeID]; !slices.Contains(dst.Inputs(), e.TargetInput) {
			issues = append(issues, PortIssue{Edge: e, Endpoint: EndpointTarget, Port: e.TargetInput})
		}
	}
	return issues
}
