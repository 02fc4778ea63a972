package engine

import (
	"context"
	"maps"
	"testing"

	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
)

// call records one Execute invocation.
type call struct {
	id string
	in node.Values
}

// trace collects calls across all scripted nodes of a test.
type trace struct{ calls []call }

func (tr *trace) ids() []string {
	out := make([]string, len(tr.calls))
	for i, c := range tr.calls {
		out[i] = c.id
	}
	return out
}

func (tr *trace) inputsOf(id string) (node.Values, bool) {
	for _, c := range tr.calls {
		if c.id == id {
			return c.in, true
		}
	}
	return nil, false
}

func (tr *trace) count(id string) int {
	n := 0
	for _, c := range tr.calls {
		if c.id == id {
			n++
		}
	}
	return n
}

// scripted is a node whose behaviour is supplied by the test.
type scripted struct {
	node.Base
	tr *trace
	fn func(ctx context.Context, in node.Values) (node.Values, error)
}

func (p *scripted) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	p.tr.calls = append(p.tr.calls, call{id: p.ID(), in: maps.Clone(in)})
	if p.fn == nil {
		return node.Values{}, nil
	}
	return p.fn(ctx, in)
}

// ports declares inputs and outputs of a scripted.
type ports struct{ in, out []string }

func newScripted(tr *trace, id string, p ports, fn func(context.Context, node.Values) (node.Values, error)) *scripted {
	n := &scripted{Base: node.NewBase("Scripted", p.in, p.out, nil), tr: tr, fn: fn}
	n.RestoreID(id)
	return n
}

func returns(out node.Values) func(context.Context, node.Values) (node.Values, error) {
	return func(context.Context, node.Values) (node.Values, error) { return out, nil }
}

func mustAddNode(t *testing.T, g *graph.Graph, n node.Node) {
	t.Helper()
	if err := g.AddNode(n); err != nil {
		t.Fatalf("AddNode(%s): %v", n.ID(), err)
	}
}

func mustAddEdge(t *testing.T, g *graph.Graph, src, srcPort, dst, dstPort string) {
	t.Helper()
	if _, _, err := g.AddEdge(src, srcPort, dst, dstPort); err != nil {
		t.Fatalf("AddEdge(%s:%s -> %s:%s): %v", src, srcPort, dst, dstPort, err)
	}
}

// plainGraph adds port-less scripted nodes with the given ids and no behaviour.
func plainGraph(t *testing.T, tr *trace, ids ...string) *graph.Graph {
	t.Helper()
	g := graph.New()
	for _, id := range ids {
		mustAddNode(t, g, newScripted(tr, id, ports{in: []string{"in"}, out: []string{"out"}}, nil))
	}
	return g
}
