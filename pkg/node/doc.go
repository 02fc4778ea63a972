// Package node defines the contract every processing unit in a nodeflow
// graph implements.
//
// # Overview
//
// A [Node] is a unit of work with a stable identifier, a display name, an
// ordered list of input ports, an ordered list of output ports and a set of
// named parameters. The engine calls [Node.Execute] with whatever inputs it
// could route from upstream producers and caches the returned output map
// for the rest of the run.
//
// Concrete nodes embed [Base], which implements identity, ports and
// parameter handling, and only supply Execute:
//
//	type Scale struct{ node.Base }
//
//	func NewScale() node.Node {
//	    return &Scale{Base: node.NewBase("Scale",
//	        []string{"value"}, []string{"value"},
//	        node.Params{"factor": 2.0})}
//	}
//
//	func (s *Scale) Execute(ctx context.Context, in node.Values) (node.Values, error) {
//	    v, ok := in.Float("value")
//	    if !ok {
//	        return node.Values{"value": nil}, nil
//	    }
//	    f, _ := s.ParamValue("factor")
//	    return node.Values{"value": v * f.(float64)}, nil
//	}
//
// # Inputs
//
// Ports without a connected producer are absent from the input map, never
// present with a placeholder. Nodes decide what a missing input means;
// most treat it as "no value" and forward nil.
//
// # Side Effects
//
// A node that needs to publish a value outside the graph (for example to a
// display) uses the [Observer] carried on the execution context via
// [Publish]. Publishing is additive: Execute must still return a
// well-formed output map.
//
// # Registry
//
// A [Registry] maps display names to zero-argument constructors. It is
// populated explicitly at startup and consumed when a persisted document
// is loaded back into a graph.
package node
