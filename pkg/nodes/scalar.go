package nodes

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/nodeflow/pkg/node"
)

// Constant emits a fixed value.
type Constant struct {
	node.Base
	meta
}

// NewConstant creates a Constant with value 0.
func NewConstant() node.Node {
	return &Constant{
		Base: node.NewBase(NameConstant, nil, []string{"value"}, node.Params{"value": 0.0}),
		meta: meta{CategoryMath, "Emits the value of its parameter."},
	}
}

func (c *Constant) Execute(context.Context, node.Values) (node.Values, error) {
	v, _ := c.ParamValue("value")
	return node.Values{"value": v}, nil
}

// Add sums its two inputs. A missing input counts as zero; when both are
// missing the sum is nil.
type Add struct {
	node.Base
	meta
}

// NewAdd creates an Add node.
func NewAdd() node.Node {
	return &Add{
		Base: node.NewBase(NameAdd, []string{"a", "b"}, []string{"sum"}, nil),
		meta: meta{CategoryMath, "Adds two numbers."},
	}
}

func (a *Add) Execute(_ context.Context, in node.Values) (node.Values, error) {
	var sum float64
	seen := false
	for _, port := range []string{"a", "b"} {
		v, ok := in.Get(port)
		if !ok || v == nil {
			continue
		}
		f, ok := node.AsFloat(v)
		if !ok {
			return nil, fmt.Errorf("input %q: expected a number, got %T", port, v)
		}
		sum += f
		seen = true
	}
	if !seen {
		return node.Values{"sum": nil}, nil
	}
	return node.Values{"sum": sum}, nil
}

// Scale multiplies its input by a factor.
type Scale struct {
	node.Base
	meta
}

// NewScale creates a Scale node with factor 2.
func NewScale() node.Node {
	return &Scale{
		Base: node.NewBase(NameScale, []string{"value"}, []string{"value"}, node.Params{"factor": 2.0}),
		meta: meta{CategoryMath, "Multiplies a number by a factor."},
	}
}

func (s *Scale) Execute(_ context.Context, in node.Values) (node.Values, error) {
	v, ok := in.Get("value")
	if !ok || v == nil {
		return node.Values{"value": nil}, nil
	}
	f, ok := node.AsFloat(v)
	if !ok {
		return nil, fmt.Errorf("input %q: expected a number, got %T", "value", v)
	}
	factor, err := paramFloat(&s.Base, "factor")
	if err != nil {
		return nil, err
	}
	return node.Values{"value": f * factor}, nil
}

// Fail always returns an error. It is useful for exercising failure
// handling in pipelines.
type Fail struct {
	node.Base
	meta
}

// NewFail creates a Fail node.
func NewFail() node.Node {
	return &Fail{
		Base: node.NewBase(NameFail, []string{"value"}, []string{"value"}, node.Params{"message": "forced failure"}),
		meta: meta{CategoryDebug, "Fails with a configurable message."},
	}
}

func (f *Fail) Execute(context.Context, node.Values) (node.Values, error) {
	msg, err := paramString(&f.Base, "message")
	if err != nil {
		return nil, err
	}
	return nil, errors.New(msg)
}

// Display publishes its input to the observer on the context. The value is
// published even when nil, which clears a display.
type Display struct {
	node.Base
	meta
}

// NewDisplay creates a Display node.
func NewDisplay() node.Node {
	return &Display{
		Base: node.NewBase(NameDisplay, []string{"value"}, nil, nil),
		meta: meta{CategoryDisplay, "Displays a value in the embedding application."},
	}
}

func (d *Display) Execute(ctx context.Context, in node.Values) (node.Values, error) {
	v, _ := in.Get("value")
	node.Publish(ctx, d.ID(), "value", v)
	return node.Values{}, nil
}
