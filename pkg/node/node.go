package node

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/google/uuid"
)

var (
	// ErrParameterNotFound is matched by [ParameterNotFoundError]. It is
	// returned by [Base.SetParamValue] when the parameter was not declared
	// at construction time.
	ErrParameterNotFound = errors.New("parameter not found")
)

// ParameterNotFoundError reports an attempt to set an undeclared parameter.
type ParameterNotFoundError struct {
	Node  string // Display name of the node
	Param string // Requested parameter name
}

func (e *ParameterNotFoundError) Error() string {
	return fmt.Sprintf("node %q has no parameter named %q", e.Node, e.Param)
}

// Unwrap allows errors.Is(err, ErrParameterNotFound).
func (e *ParameterNotFoundError) Unwrap() error { return ErrParameterNotFound }

// Values maps port names to values. It is used both for the inputs handed to
// [Node.Execute] and for the outputs it returns.
type Values map[string]any

// Get returns the value bound to port and whether the port is present.
func (v Values) Get(port string) (any, bool) {
	val, ok := v[port]
	return val, ok
}

// Float returns the value bound to port as a float64. Integer values are
// widened. It reports false when the port is absent, nil or not numeric.
func (v Values) Float(port string) (float64, bool) {
	val, ok := v[port]
	if !ok || val == nil {
		return 0, false
	}
	return AsFloat(val)
}

// Params maps parameter names to their current values.
type Params map[string]any

// Node is the capability set every processing unit implements.
//
// ID, Name, Inputs and Outputs never change after construction. Only
// parameter values mutate, and only through SetParamValue.
type Node interface {
	// ID returns the process-wide unique identifier of the node.
	ID() string
	// Name returns the display name, also used as the registry key.
	Name() string
	// Inputs returns the declared input ports in declaration order.
	Inputs() []string
	// Outputs returns the declared output ports in declaration order.
	Outputs() []string
	// Params returns a copy of the current parameter values.
	Params() Params
	// SetParamValue updates a declared parameter. Undeclared names fail
	// with a *ParameterNotFoundError.
	SetParamValue(name string, value any) error
	// Execute computes the node's outputs from the supplied inputs.
	Execute(ctx context.Context, in Values) (Values, error)
}

// Describer is implemented by nodes that carry catalogue metadata.
type Describer interface {
	Category() string
	Description() string
}

// Restorable is implemented by nodes whose identity and state can be
// restored from a persisted document. [Base] implements it.
type Restorable interface {
	RestoreID(id string)
	RestoreParams(values Params) (ignored []string)
	SetPosition(pos Position)
	Position() Position
}

// Position is opaque editor metadata, kept as raw JSON. The value and its
// number tokens survive a load/save cycle, but whitespace does not: the
// document encoders compact and re-indent it with the rest of the file.
type Position json.RawMessage

// DefaultPosition is used when a node carries no position.
var DefaultPosition = Position(`[0, 0]`)

// MarshalJSON emits the stored bytes, or [DefaultPosition] when empty.
func (p Position) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return DefaultPosition, nil
	}
	return p, nil
}

// UnmarshalJSON stores a copy of data.
func (p *Position) UnmarshalJSON(data []byte) error {
	if p == nil {
		return errors.New("node: UnmarshalJSON on nil Position")
	}
	*p = append((*p)[0:0], data...)
	return nil
}

// Base implements every [Node] method except Execute. Concrete nodes embed
// it and call [NewBase] from their constructor.
//
// The zero value has no ID and is not usable.
type Base struct {
	id      string
	name    string
	inputs  []string
	outputs []string
	params  Params
	pos     Position
}

// NewBase creates a Base with a fresh random identifier. The port slices
// and the parameter map are copied.
func NewBase(name string, inputs, outputs []string, params Params) Base {
	p := make(Params, len(params))
	maps.Copy(p, params)
	return Base{
		id:      uuid.NewString(),
		name:    name,
		inputs:  slices.Clone(inputs),
		outputs: slices.Clone(outputs),
		params:  p,
	}
}

func (b *Base) ID() string        { return b.id }
func (b *Base) Name() string      { return b.name }
func (b *Base) Inputs() []string  { return slices.Clone(b.inputs) }
func (b *Base) Outputs() []string { return slices.Clone(b.outputs) }

// Params returns a shallow copy of the parameter map.
func (b *Base) Params() Params { return maps.Clone(b.params) }

// ParamValue returns the current value of a parameter.
func (b *Base) ParamValue(name string) (any, bool) {
	v, ok := b.params[name]
	return v, ok
}

// SetParamValue sets a declared parameter. It never creates new parameters.
func (b *Base) SetParamValue(name string, value any) error {
	if _, ok := b.params[name]; !ok {
		return &ParameterNotFoundError{Node: b.name, Param: name}
	}
	b.params[name] = value
	return nil
}

// RestoreID replaces the generated identifier. It exists for document
// loading and must not be called once the node belongs to a graph.
func (b *Base) RestoreID(id string) { b.id = id }

// RestoreParams copies declared parameters from values and returns the
// names that were not declared, sorted.
func (b *Base) RestoreParams(values Params) []string {
	var ignored []string
	for k, v := range values {
		if _, ok := b.params[k]; !ok {
			ignored = append(ignored, k)
			continue
		}
		b.params[k] = v
	}
	slices.Sort(ignored)
	return ignored
}

func (b *Base) SetPosition(pos Position) { b.pos = slices.Clone(pos) }
func (b *Base) Position() Position       { return b.pos }

// String returns a developer-friendly representation.
func (b *Base) String() string {
	return fmt.Sprintf("Node(name=%q, id=%q)", b.name, b.id)
}

// AsFloat converts numeric values, including json.Number, to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}
