package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrNilNode is returned by [Graph.AddNode] for a nil node.
	ErrNilNode = errors.New("node must not be nil")

	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is
	// empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNode is matched by [DuplicateNodeError].
	ErrDuplicateNode = errors.New("duplicate node ID")

	// ErrMissingNode is matched by [MissingNodeError].
	ErrMissingNode = errors.New("node not found in graph")

	// ErrInvalidEdgeID is returned by [ParseEdgeID] for malformed IDs.
	ErrInvalidEdgeID = errors.New("invalid edge ID")

	// ErrMalformedDocument wraps decoding failures in [ReadDocument] and
	// [UnmarshalDocument].
	ErrMalformedDocument = errors.New("malformed document")

	// ErrNilRegistry is returned by [Graph.Deserialize] without a registry.
	ErrNilRegistry = errors.New("deserialize requires a registry")
)

// DuplicateNodeError is returned by [Graph.AddNode] when a node with the
// same ID is already present.
type DuplicateNodeError struct {
	ID string
}

func (e *DuplicateNodeError) Error() string {
	return fmt.Sprintf("node with ID %s already exists", e.ID)
}

func (e *DuplicateNodeError) Unwrap() error { return ErrDuplicateNode }

// Endpoint names which end of an edge referenced a missing node.
type Endpoint string

const (
	EndpointSource Endpoint = "source"
	EndpointTarget Endpoint = "target"
)

// MissingNodeError is returned by [Graph.AddEdge] when an endpoint is not
// in the graph.
type MissingNodeError struct {
	ID       string
	Endpoint Endpoint
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("cannot create edge: %s node %s not found in graph", e.Endpoint, e.ID)
}

func (e *MissingNodeError) Unwrap() error { return ErrMissingNode }
