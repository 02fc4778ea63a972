package node

import (
	"context"
	"sync"
)

// Observer receives values that nodes publish as side effects of execution,
// for example an image handed to a display. Implementations must be safe
// for use from the goroutine running the engine.
type Observer interface {
	Publish(nodeID, port string, value any)
}

// ObserverFunc adapts a function to the [Observer] interface.
type ObserverFunc func(nodeID, port string, value any)

// Publish calls f(nodeID, port, value).
func (f ObserverFunc) Publish(nodeID, port string, value any) { f(nodeID, port, value) }

type observerKey struct{}

// WithObserver returns a context carrying obs.
func WithObserver(ctx context.Context, obs Observer) context.Context {
	return context.WithValue(ctx, observerKey{}, obs)
}

// ObserverFrom returns the observer attached to ctx, or nil.
func ObserverFrom(ctx context.Context) Observer {
	obs, _ := ctx.Value(observerKey{}).(Observer)
	return obs
}

// Publish forwards value to the observer on ctx. It does nothing when no
// observer is attached.
func Publish(ctx context.Context, nodeID, port string, value any) {
	if obs := ObserverFrom(ctx); obs != nil {
		obs.Publish(nodeID, port, value)
	}
}

// Publication is one value captured by a [Recorder].
type Publication struct {
	NodeID string `json:"node_id"`
	Port   string `json:"port"`
	Value  any    `json:"value"`
}

// Recorder is an Observer that keeps every publication in order.
type Recorder struct {
	mu   sync.Mutex
	pubs []Publication
}

// Publish implements [Observer].
func (r *Recorder) Publish(nodeID, port string, value any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pubs = append(r.pubs, Publication{NodeID: nodeID, Port: port, Value: value})
}

// Publications returns a copy of everything recorded so far.
func (r *Recorder) Publications() []Publication {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Publication, len(r.pubs))
	copy(out, r.pubs)
	return out
}
