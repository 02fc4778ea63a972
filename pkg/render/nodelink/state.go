package nodelink

import "github.com/matzehuels/nodeflow/pkg/engine"

// State is the run state of a node in a diagram.
type State int

const (
	StateExecuted State = iota + 1
	StateFailed
	StateSkipped
	StateBlocked
)

var stateNames = map[State]string{
	StateExecuted: "executed",
	StateFailed:   "failed",
	StateSkipped:  "skipped",
	StateBlocked:  "blocked",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Color returns the fill color used for s.
func (s State) Color() string {
	switch s {
	case StateExecuted:
		return "#d4edda"
	case StateFailed:
		return "#f8d7da"
	case StateBlocked:
		return "#fff3cd"
	case StateSkipped:
		return "#e2e3e5"
	default:
		return "white"
	}
}

// StatesFromRun maps every node touched by res to its state. Nodes that
// were ordered but never reached are skipped.
func StatesFromRun(res engine.RunResult) map[string]State {
	states := make(map[string]State, len(res.Order)+len(res.Blocked))
	for _, id := range res.Order {
		states[id] = StateSkipped
	}
	for _, id := range res.Executed {
		states[id] = StateExecuted
	}
	if res.Failure != nil {
		states[res.Failure.NodeID] = StateFailed
	}
	for _, id := range res.Blocked {
		states[id] = StateBlocked
	}
	return states
}
