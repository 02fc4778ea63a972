package engine

import (
	"context"
	"errors"
	"reflect"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
)

func xIn() ports    { return ports{in: []string{"x"}} }
func xOut() ports   { return ports{out: []string{"x"}} }
func xInOut() ports { return ports{in: []string{"x"}, out: []string{"x"}} }

func TestProcessChain(t *testing.T) {
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), returns(node.Values{"x": 5})))
	mustAddNode(t, g, newScripted(tr, "B", xInOut(), func(_ context.Context, in node.Values) (node.Values, error) {
		x, _ := in.Float("x")
		return node.Values{"x": x * 2}, nil
	}))
	mustAddNode(t, g, newScripted(tr, "C", xIn(), nil))
	mustAddEdge(t, g, "A", "x", "B", "x")
	mustAddEdge(t, g, "B", "x", "C", "x")

	res := New().Process(context.Background(), g)
	if res.Status != StatusSucceeded {
		t.Fatalf("Status = %v, want %v (err: %v)", res.Status, StatusSucceeded, res.Err())
	}
	if want := []string{"A", "B", "C"}; !slices.Equal(res.Order, want) {
		t.Errorf("Order = %v, want %v", res.Order, want)
	}
	if !slices.Equal(res.Executed, res.Order) {
		t.Errorf("Executed = %v, want %v", res.Executed, res.Order)
	}
	if err := res.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}

	in, _ := tr.inputsOf("B")
	if want := (node.Values{"x": 5}); !reflect.DeepEqual(in, want) {
		t.Errorf("B received %v, want %v", in, want)
	}
	in, _ = tr.inputsOf("C")
	if want := (node.Values{"x": 10.0}); !reflect.DeepEqual(in, want) {
		t.Errorf("C received %v, want %v", in, want)
	}
}

func TestProcessCycleExecutesNothing(t *testing.T) {
	tr := &trace{}
	g := plainGraph(t, tr, "A", "B", "C")
	mustAddEdge(t, g, "A", "out", "B", "in")
	mustAddEdge(t, g, "B", "out", "A", "in")

	res := New().Process(context.Background(), g)
	if res.Status != StatusCycleDetected {
		t.Fatalf("Status = %v, want %v", res.Status, StatusCycleDetected)
	}
	if len(tr.calls) != 0 {
		t.Errorf("executed %v, want nothing", tr.ids())
	}
	if res.Order != nil {
		t.Errorf("Order = %v, want nil", res.Order)
	}
	if want := []string{"A", "B"}; !slices.Equal(res.Blocked, want) {
		t.Errorf("Blocked = %v, want %v", res.Blocked, want)
	}
	if err := res.Err(); !errors.Is(err, ErrCycleDetected) {
		t.Errorf("Err() = %v, want ErrCycleDetected", err)
	}
}

func TestProcessSelfLoopIsCycle(t *testing.T) {
	tr := &trace{}
	g := plainGraph(t, tr, "A")
	mustAddEdge(t, g, "A", "out", "A", "in")

	res := New().Process(context.Background(), g)
	if res.Status != StatusCycleDetected {
		t.Fatalf("Status = %v, want %v", res.Status, StatusCycleDetected)
	}
	if len(tr.calls) != 0 {
		t.Errorf("executed %v, want nothing", tr.ids())
	}
}

func TestProcessEmptyGraph(t *testing.T) {
	res := New().Process(context.Background(), graph.New())
	if res.Status != StatusSucceeded {
		t.Fatalf("Status = %v, want %v", res.Status, StatusSucceeded)
	}
	if len(res.Order) != 0 || len(res.Executed) != 0 {
		t.Errorf("Order = %v, Executed = %v, want both empty", res.Order, res.Executed)
	}
}

func TestProcessMultipleInputs(t *testing.T) {
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "P", ports{out: []string{"out"}}, returns(node.Values{"out": 1})))
	mustAddNode(t, g, newScripted(tr, "Q", ports{out: []string{"out"}}, returns(node.Values{"out": 2})))
	mustAddNode(t, g, newScripted(tr, "D", ports{in: []string{"a", "b"}}, nil))
	mustAddEdge(t, g, "P", "out", "D", "a")
	mustAddEdge(t, g, "Q", "out", "D", "b")

	res := New().Process(context.Background(), g)
	if !res.Succeeded() {
		t.Fatalf("Process failed: %v", res.Err())
	}
	in, _ := tr.inputsOf("D")
	if want := (node.Values{"a": 1, "b": 2}); !reflect.DeepEqual(in, want) {
		t.Errorf("D received %v, want %v", in, want)
	}
}

func TestProcessInputRouting(t *testing.T) {
	tests := []struct {
		name    string
		produce node.Values
		want    node.Values
	}{
		{"unwired port is absent", node.Values{"x": 1, "y": 2}, node.Values{"a": 1}},
		{"missing producer port is absent", node.Values{"y": 2}, node.Values{}},
		{"nil producer map", nil, node.Values{}},
		{"nil value is forwarded", node.Values{"x": nil}, node.Values{"a": nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &trace{}
			g := graph.New()
			mustAddNode(t, g, newScripted(tr, "P", ports{out: []string{"x", "y"}}, returns(tt.produce)))
			mustAddNode(t, g, newScripted(tr, "D", ports{in: []string{"a", "b"}}, nil))
			mustAddEdge(t, g, "P", "x", "D", "a")

			res := New().Process(context.Background(), g)
			if !res.Succeeded() {
				t.Fatalf("Process failed: %v", res.Err())
			}
			in, ok := tr.inputsOf("D")
			if !ok {
				t.Fatal("D was not executed")
			}
			if !reflect.DeepEqual(in, tt.want) {
				t.Errorf("D received %v, want %v", in, tt.want)
			}
			if _, present := in["b"]; present {
				t.Error("unwired port b should be absent")
			}
		})
	}
}

func TestProcessFanOut(t *testing.T) {
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), returns(node.Values{"x": "v"})))
	mustAddNode(t, g, newScripted(tr, "B", xIn(), nil))
	mustAddNode(t, g, newScripted(tr, "C", xIn(), nil))
	mustAddEdge(t, g, "A", "x", "B", "x")
	mustAddEdge(t, g, "A", "x", "C", "x")

	if res := New().Process(context.Background(), g); !res.Succeeded() {
		t.Fatalf("Process failed: %v", res.Err())
	}
	for _, id := range []string{"B", "C"} {
		in, _ := tr.inputsOf(id)
		if in["x"] != "v" {
			t.Errorf("%s received %v, want x=v", id, in)
		}
	}
}

func TestProcessExecutesEachNodeOnce(t *testing.T) {
	tr := &trace{}
	g := plainGraph(t, tr, "A", "B", "C", "D")
	mustAddEdge(t, g, "A", "out", "B", "in")
	mustAddEdge(t, g, "A", "out", "C", "in")
	mustAddEdge(t, g, "B", "out", "D", "in")
	mustAddEdge(t, g, "C", "out", "D", "in")

	if res := New().Process(context.Background(), g); !res.Succeeded() {
		t.Fatalf("Process failed: %v", res.Err())
	}
	for _, id := range g.NodeIDs() {
		if n := tr.count(id); n != 1 {
			t.Errorf("%s executed %d times, want 1", id, n)
		}
	}
}

func TestProcessIndependentNodesRunInInsertionOrder(t *testing.T) {
	tr := &trace{}
	g := plainGraph(t, tr, "third", "first", "second")

	res := New().Process(context.Background(), g)
	if !res.Succeeded() {
		t.Fatalf("Process failed: %v", res.Err())
	}
	if want := []string{"third", "first", "second"}; !slices.Equal(tr.ids(), want) {
		t.Errorf("execution order = %v, want %v", tr.ids(), want)
	}
}

func TestProcessNodeFailureHalts(t *testing.T) {
	cause := errors.New("bad input")
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), returns(node.Values{"x": 1})))
	mustAddNode(t, g, newScripted(tr, "B", xInOut(), func(context.Context, node.Values) (node.Values, error) {
		return nil, cause
	}))
	mustAddNode(t, g, newScripted(tr, "C", xIn(), nil))
	mustAddEdge(t, g, "A", "x", "B", "x")
	mustAddEdge(t, g, "B", "x", "C", "x")

	res := New().Process(context.Background(), g)
	if res.Status != StatusNodeFailed {
		t.Fatalf("Status = %v, want %v", res.Status, StatusNodeFailed)
	}
	if tr.count("C") != 0 {
		t.Error("C executed after B failed")
	}
	if want := []string{"A"}; !slices.Equal(res.Executed, want) {
		t.Errorf("Executed = %v, want %v", res.Executed, want)
	}

	err := res.Err()
	var nodeErr *NodeExecutionError
	if !errors.As(err, &nodeErr) {
		t.Fatalf("Err() = %v, want *NodeExecutionError", err)
	}
	if nodeErr.NodeID != "B" || nodeErr.NodeName != "Scripted" {
		t.Errorf("failure = %s (%s), want B (Scripted)", nodeErr.NodeID, nodeErr.NodeName)
	}
	if !errors.Is(err, cause) {
		t.Errorf("Err() = %v, want to wrap %v", err, cause)
	}
}

func TestProcessRecoversPanics(t *testing.T) {
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), func(context.Context, node.Values) (node.Values, error) {
		panic("index out of range")
	}))
	mustAddNode(t, g, newScripted(tr, "B", xIn(), nil))
	mustAddEdge(t, g, "A", "x", "B", "x")

	res := New().Process(context.Background(), g)
	if res.Status != StatusNodeFailed {
		t.Fatalf("Status = %v, want %v", res.Status, StatusNodeFailed)
	}
	if !errors.Is(res.Err(), ErrNodePanicked) {
		t.Errorf("Err() = %v, want ErrNodePanicked", res.Err())
	}
	if res.Failure.NodeID != "A" {
		t.Errorf("Failure.NodeID = %s, want A", res.Failure.NodeID)
	}
	if tr.count("B") != 0 {
		t.Error("B executed after A panicked")
	}
}

func TestProcessCanceledContext(t *testing.T) {
	tr := &trace{}
	g := plainGraph(t, tr, "A", "B")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := New().Process(ctx, g)
	if res.Status != StatusCanceled {
		t.Fatalf("Status = %v, want %v", res.Status, StatusCanceled)
	}
	if len(tr.calls) != 0 {
		t.Errorf("executed %v, want nothing", tr.ids())
	}
	if !errors.Is(res.Err(), context.Canceled) {
		t.Errorf("Err() = %v, want context.Canceled", res.Err())
	}
}

func TestProcessCanceledBetweenNodes(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), func(context.Context, node.Values) (node.Values, error) {
		cancel()
		return node.Values{"x": 1}, nil
	}))
	mustAddNode(t, g, newScripted(tr, "B", xIn(), nil))
	mustAddEdge(t, g, "A", "x", "B", "x")

	res := New().Process(ctx, g)
	if res.Status != StatusCanceled {
		t.Fatalf("Status = %v, want %v", res.Status, StatusCanceled)
	}
	if want := []string{"A"}; !slices.Equal(res.Executed, want) {
		t.Errorf("Executed = %v, want %v", res.Executed, want)
	}
}

func TestProcessPassesObserverThroughContext(t *testing.T) {
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), returns(node.Values{"x": 3})))
	mustAddNode(t, g, newScripted(tr, "show", xIn(), func(ctx context.Context, in node.Values) (node.Values, error) {
		v, _ := in.Get("x")
		node.Publish(ctx, "show", "x", v)
		return node.Values{}, nil
	}))
	mustAddEdge(t, g, "A", "x", "show", "x")

	rec := &node.Recorder{}
	res := New().Process(node.WithObserver(context.Background(), rec), g)
	if !res.Succeeded() {
		t.Fatalf("Process failed: %v", res.Err())
	}
	want := []node.Publication{{NodeID: "show", Port: "x", Value: 3}}
	if got := rec.Publications(); !reflect.DeepEqual(got, want) {
		t.Errorf("Publications() = %v, want %v", got, want)
	}
}

func TestProcessIsStateless(t *testing.T) {
	counter := 0
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), func(context.Context, node.Values) (node.Values, error) {
		counter++
		return node.Values{"x": counter}, nil
	}))
	mustAddNode(t, g, newScripted(tr, "B", xIn(), nil))
	mustAddEdge(t, g, "A", "x", "B", "x")

	eng := New()
	for run := 1; run <= 2; run++ {
		tr.calls = nil
		if res := eng.Process(context.Background(), g); !res.Succeeded() {
			t.Fatalf("run %d failed: %v", run, res.Err())
		}
		in, _ := tr.inputsOf("B")
		if in["x"] != run {
			t.Errorf("run %d: B received %v, want x=%d", run, in, run)
		}
	}
}

// recordingHooks captures engine events.
type recordingHooks struct {
	mu         sync.Mutex
	runStarts  []int
	nodeStarts []string
	nodeErrs   map[string]error
	status     string
	executed   int
	runErr     error
}

func (h *recordingHooks) OnRunStart(_ context.Context, nodeCount int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runStarts = append(h.runStarts, nodeCount)
}

func (h *recordingHooks) OnNodeStart(_ context.Context, id, _ string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nodeStarts = append(h.nodeStarts, id)
}

func (h *recordingHooks) OnNodeComplete(_ context.Context, id, _ string, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.nodeErrs == nil {
		h.nodeErrs = make(map[string]error)
	}
	h.nodeErrs[id] = err
}

func (h *recordingHooks) OnRunComplete(_ context.Context, status string, executed int, _ time.Duration, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.status, h.executed, h.runErr = status, executed, err
}

func TestProcessHooks(t *testing.T) {
	cause := errors.New("boom")
	tr := &trace{}
	g := graph.New()
	mustAddNode(t, g, newScripted(tr, "A", xOut(), returns(node.Values{"x": 1})))
	mustAddNode(t, g, newScripted(tr, "B", xIn(), func(context.Context, node.Values) (node.Values, error) {
		return nil, cause
	}))
	mustAddEdge(t, g, "A", "x", "B", "x")

	hooks := &recordingHooks{}
	New(WithHooks(hooks)).Process(context.Background(), g)

	if want := []int{2}; !slices.Equal(hooks.runStarts, want) {
		t.Errorf("OnRunStart counts = %v, want %v", hooks.runStarts, want)
	}
	if want := []string{"A", "B"}; !slices.Equal(hooks.nodeStarts, want) {
		t.Errorf("OnNodeStart ids = %v, want %v", hooks.nodeStarts, want)
	}
	if hooks.nodeErrs["A"] != nil || !errors.Is(hooks.nodeErrs["B"], cause) {
		t.Errorf("OnNodeComplete errors = %v", hooks.nodeErrs)
	}
	if hooks.status != string(StatusNodeFailed) || hooks.executed != 1 {
		t.Errorf("OnRunComplete = (%s, %d), want (%s, 1)", hooks.status, hooks.executed, StatusNodeFailed)
	}
	if !errors.Is(hooks.runErr, cause) {
		t.Errorf("OnRunComplete err = %v, want %v", hooks.runErr, cause)
	}
}

func TestRunResultErrUnknownStatus(t *testing.T) {
	if err := (RunResult{Status: "weird"}).Err(); err == nil {
		t.Error("Err() = nil for unknown status")
	}
}
