package errors

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/matzehuels/nodeflow/pkg/engine"
	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
)

func TestFromRun(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name     string
		res      engine.RunResult
		wantCode Code
		wantExit int
		wantIs   error
	}{
		{
			name:     "succeeded",
			res:      engine.RunResult{Status: engine.StatusSucceeded},
			wantExit: ExitOK,
		},
		{
			name:     "cycle",
			res:      engine.RunResult{Status: engine.StatusCycleDetected, Blocked: []string{"a", "b"}},
			wantCode: ErrCodeCycleDetected,
			wantExit: ExitCycle,
			wantIs:   engine.ErrCycleDetected,
		},
		{
			name: "node failed",
			res: engine.RunResult{
				Status:  engine.StatusNodeFailed,
				Failure: &engine.NodeExecutionError{NodeID: "n1", NodeName: "Fail", Cause: boom},
			},
			wantCode: ErrCodeNodeFailed,
			wantExit: ExitNodeFailed,
			wantIs:   boom,
		},
		{
			name:     "canceled",
			res:      engine.RunResult{Status: engine.StatusCanceled, Cause: context.Canceled},
			wantCode: ErrCodeCanceled,
			wantExit: ExitCanceled,
			wantIs:   context.Canceled,
		},
		{
			name:     "unknown status",
			res:      engine.RunResult{Status: "bogus"},
			wantCode: ErrCodeInternal,
			wantExit: ExitFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromRun(tt.res)
			if got := GetCode(err); got != tt.wantCode {
				t.Errorf("GetCode() = %q, want %q", got, tt.wantCode)
			}
			if got := ExitCode(err); got != tt.wantExit {
				t.Errorf("ExitCode() = %d, want %d", got, tt.wantExit)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.wantIs)
			}
		})
	}
}

func TestFromRunMessages(t *testing.T) {
	err := FromRun(engine.RunResult{Status: engine.StatusCycleDetected, Blocked: []string{"a", "b"}})
	want := "graph contains a cycle and cannot be executed; blocked nodes: a, b"
	if got := UserMessage(err); got != want {
		t.Errorf("UserMessage() = %q, want %q", got, want)
	}

	err = FromRun(engine.RunResult{
		Status:  engine.StatusNodeFailed,
		Failure: &engine.NodeExecutionError{NodeID: "n1", NodeName: "Fail", Cause: errors.New("boom")},
	})
	if got, want := err.Error(), "NODE_FAILED: node n1 (Fail) failed: boom"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestFromLoad(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, ""},
		{"missing file", fmt.Errorf("open x.json: %w", fs.ErrNotExist), ErrCodeFileNotFound},
		{"malformed", fmt.Errorf("%w: unexpected EOF", graph.ErrMalformedDocument), ErrCodeInvalidDocument},
		{"duplicate node", &graph.DuplicateNodeError{ID: "a"}, ErrCodeInvalidDocument},
		{"empty id", graph.ErrInvalidNodeID, ErrCodeInvalidDocument},
		{"bad parameter", &node.ParameterNotFoundError{Node: "Blur", Param: "k"}, ErrCodeInvalidInput},
		{"already coded", New(ErrCodeInvalidPath, "bad"), ErrCodeInvalidPath},
		{"other", errors.New("disk on fire"), ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromLoad(tt.err)
			if got := GetCode(err); got != tt.want {
				t.Errorf("GetCode(FromLoad(%v)) = %q, want %q", tt.err, got, tt.want)
			}
			if tt.err != nil && !errors.Is(err, tt.err) {
				t.Errorf("FromLoad(%v) lost the original error", tt.err)
			}
		})
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("x"), ExitFailure},
		{"coded", New(ErrCodeInvalidInput, "x"), ExitFailure},
		{"context canceled", fmt.Errorf("wrapped: %w", context.Canceled), ExitCanceled},
		{"cycle", New(ErrCodeCycleDetected, "x"), ExitCycle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}
