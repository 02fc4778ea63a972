package errors

import (
	"context"
	"errors"
	"os"
	"strings"

	"github.com/matzehuels/nodeflow/pkg/engine"
	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
)

// Process exit codes returned by [ExitCode].
const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitCycle      = 2
	ExitNodeFailed = 3
	ExitCanceled   = 130 // Standard shell convention for SIGINT
)

// FromRun converts a run outcome to a coded error. It returns nil when the
// run succeeded.
func FromRun(res engine.RunResult) error {
	switch res.Status {
	case engine.StatusSucceeded:
		return nil
	case engine.StatusCycleDetected:
		msg := "graph contains a cycle and cannot be executed"
		if len(res.Blocked) > 0 {
			msg += "; blocked nodes: " + strings.Join(res.Blocked, ", ")
		}
		return &Error{Code: ErrCodeCycleDetected, Message: msg, Cause: engine.ErrCycleDetected}
	case engine.StatusNodeFailed:
		f := res.Failure
		return Wrap(ErrCodeNodeFailed, f.Cause, "node %s (%s) failed", f.NodeID, f.NodeName)
	case engine.StatusCanceled:
		return Wrap(ErrCodeCanceled, res.Cause, "run canceled after %d of %d nodes", len(res.Executed), len(res.Order))
	default:
		return New(ErrCodeInternal, "unknown run status %q", res.Status)
	}
}

// FromLoad classifies an error returned while reading or deserializing a
// document. Coded errors pass through unchanged.
func FromLoad(err error) error {
	if err == nil {
		return nil
	}
	var coded *Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, os.ErrNotExist):
		return Wrap(ErrCodeFileNotFound, err, "document not found")
	case errors.Is(err, graph.ErrMalformedDocument),
		errors.Is(err, graph.ErrDuplicateNode),
		errors.Is(err, graph.ErrInvalidNodeID),
		errors.Is(err, graph.ErrNilNode):
		return Wrap(ErrCodeInvalidDocument, err, "invalid document")
	case errors.Is(err, node.ErrParameterNotFound):
		return Wrap(ErrCodeInvalidInput, err, "invalid parameter")
	default:
		return Wrap(ErrCodeInternal, err, "load document")
	}
}

// ExitCode maps an error to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	if errors.Is(err, context.Canceled) {
		return ExitCanceled
	}
	switch GetCode(err) {
	case ErrCodeCycleDetected:
		return ExitCycle
	case ErrCodeNodeFailed:
		return ExitNodeFailed
	case ErrCodeCanceled:
		return ExitCanceled
	default:
		return ExitFailure
	}
}
