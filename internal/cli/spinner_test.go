package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a buffer shared with the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerDrawsAndClears(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "Converting to PNG...")
	time.Sleep(4 * spinnerInterval)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Converting to PNG...") {
		t.Errorf("spinner never drew its label: %q", got)
	}
	if !strings.HasSuffix(got, "\r") || !strings.Contains(got, "\r"+strings.Repeat(" ", s.width)+"\r") {
		t.Errorf("spinner did not clear its line: %q", got)
	}
}

func TestSpinnerStopTwice(t *testing.T) {
	s := startSpinner(context.Background(), &syncBuffer{}, "x")
	s.Stop()
	s.Stop()
}

func TestSpinnerStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := startSpinner(ctx, &syncBuffer{}, "x")
	cancel()

	select {
	case <-s.done:
	case <-time.After(time.Second):
		t.Fatal("spinner did not stop on cancel")
	}
	s.Stop()
}

func TestSpinnerStopBeforeFirstFrame(t *testing.T) {
	var out syncBuffer
	s := startSpinner(context.Background(), &out, "x")
	s.Stop()
	if got := out.String(); strings.Contains(got, "x") {
		t.Errorf("output = %q, want nothing before the first frame", got)
	}
}
