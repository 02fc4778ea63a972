package cache

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/nodeflow/pkg/graph"
	"github.com/matzehuels/nodeflow/pkg/node"
)

var errPermanent = errors.New("permanent")

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	// Set does nothing (no error)
	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}

	// Still a miss after Set
	_, hit, _ = c.Get(ctx, "key")
	if hit {
		t.Error("NullCache should not store data")
	}

	// Delete does nothing (no error)
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestHash(t *testing.T) {
	// Test determinism
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}

	// Test different inputs produce different hashes
	h3 := Hash([]byte("world"))
	if h1 == h3 {
		t.Error("Different inputs should produce different hashes")
	}

	// Test hash length (SHA-256 produces 64 hex chars)
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	ak1 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"})
	ak2 := k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "dot"})
	ak3 := k.ArtifactKey("hash456", ArtifactKeyOpts{Format: "svg"})
	if ak1 == ak2 {
		t.Error("Different ArtifactKeyOpts should produce different keys")
	}
	if ak1 == ak3 {
		t.Error("Different document hashes should produce different keys")
	}
	if ak1 != k.ArtifactKey("hash123", ArtifactKeyOpts{Format: "svg"}) {
		t.Error("ArtifactKey should be deterministic")
	}
	if !strings.HasPrefix(ak1, "artifact:svg:") {
		t.Errorf("ArtifactKey should be prefixed: %s", ak1)
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "staging:")

	opts := ArtifactKeyOpts{Format: "svg", RankDir: "LR"}
	if got, want := scoped.ArtifactKey("h", opts), "staging:"+inner.ArtifactKey("h", opts); got != want {
		t.Errorf("ScopedKeyer ArtifactKey = %s, want %s", got, want)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	// Should use DefaultKeyer when inner is nil
	scoped := NewScopedKeyer(nil, "prefix:")
	key := scoped.ArtifactKey("h", ArtifactKeyOpts{})
	if want := "prefix:" + NewDefaultKeyer().ArtifactKey("h", ArtifactKeyOpts{}); key != want {
		t.Errorf("Unexpected key with nil inner: %s", key)
	}
}

func TestDocumentHash(t *testing.T) {
	doc := graph.Document{
		Nodes: []graph.NodeRecord{
			{ID: "c", Name: "Constant", Parameters: map[string]any{"value": 1.0}, Pos: node.Position(`[1, 2]`)},
			{ID: "d", Name: "Display", Parameters: map[string]any{}},
		},
		Edges: []graph.EdgeRecord{{SourceNodeID: "c", SourceOutputName: "value", TargetNodeID: "d", TargetInputName: "value"}},
	}
	base, err := DocumentHash(doc)
	if err != nil {
		t.Fatal(err)
	}

	moved := doc
	moved.Nodes = slices.Clone(doc.Nodes)
	moved.Nodes[0].Pos = node.Position(`[300, -40]`)
	if got, _ := DocumentHash(moved); got != base {
		t.Error("moving a node changed the document hash")
	}
	if string(doc.Nodes[0].Pos) != `[1, 2]` {
		t.Errorf("DocumentHash modified its input: pos = %s", doc.Nodes[0].Pos)
	}

	changed := doc
	changed.Nodes = slices.Clone(doc.Nodes)
	changed.Nodes[0].Parameters = map[string]any{"value": 2.0}
	if got, _ := DocumentHash(changed); got == base {
		t.Error("changing a parameter kept the document hash")
	}
}

func TestBackoffDo(t *testing.T) {
	fast := Backoff{Attempts: 3, Delay: time.Millisecond}
	tests := []struct {
		name      string
		failures  int
		retry     func(error) bool
		wantCalls int
		wantErr   error
	}{
		{"first try", 0, nil, 1, nil},
		{"recovers", 2, nil, 3, nil},
		{"gives up", 5, nil, 3, ErrUnavailable},
		{"permanent", 5, func(err error) bool { return !errors.Is(err, errPermanent) }, 1, errPermanent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := fast.Do(context.Background(), func() error {
				calls++
				if calls > tt.failures {
					return nil
				}
				if tt.retry != nil {
					return errPermanent
				}
				return ErrUnavailable
			}, tt.retry)
			if !errors.Is(err, tt.wantErr) || (tt.wantErr == nil && err != nil) {
				t.Errorf("Do() = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffDoZeroAttempts(t *testing.T) {
	calls := 0
	_ = Backoff{}.Do(context.Background(), func() error { calls++; return ErrUnavailable }, nil)
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestBackoffDoContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Backoff{Attempts: 3, Delay: time.Hour}.Do(ctx, func() error { return ErrUnavailable }, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

// replyError stands in for an error reply from the Redis server.
type replyError string

func (e replyError) Error() string { return string(e) }
func (replyError) RedisError()     {}

func TestConnectionError(t *testing.T) {
	if !connectionError(errors.New("dial tcp: connection refused")) {
		t.Error("network error not treated as a connection error")
	}
	if connectionError(fmt.Errorf("%w: %w", ErrUnavailable, replyError("WRONGPASS invalid password"))) {
		t.Error("server reply treated as a connection error")
	}
}
