// Package cache stores rendered artifacts keyed by content hash.
//
// Rendering a graph to SVG goes through Graphviz and is the only expensive
// operation the CLI and server repeat across invocations. Artifacts are
// keyed by the hash of the serialized document plus the render options, so
// editing a pipeline naturally invalidates its cached diagrams.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for multi-instance servers
//   - [NullCache]: caching disabled
//
// # Usage
//
//	c, err := cache.NewFileCache(dir)
//	docHash, _ := cache.DocumentHash(doc)
//	key := cache.NewDefaultKeyer().ArtifactKey(docHash, cache.ArtifactKeyOpts{Format: "svg"})
//	svg, hit, err := cache.Fetch(ctx, c, key, "svg", time.Hour, func() ([]byte, error) {
//	    return dot.RenderSVG(ctx, g, opts)
//	})
package cache

import (
	"context"
	"time"

	"github.com/matzehuels/nodeflow/pkg/observability"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the stored value and whether it was found. Expired
	// entries are reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
type Clearer interface {
	Clear(ctx context.Context) error
}

// Fetch returns the cached value for key, or calls compute and stores its
// result. The second return value reports a cache hit. Cache read and
// write failures are not fatal: compute still runs and its result is
// returned. Events are reported to [observability.Cache] under keyType.
func Fetch(ctx context.Context, c Cache, key, keyType string, ttl time.Duration, compute func() ([]byte, error)) ([]byte, bool, error) {
	hooks := observability.Cache()

	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, keyType)
		return data, true, nil
	}
	hooks.OnCacheMiss(ctx, keyType)

	data, err := compute()
	if err != nil {
		return nil, false, err
	}
	if err := c.Set(ctx, key, data, ttl); err == nil {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return data, false, nil
}
