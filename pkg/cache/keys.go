package cache

import "encoding/json"

// Keyer generates cache keys.
type Keyer interface {
	// ArtifactKey returns the key of a rendered artifact for the document
	// with the given hash.
	ArtifactKey(docHash string, opts ArtifactKeyOpts) string
}

// ArtifactKeyOpts holds the render options that affect an artifact.
type ArtifactKeyOpts struct {
	Format   string `json:"format"`
	RankDir  string `json:"rankdir,omitempty"`
	Ports    bool   `json:"ports,omitempty"`
	Detailed bool   `json:"detailed,omitempty"`
}

// DefaultKeyer keys artifacts as "artifact:<format>:<sha256>", hashing the
// document hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	data, _ := json.Marshal(opts)
	return "artifact:" + opts.Format + ":" + Hash(append([]byte(docHash+"\n"), data...))
}

// ScopedKeyer wraps a Keyer with a prefix, separating namespaces that
// share one backend (for example several servers on the same Redis).
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// ArtifactKey generates a prefixed key for artifact caching.
func (k *ScopedKeyer) ArtifactKey(docHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(docHash, opts)
}
