package pipeline

import (
	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/logging"
	"github.com/buildcache/buildcache/pkg/remote"
	"github.com/buildcache/buildcache/pkg/store"
)

// evictionProbabilityDenominator is N in the "1/N chance" probabilistic
// eviction trigger fired after each successful publish.
const evictionProbabilityDenominator = 64

// Options configures a Pipeline. The pipeline holds owning references to
// the store and remote client it's given; it never imports pkg/config or
// pkg/wrapper's concrete adapter packages, so wiring those together is left
// entirely to the caller.
type Options struct {
	// Store is the local cache store. Required.
	Store *store.Store
	// Remote is the remote replication client. May be nil, in which case
	// the pipeline behaves as if no remote were configured.
	Remote *remote.Client
	// Algorithm is the hash algorithm used to compute cache keys.
	Algorithm hash.Algorithm
	// DirectMode enables the manifest-based fast path when an adapter
	// supports it.
	DirectMode bool
	// Disabled forces every invocation through passthrough, bypassing the
	// cache entirely.
	Disabled bool
	// SizeCap is the local store's size budget, consulted by the
	// probabilistic eviction trigger.
	SizeCap uint64
	// Logger is the pipeline's logger.
	Logger *logging.Logger
}
