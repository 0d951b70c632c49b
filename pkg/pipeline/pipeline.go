// Package pipeline implements the per-invocation state machine: select an
// adapter, resolve arguments, attempt direct mode, fall back to the
// preprocessed key, materialize a hit from the local store or the remote
// provider, and on a genuine miss run the real tool and publish what it
// produced.
package pipeline

import (
	"os"

	"github.com/buildcache/buildcache/pkg/filesystem"
	"github.com/buildcache/buildcache/pkg/hash"
	"github.com/buildcache/buildcache/pkg/random"
	"github.com/buildcache/buildcache/pkg/store"
	"github.com/buildcache/buildcache/pkg/wrapper"
)

// Result is the outcome of running a Pipeline over a single invocation: the
// real tool's return code and captured output, regardless of whether it
// came from a cache hit or an actual run.
type Result struct {
	ReturnCode int
	Stdout     []byte
	Stderr     []byte
}

// Pipeline orchestrates cached tool invocations. It holds owning
// references to the store and remote client it was constructed with;
// wrappers it selects hold no reference back to it.
type Pipeline struct {
	options Options
}

// New creates a Pipeline from the given options.
func New(options Options) *Pipeline {
	return &Pipeline{options: options}
}

// Run executes invocation through the pipeline, returning the real tool's
// return code and captured output. The only errors Run returns are
// KindInternal: every other failure mode is absorbed by degrading to
// passthrough execution, since the cache must never turn a successful
// build into a failed one.
func (p *Pipeline) Run(invocation *wrapper.Invocation) (*Result, error) {
	if p.options.Disabled {
		return runDirect(invocation)
	}

	adapter := wrapper.Select(invocation)
	if adapter == nil {
		return runDirect(invocation)
	}

	result, err := p.runCached(adapter, invocation)
	if err == nil {
		return result, nil
	}

	if pipelineErr, ok := err.(*Error); ok && pipelineErr.Kind == KindInternal {
		return nil, err
	}

	p.options.Logger.Debug("degrading to passthrough for", invocation.Executable, ":", err)
	return runDirect(invocation)
}

// runCached implements the cached path of the state machine once an
// adapter has accepted the invocation.
func (p *Pipeline) runCached(adapter wrapper.Adapter, invocation *wrapper.Invocation) (*Result, error) {
	args, err := adapter.ResolveArgs(invocation)
	if err != nil {
		return nil, ioError("unable to resolve arguments", err)
	}

	programID, err := adapter.ProgramID(invocation)
	if err != nil {
		return nil, ioError("unable to determine program ID", err)
	}

	relevantArgs := adapter.RelevantArgs(args)
	relevantEnv := adapter.RelevantEnv(invocation.Environment)

	directModeActive := p.options.DirectMode && adapter.Capabilities().Has(wrapper.CapabilityDirectMode)

	var directKey string
	var explicitInputs []string
	if directModeActive {
		explicitInputs, err = adapter.InputFiles(invocation, args)
		if err != nil {
			return nil, ioError("unable to determine input files", err)
		}

		directKey, err = computeDirectKey(p.options.Algorithm, programID, relevantArgs, relevantEnv, explicitInputs)
		if err != nil {
			return nil, ioError("unable to compute direct key", err)
		}

		if entryKey, found := p.probeManifests(directKey); found {
			if result, err := p.materialize(adapter, invocation, args, entryKey, true); err != nil {
				return nil, err
			} else if result != nil {
				return result, nil
			}
			// The manifest verified, but the entry it named is gone (e.g.
			// evicted concurrently). Fall through and recompute the entry
			// key the slow way rather than trusting a stale manifest entry
			// key: a lookup must tolerate an entry disappearing between
			// lookup and materialize.
		}
	}

	preprocessed, err := adapter.Preprocess(invocation, args)
	if err != nil {
		if err == wrapper.ErrUnsupportedInvocation {
			return nil, unsupportedInvocation("invocation cannot be cached")
		}
		return nil, ioError("unable to preprocess invocation", err)
	}

	entryKey, err := hash.SequenceToHex(p.options.Algorithm,
		[]byte(programID),
		canonicalizeArgs(relevantArgs),
		canonicalizeEnv(relevantEnv),
		preprocessed.Text,
	)
	if err != nil {
		return nil, ioError("unable to compute entry key", err)
	}

	result, err := p.materialize(adapter, invocation, args, entryKey, false)
	if err != nil {
		return nil, err
	}
	if result != nil {
		return result, nil
	}

	return p.miss(adapter, invocation, args, entryKey, directKey, preprocessed.ImplicitInputs)
}

// probeManifests checks every manifest published for directKey, newest
// first, returning the entry key of the first one that still verifies.
func (p *Pipeline) probeManifests(directKey string) (string, bool) {
	manifests, err := p.options.Store.LookupManifest(directKey)
	if err != nil {
		p.options.Logger.Debug("manifest lookup failed for", directKey, ":", err)
		return "", false
	}

	for _, manifest := range manifests {
		if manifest.Version != store.CurrentManifestVersion {
			p.options.Logger.Debug(hashVersionMismatch("manifest format version mismatch").Error())
			continue
		}
		ok, err := manifest.Verify(p.options.Algorithm)
		if err != nil {
			p.options.Logger.Debug("manifest verification failed:", err)
			continue
		}
		if ok {
			return manifest.EntryKey, true
		}
	}

	return "", false
}

// materialize attempts to satisfy entryKey from the local store and then
// the remote provider, replaying and returning a Result on a hit. A nil
// Result and nil error indicates a genuine miss that the caller should
// proceed to handle via the real tool.
func (p *Pipeline) materialize(adapter wrapper.Adapter, invocation *wrapper.Invocation, args []string, entryKey string, direct bool) (*Result, error) {
	entry, found, err := p.options.Store.LookupEntry(entryKey)
	if err != nil {
		p.options.Logger.Debug("local entry lookup failed for", entryKey, ":", err)
	}
	if found {
		if err := p.options.Store.RecordAccess(entryKey); err != nil {
			p.options.Logger.Debug("unable to record access for", entryKey, ":", err)
		}
		p.recordHit(direct, false)
		return p.replay(adapter, invocation, args, entryKey, entry)
	}

	if p.options.Remote == nil {
		return nil, nil
	}

	remoteEntry, found, err := p.options.Remote.Get(entryKey)
	if err != nil {
		p.options.Logger.Debug(remoteUnavailable("remote entry lookup failed for "+entryKey, err).Error())
		return nil, nil
	}
	if !found {
		return nil, nil
	}

	if err := p.options.Store.PublishEntry(entryKey, remoteEntry); err != nil {
		p.options.Logger.Debug("unable to warm local store from remote entry:", err)
	}
	p.recordHit(direct, true)
	return p.replay(adapter, invocation, args, entryKey, remoteEntry)
}

// recordHit increments the appropriate stats counter for a cache hit.
func (p *Pipeline) recordHit(direct, remote bool) {
	err := p.options.Store.UpdateStats(func(stats *store.Stats) {
		switch {
		case remote:
			stats.HitsRemote++
		case direct:
			stats.HitsDirect++
		default:
			stats.HitsPreprocessed++
		}
	})
	if err != nil {
		p.options.Logger.Debug("unable to update stats ledger:", err)
	}
}

// replay materializes a hit entry's artifacts on disk before forwarding its
// captured stdout/stderr, so that downstream build tools observing files
// also observe terminal output consistent with a real run. When the adapter
// allows hard links, artifacts are linked (or copied, across devices)
// straight from the store's entry directory rather than rewritten from the
// in-memory copy.
func (p *Pipeline) replay(adapter wrapper.Adapter, invocation *wrapper.Invocation, args []string, entryKey string, entry *store.Entry) (*Result, error) {
	outputs, err := adapter.ExpectedOutputs(invocation, args)
	if err != nil {
		return nil, ioError("unable to determine expected outputs for replay", err)
	}

	hardLinks := adapter.Capabilities().Has(wrapper.CapabilityHardLinks)

	for _, output := range outputs {
		data, ok := entry.Artifacts[output.ArtifactID]
		if !ok {
			if output.Required {
				return nil, ioError("cached entry missing required artifact "+output.ArtifactID, nil)
			}
			continue
		}
		if hardLinks {
			if source, err := p.options.Store.ArtifactPath(entryKey, output.ArtifactID); err == nil {
				os.Remove(output.Path)
				if err := filesystem.LinkOrCopy(source, output.Path); err == nil {
					continue
				}
				// The entry may have been evicted between lookup and
				// materialization; fall back to the bytes already read.
			}
		}
		if err := os.WriteFile(output.Path, data, 0600); err != nil {
			return nil, ioError("unable to write replayed artifact "+output.ArtifactID, err)
		}
	}

	return &Result{ReturnCode: entry.ReturnCode, Stdout: entry.Stdout, Stderr: entry.Stderr}, nil
}

// miss runs the real tool, and on a clean, fully-produced result, packs
// and publishes a cache entry (and, in direct mode, a manifest) before
// returning its output.
func (p *Pipeline) miss(adapter wrapper.Adapter, invocation *wrapper.Invocation, args []string, entryKey, directKey string, implicitInputs []string) (*Result, error) {
	runResult, err := adapter.RunForMiss(invocation, args)
	if err != nil {
		return nil, ioError("unable to run tool", err)
	}

	if err := p.options.Store.UpdateStats(func(stats *store.Stats) { stats.Misses++ }); err != nil {
		p.options.Logger.Debug("unable to update stats ledger:", err)
	}

	result := &Result{ReturnCode: runResult.ReturnCode, Stdout: runResult.Stdout, Stderr: runResult.Stderr}
	if runResult.ReturnCode != 0 {
		p.options.Logger.Debug(toolFailed(runResult.ReturnCode).Error())
		return result, nil
	}

	outputs, err := adapter.ExpectedOutputs(invocation, args)
	if err != nil {
		p.options.Logger.Debug("unable to determine expected outputs, skipping publish:", err)
		return result, nil
	}

	entry, ok := packEntry(outputs, runResult)
	if !ok {
		p.options.Logger.Debug("required output missing after successful run, skipping publish")
		return result, nil
	}

	if err := p.options.Store.PublishEntry(entryKey, entry); err != nil {
		p.options.Logger.Debug("unable to publish entry:", err)
		return result, nil
	}

	if directKey != "" {
		manifest, err := buildManifest(p.options.Algorithm, entryKey, implicitInputs)
		if err != nil {
			p.options.Logger.Debug("unable to build manifest:", err)
		} else if err := p.options.Store.PublishManifest(directKey, manifest); err != nil {
			p.options.Logger.Debug("unable to publish manifest:", err)
		}
	}

	if p.options.Remote != nil {
		p.options.Remote.PutAsync(entryKey, entry)
	}

	p.maybeEvict()

	return result, nil
}

// maybeEvict triggers an eviction sweep with probability
// 1/evictionProbabilityDenominator. A probabilistic trigger amortizes the
// sweep's full-tree walk across publishes without requiring publishers to
// coordinate on an exact size count.
func (p *Pipeline) maybeEvict() {
	if p.options.SizeCap == 0 {
		return
	}

	roll, err := random.New(1)
	if err != nil || roll[0] >= 256/evictionProbabilityDenominator {
		return
	}

	if err := p.options.Store.EvictUntil(p.options.SizeCap); err != nil {
		p.options.Logger.Debug("eviction sweep failed:", err)
	}
}

// packEntry reads every expected output from disk into an Entry. It
// reports false if a required artifact is missing.
func packEntry(outputs []wrapper.OutputSpec, runResult *wrapper.RunResult) (*store.Entry, bool) {
	entry := &store.Entry{
		Artifacts:  make(map[string][]byte, len(outputs)),
		Stdout:     runResult.Stdout,
		Stderr:     runResult.Stderr,
		ReturnCode: runResult.ReturnCode,
	}

	for _, output := range outputs {
		data, err := os.ReadFile(output.Path)
		if err != nil {
			if output.Required {
				return nil, false
			}
			continue
		}
		entry.Artifacts[output.ArtifactID] = data
	}

	return entry, true
}
