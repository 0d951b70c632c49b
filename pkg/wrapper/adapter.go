// Package wrapper defines the contract each tool-specific adapter
// satisfies and a static, ordered registry of the adapters this build
// ships. The pipeline holds an owning reference to whichever adapter it
// selects; adapters hold no back-reference to the pipeline; they only
// consume the small Invocation facade below.
package wrapper

import "errors"

// ErrUnsupportedInvocation indicates that an invocation cannot be cached:
// a link step, a multi-output compilation without disambiguation, or a
// debug-info mode incompatible with the configured accuracy level.
var ErrUnsupportedInvocation = errors.New("unsupported invocation")

// Capability is a bit set describing optional behavior an adapter
// supports.
type Capability uint8

const (
	// CapabilityDirectMode indicates the adapter can report implicit
	// inputs from Preprocess, enabling the direct-mode fast path.
	CapabilityDirectMode Capability = 1 << iota
	// CapabilityHardLinks indicates artifacts replayed on a cache hit can be
	// hard-linked (or copied, across devices) from the store's entry
	// directory into place rather than rewritten from memory.
	CapabilityHardLinks
)

// Has reports whether the capability set includes c.
func (capabilities Capability) Has(c Capability) bool {
	return capabilities&c != 0
}

// AccuracyLevel controls how aggressively an adapter trades cache coverage
// for fidelity to the tool's real debug-info/output guarantees.
type AccuracyLevel int

const (
	// AccuracySloppy accepts invocations that stricter levels would refuse,
	// tolerating debug-info modes that can't be perfectly reproduced.
	AccuracySloppy AccuracyLevel = iota
	// AccuracyDefault is the adapters' ordinary behavior.
	AccuracyDefault
	// AccuracyStrict refuses to cache invocations whose debug-info mode
	// can't be faithfully reconstructed from a preprocessed-text hash.
	AccuracyStrict
)

// Invocation is the raw unit of work passed to an adapter: the executable's
// resolved real path, its argument vector (excluding argv[0]), its
// environment, and its working directory.
type Invocation struct {
	// Executable is the resolved, canonicalized path of the tool being
	// invoked.
	Executable string
	// Arguments is the tool's argument vector, excluding argv[0].
	Arguments []string
	// Environment is the invocation's environment, as a key/value map.
	Environment map[string]string
	// WorkingDirectory is the invocation's working directory.
	WorkingDirectory string
}

// OutputSpec describes a single output artifact an adapter expects a tool
// invocation to produce.
type OutputSpec struct {
	// ArtifactID names the artifact within a cache entry (e.g. "object").
	ArtifactID string
	// Path is the filesystem path the tool will write the artifact to.
	Path string
	// Required indicates whether the artifact must exist for the
	// invocation to be considered cacheable. Exactly one output in any
	// adapter's result must be required.
	Required bool
}

// PreprocessResult is the result of running a tool in "emit preprocessed
// text" mode.
type PreprocessResult struct {
	// Text is the preprocessed output bytes.
	Text []byte
	// ImplicitInputs is the list of canonicalized paths the tool reported
	// as implicit inputs (headers/includes) while preprocessing. Adapters
	// that declare CapabilityDirectMode populate it; the pipeline uses it
	// only when direct mode is active.
	ImplicitInputs []string
}

// RunResult is the result of actually invoking the real tool.
type RunResult struct {
	// ReturnCode is the tool's process exit code.
	ReturnCode int
	// Stdout is the tool's captured standard output.
	Stdout []byte
	// Stderr is the tool's captured standard error.
	Stderr []byte
}

// Adapter is the capability set a tool-specific wrapper implements.
// Adapters are selected by matching the invoked program's file name
// against adapter-declared patterns; the first adapter in the registry
// that accepts an invocation wins.
type Adapter interface {
	// Name identifies the adapter for logging and diagnostics.
	Name() string
	// CanHandle is a pure, cheap predicate over the invocation. It may
	// consult the tool-ID memo to avoid repeated fingerprinting of shim
	// binaries.
	CanHandle(invocation *Invocation) bool
	// ResolveArgs expands response files, environment variable references,
	// and tool-specific argument aliasing.
	ResolveArgs(invocation *Invocation) ([]string, error)
	// ProgramID returns a stable identity for this specific tool build,
	// conventionally the hash-format epoch plus the tool's version banner.
	ProgramID(invocation *Invocation) (string, error)
	// RelevantArgs filters arguments down to the deterministic subset that
	// affects object output beyond the preprocessed text.
	RelevantArgs(args []string) []string
	// RelevantEnv filters the environment down to the subset known to
	// influence output.
	RelevantEnv(environment map[string]string) map[string]string
	// InputFiles returns the explicit source files named on the command
	// line, canonicalized.
	InputFiles(invocation *Invocation, args []string) ([]string, error)
	// ExpectedOutputs returns the set of outputs the tool will produce.
	ExpectedOutputs(invocation *Invocation, args []string) ([]OutputSpec, error)
	// Preprocess runs the tool in preprocessing mode. It returns
	// ErrUnsupportedInvocation if the invocation cannot be cached.
	Preprocess(invocation *Invocation, args []string) (*PreprocessResult, error)
	// Capabilities returns the adapter's optional capability set.
	Capabilities() Capability
	// RunForMiss invokes the real tool, capturing its output.
	RunForMiss(invocation *Invocation, args []string) (*RunResult, error)
}
