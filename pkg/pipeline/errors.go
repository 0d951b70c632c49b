// Package pipeline implements the per-invocation state machine that ties
// the wrapper, store, and remote layers together.
package pipeline

import "errors"

// Kind identifies one of the closed set of error categories the pipeline
// distinguishes for policy purposes.
type Kind int

const (
	// KindIoError indicates a filesystem or hashing failure.
	KindIoError Kind = iota
	// KindUnsupportedInvocation indicates no adapter accepted the
	// invocation, or the selected adapter refused to preprocess it.
	KindUnsupportedInvocation
	// KindHashVersionMismatch indicates an on-disk manifest or entry was
	// produced by an incompatible hash-format epoch.
	KindHashVersionMismatch
	// KindRemoteUnavailable indicates a remote provider call failed or
	// timed out.
	KindRemoteUnavailable
	// KindConfigError indicates a startup configuration problem.
	KindConfigError
	// KindToolFailed indicates the wrapped tool ran and returned a nonzero
	// exit code; its output must still be forwarded verbatim.
	KindToolFailed
	// KindInternal indicates a programming error or otherwise unclassified
	// failure.
	KindInternal
)

// sentinels holds a descriptive error value for each Kind. Error.Is does
// not consult it; kind comparisons use the targets returned by Is.
var sentinels = map[Kind]error{
	KindIoError:               errors.New("io error"),
	KindUnsupportedInvocation: errors.New("unsupported invocation"),
	KindHashVersionMismatch:   errors.New("hash version mismatch"),
	KindRemoteUnavailable:     errors.New("remote unavailable"),
	KindConfigError:           errors.New("configuration error"),
	KindToolFailed:            errors.New("tool failed"),
	KindInternal:              errors.New("internal error"),
}

// Error is a pipeline error tagged with one of the closed Kind values, so
// that callers can branch on category via
// errors.Is(err, pipeline.Is(pipeline.KindX)) without parsing message text.
type Error struct {
	Kind       Kind
	Message    string
	ReturnCode int
	cause      error
}

// newError constructs a pipeline Error of the given kind wrapping cause
// (which may be nil).
func newError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, cause: cause}
}

// Error implements error.
func (e *Error) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap allows errors.Is/errors.As to see through to the wrapped cause.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is allows errors.Is(err, pipeline.Is(pipeline.KindX)) by comparing the
// kind carried by a kindSentinel target against e's Kind.
func (e *Error) Is(target error) bool {
	kindTarget, ok := target.(kindSentinel)
	return ok && kindTarget.kind == e.Kind
}

// kindSentinel is a target value usable with errors.Is to test an Error's
// Kind, e.g. errors.Is(err, pipeline.Is(pipeline.KindToolFailed)).
type kindSentinel struct {
	kind Kind
}

func (kindSentinel) Error() string { return "pipeline error kind" }

// Is returns a sentinel target suitable for errors.Is(err, pipeline.Is(kind)).
func Is(kind Kind) error {
	return kindSentinel{kind: kind}
}

func ioError(message string, cause error) error {
	return newError(KindIoError, message, cause)
}

func unsupportedInvocation(message string) error {
	return newError(KindUnsupportedInvocation, message, nil)
}

func hashVersionMismatch(message string) error {
	return newError(KindHashVersionMismatch, message, nil)
}

func remoteUnavailable(message string, cause error) error {
	return newError(KindRemoteUnavailable, message, cause)
}

// ConfigError constructs a KindConfigError pipeline error, exported for use
// by pkg/config and cmd/buildcache at startup.
func ConfigError(message string, cause error) error {
	return newError(KindConfigError, message, cause)
}

func toolFailed(returnCode int) *Error {
	e := newError(KindToolFailed, "tool exited with a nonzero return code", nil)
	e.ReturnCode = returnCode
	return e
}

func internalError(message string, cause error) error {
	return newError(KindInternal, message, cause)
}
