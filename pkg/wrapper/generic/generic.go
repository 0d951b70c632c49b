// Package generic provides the always-last, never-matching adapter that
// anchors the end of the wrapper registry. Registering it isn't required
// for correctness (wrapper.Select already returns nil when nothing
// matches); it marks the end of the adapter list explicitly.
package generic

import (
	"github.com/buildcache/buildcache/pkg/utility"
	"github.com/buildcache/buildcache/pkg/wrapper"
)

// Adapter never recognizes an invocation, so wrapper.Select never returns
// it; invocations that no adapter claims are run directly by the pipeline.
type Adapter struct{}

// New creates a generic passthrough adapter.
func New() *Adapter {
	return &Adapter{}
}

// Name implements wrapper.Adapter.Name.
func (a *Adapter) Name() string {
	return "generic"
}

// CanHandle implements wrapper.Adapter.CanHandle: always false.
func (a *Adapter) CanHandle(invocation *wrapper.Invocation) bool {
	return false
}

// ResolveArgs implements wrapper.Adapter.ResolveArgs.
func (a *Adapter) ResolveArgs(invocation *wrapper.Invocation) ([]string, error) {
	return utility.CopyStringSlice(invocation.Arguments), nil
}

// ProgramID implements wrapper.Adapter.ProgramID.
func (a *Adapter) ProgramID(invocation *wrapper.Invocation) (string, error) {
	return "", wrapper.ErrUnsupportedInvocation
}

// RelevantArgs implements wrapper.Adapter.RelevantArgs.
func (a *Adapter) RelevantArgs(args []string) []string {
	return args
}

// RelevantEnv implements wrapper.Adapter.RelevantEnv.
func (a *Adapter) RelevantEnv(environment map[string]string) map[string]string {
	return utility.CopyStringMap(environment)
}

// InputFiles implements wrapper.Adapter.InputFiles.
func (a *Adapter) InputFiles(invocation *wrapper.Invocation, args []string) ([]string, error) {
	return nil, wrapper.ErrUnsupportedInvocation
}

// ExpectedOutputs implements wrapper.Adapter.ExpectedOutputs.
func (a *Adapter) ExpectedOutputs(invocation *wrapper.Invocation, args []string) ([]wrapper.OutputSpec, error) {
	return nil, wrapper.ErrUnsupportedInvocation
}

// Preprocess implements wrapper.Adapter.Preprocess.
func (a *Adapter) Preprocess(invocation *wrapper.Invocation, args []string) (*wrapper.PreprocessResult, error) {
	return nil, wrapper.ErrUnsupportedInvocation
}

// Capabilities implements wrapper.Adapter.Capabilities.
func (a *Adapter) Capabilities() wrapper.Capability {
	return 0
}

// RunForMiss implements wrapper.Adapter.RunForMiss: it runs nothing and
// always returns ErrUnsupportedInvocation.
func (a *Adapter) RunForMiss(invocation *wrapper.Invocation, args []string) (*wrapper.RunResult, error) {
	return nil, wrapper.ErrUnsupportedInvocation
}
