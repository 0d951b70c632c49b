// Package gcclike implements the wrapper.Adapter contract for GCC- and
// Clang-family compilers.
package gcclike

import (
	"bytes"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/buildcache/buildcache/pkg/buildcache"
	"github.com/buildcache/buildcache/pkg/environment"
	"github.com/buildcache/buildcache/pkg/process"
	"github.com/buildcache/buildcache/pkg/wrapper"
	"github.com/buildcache/buildcache/pkg/wrapper/toolid"
)

// recognizedBasenames is the set of executable names this adapter accepts,
// compared after extension-stripping.
var recognizedBasenames = map[string]bool{
	"gcc":     true,
	"g++":     true,
	"cc":      true,
	"c++":     true,
	"clang":   true,
	"clang++": true,
}

// Adapter implements wrapper.Adapter for GCC-like compilers.
type Adapter struct {
	accuracy wrapper.AccuracyLevel
	memo     *toolid.Memo
}

// New creates a gcclike adapter. memo may be nil, in which case every
// CanHandle/ProgramID call re-derives the tool's identity.
func New(accuracy wrapper.AccuracyLevel, memo *toolid.Memo) *Adapter {
	return &Adapter{accuracy: accuracy, memo: memo}
}

// Name implements wrapper.Adapter.Name.
func (a *Adapter) Name() string {
	return "gcclike"
}

// basenameWithoutExtension strips the file extension (e.g. .exe) from a
// base name for matching purposes.
func basenameWithoutExtension(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func looksLikeGccFamily(path string) bool {
	return recognizedBasenames[basenameWithoutExtension(path)]
}

// CanHandle implements wrapper.Adapter.CanHandle. It's a cheap name-based
// predicate, optionally backed by the tool-ID memo so that a basename match
// doesn't need to be revalidated by executing the tool on every call within
// a build.
func (a *Adapter) CanHandle(invocation *wrapper.Invocation) bool {
	if !looksLikeGccFamily(invocation.Executable) {
		return false
	}

	if a.memo != nil {
		if decision, ok := a.memo.Lookup(invocation.Executable); ok {
			return decision.Supported
		}
	}

	programID, err := a.ProgramID(invocation)
	supported := err == nil

	if a.memo != nil {
		a.memo.Store(invocation.Executable, supported, programID)
	}

	return supported
}

// ProgramID implements wrapper.Adapter.ProgramID: the hash-format epoch
// plus the tool's version banner, taken from the tool-ID memo when it holds
// a supported decision for the executable.
func (a *Adapter) ProgramID(invocation *wrapper.Invocation) (string, error) {
	if a.memo != nil {
		if decision, ok := a.memo.Lookup(invocation.Executable); ok && decision.Supported {
			return decision.ProgramID, nil
		}
	}

	cmd := exec.Command(invocation.Executable, "--version")
	cmd.Env = environment.FromMap(invocation.Environment)
	output, err := cmd.Output()
	if err != nil {
		if message := process.ExtractExitErrorMessage(err); message != "" {
			return "", fmt.Errorf("unable to determine tool version: %s", message)
		}
		return "", fmt.Errorf("unable to determine tool version: %w", err)
	}

	banner := output
	if newline := bytes.IndexByte(banner, '\n'); newline >= 0 {
		banner = banner[:newline]
	}

	return fmt.Sprintf("epoch-%d %s", buildcache.HashFormatEpoch, strings.TrimSpace(string(banner))), nil
}

// Capabilities implements wrapper.Adapter.Capabilities.
func (a *Adapter) Capabilities() wrapper.Capability {
	return wrapper.CapabilityDirectMode | wrapper.CapabilityHardLinks
}

// RunForMiss implements wrapper.Adapter.RunForMiss: it invokes the real
// tool with the resolved argument vector, capturing stdout/stderr/return
// code. Produced files are left where the tool wrote them (per
// ExpectedOutputs); the pipeline reads them from disk after a successful
// run.
func (a *Adapter) RunForMiss(invocation *wrapper.Invocation, args []string) (*wrapper.RunResult, error) {
	cmd := exec.Command(invocation.Executable, args...)
	cmd.Dir = invocation.WorkingDirectory
	cmd.Env = environment.FromMap(invocation.Environment)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	returnCode := 0
	if err := cmd.Run(); err != nil {
		if code, codeErr := process.ExitCodeForError(err); codeErr == nil {
			returnCode = code
		} else {
			return nil, fmt.Errorf("unable to run tool: %w", err)
		}
	}

	return &wrapper.RunResult{
		ReturnCode: returnCode,
		Stdout:     stdout.Bytes(),
		Stderr:     stderr.Bytes(),
	}, nil
}
