package pipeline

import (
	"bytes"
	"os/exec"

	"github.com/buildcache/buildcache/pkg/environment"
	"github.com/buildcache/buildcache/pkg/process"
	"github.com/buildcache/buildcache/pkg/wrapper"
)

// runDirect executes invocation's real tool directly, with no wrapper
// involvement, used for the "no adapter selected" and "caching disabled"
// passthrough cases.
func runDirect(invocation *wrapper.Invocation) (*Result, error) {
	cmd := exec.Command(invocation.Executable, invocation.Arguments...)
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
			return nil, internalError("unable to execute tool", err)
		}
	}

	return &Result{ReturnCode: returnCode, Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}, nil
}
