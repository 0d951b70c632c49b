//go:build !plan9

// TODO: Figure out what to do for Plan 9. It doesn't have syscall.WaitStatus.

package process

import (
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

const (
	// posixShellInvalidCommandExitCode is the exit code returned by most (all?)
	// POSIX shells when the provided command is invalid, e.g. due to an file
	// without executable permissions. It seems to have originated with the
	// Bourne shell and then been brought over to bash, zsh, and others. It
	// doesn't seem to have a corresponding errno value, which I guess makes
	// sense since errno values aren't generally expected to be used as exit
	// codes, so we have to define it manually.
	posixShellInvalidCommandExitCode = 126

	// posixShellCommandNotFoundExitCode is the exit code returned by most
	// (all?) POSIX shells when the provided command isn't found. It seems to
	// have originated with the Bourne shell and then been brought over to bash,
	// zsh, and others.
	posixShellCommandNotFoundExitCode = 127
)

// ExitCodeForError extracts the process exit code from an error returned by
// (*exec.Cmd).Run or .Wait. This is the primary way the invocation pipeline
// learns the real tool's return code for both the cache-miss path (to decide
// whether to publish) and the passthrough path (to forward it verbatim).
func ExitCodeForError(err error) (int, error) {
	if err == nil {
		return 0, errors.New("no error supplied")
	}

	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return 0, errors.New("error is not an exec.ExitError")
	}

	waitStatus, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 0, errors.New("unable to access wait status")
	}

	return waitStatus.ExitStatus(), nil
}

// IsPOSIXShellInvalidCommand returns whether or not a process exit error
// represents an "invalid command" error from a POSIX shell.
func IsPOSIXShellInvalidCommand(err error) bool {
	code, codeErr := ExitCodeForError(err)
	return codeErr == nil && code == posixShellInvalidCommandExitCode
}

// IsPOSIXShellCommandNotFound returns whether or not a process exit error
// represents a "command not found" error from a POSIX shell.
func IsPOSIXShellCommandNotFound(err error) bool {
	code, codeErr := ExitCodeForError(err)
	return codeErr == nil && code == posixShellCommandNotFoundExitCode
}
