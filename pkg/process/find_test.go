package process

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// writeExecutable creates an empty, executable file at the specified path.
func writeExecutable(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, nil, 0755); err != nil {
		t.Fatal("unable to create test executable:", err)
	}
}

// TestFindCommandLocates tests that FindCommand finds a command present in
// one of several candidate directories.
func TestFindCommandLocates(t *testing.T) {
	empty := t.TempDir()
	withTool := t.TempDir()
	name := ExecutableName("mytool", runtime.GOOS)
	writeExecutable(t, filepath.Join(withTool, name))

	found, err := FindCommand("mytool", []string{empty, withTool}, "")
	if err != nil {
		t.Fatal("unable to locate command:", err)
	}
	if found != filepath.Join(withTool, name) {
		t.Error("unexpected result path:", found)
	}
}

// TestFindCommandMissing tests that FindCommand reports an error when no
// candidate directory contains the named command.
func TestFindCommandMissing(t *testing.T) {
	if _, err := FindCommand("nonexistent-tool", []string{t.TempDir()}, ""); err == nil {
		t.Error("expected an error for a missing command")
	}
}

// TestFindCommandExcludesSelf tests that FindCommand skips a candidate that
// resolves to the excluded path, as used to keep a compiler-named symlink
// from finding itself during PATH search.
func TestFindCommandExcludesSelf(t *testing.T) {
	shimDir := t.TempDir()
	realDir := t.TempDir()
	name := ExecutableName("gcc", runtime.GOOS)

	shimPath := filepath.Join(shimDir, name)
	writeExecutable(t, shimPath)
	realPath := filepath.Join(realDir, name)
	writeExecutable(t, realPath)

	resolvedShim, err := filepath.EvalSymlinks(shimPath)
	if err != nil {
		t.Fatal(err)
	}

	found, err := FindCommand("gcc", []string{shimDir, realDir}, resolvedShim)
	if err != nil {
		t.Fatal("unable to locate command:", err)
	}
	if found != realPath {
		t.Error("expected search to skip the excluded shim and find the real tool:", found)
	}
}
