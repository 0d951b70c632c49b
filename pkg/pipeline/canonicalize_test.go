package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/buildcache/buildcache/pkg/hash"
)

// TestCanonicalizeEnvOrderIndependent tests that environment rendering is
// independent of map construction order.
func TestCanonicalizeEnvOrderIndependent(t *testing.T) {
	a := map[string]string{"LANG": "C", "CPATH": "/usr/include"}
	b := map[string]string{"CPATH": "/usr/include", "LANG": "C"}
	if string(canonicalizeEnv(a)) != string(canonicalizeEnv(b)) {
		t.Error("environment rendering depends on construction order")
	}
}

// TestComputeDirectKeySensitivity tests that the direct-mode key reacts to
// source content changes and argument changes, is stable across input-list
// ordering, and fails for a missing input file.
func TestComputeDirectKeySensitivity(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.c")
	second := filepath.Join(dir, "b.c")
	if err := os.WriteFile(first, []byte("int a;"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("int b;"), 0600); err != nil {
		t.Fatal(err)
	}

	args := []string{"-c", "-O2"}
	env := map[string]string{"LANG": "C"}

	baseline, err := computeDirectKey(hash.AlgorithmSHA256, "tool-1", args, env, []string{first, second})
	if err != nil {
		t.Fatal("unable to compute direct key:", err)
	}

	reordered, err := computeDirectKey(hash.AlgorithmSHA256, "tool-1", args, env, []string{second, first})
	if err != nil {
		t.Fatal("unable to compute direct key:", err)
	}
	if reordered != baseline {
		t.Error("direct key depends on input list order")
	}

	if err := os.WriteFile(first, []byte("int a; int c;"), 0600); err != nil {
		t.Fatal(err)
	}
	edited, err := computeDirectKey(hash.AlgorithmSHA256, "tool-1", args, env, []string{first, second})
	if err != nil {
		t.Fatal("unable to compute direct key:", err)
	}
	if edited == baseline {
		t.Error("direct key unchanged after source content edit")
	}

	differentArgs, err := computeDirectKey(hash.AlgorithmSHA256, "tool-1", []string{"-c", "-O0"}, env, []string{second})
	if err != nil {
		t.Fatal("unable to compute direct key:", err)
	}
	onlySecond, err := computeDirectKey(hash.AlgorithmSHA256, "tool-1", args, env, []string{second})
	if err != nil {
		t.Fatal("unable to compute direct key:", err)
	}
	if differentArgs == onlySecond {
		t.Error("direct key unchanged after argument change")
	}

	if _, err := computeDirectKey(hash.AlgorithmSHA256, "tool-1", args, env, []string{filepath.Join(dir, "missing.c")}); err == nil {
		t.Error("expected an error for a missing input file")
	}
}
