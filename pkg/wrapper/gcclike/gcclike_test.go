package gcclike

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/buildcache/buildcache/pkg/wrapper"
)

func TestLooksLikeGccFamily(t *testing.T) {
	cases := map[string]bool{
		"/usr/bin/gcc":       true,
		"/usr/bin/g++":       true,
		"cc":                 true,
		"clang++.exe":        true,
		"/usr/bin/ld":        false,
		"/usr/bin/gcc-shim2": false,
	}
	for path, expected := range cases {
		if got := looksLikeGccFamily(path); got != expected {
			t.Errorf("looksLikeGccFamily(%q) = %v, want %v", path, got, expected)
		}
	}
}

func TestRelevantArgsDropsNoise(t *testing.T) {
	a := New(wrapper.AccuracyDefault, nil)
	args := []string{"-Wall", "-Iinclude", "-DFOO=1", "-c", "main.c", "-o", "main.o", "-O2"}
	got := a.RelevantArgs(args)
	want := []string{"-Wall", "-c", "-O2"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RelevantArgs = %v, want %v", got, want)
	}
}

func TestRelevantEnvFiltersToKnownKeys(t *testing.T) {
	a := New(wrapper.AccuracyDefault, nil)
	env := map[string]string{"CPATH": "/usr/include", "PATH": "/bin", "HOME": "/root"}
	got := a.RelevantEnv(env)
	want := map[string]string{"CPATH": "/usr/include"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RelevantEnv = %v, want %v", got, want)
	}
}

func TestExpectedOutputsExplicit(t *testing.T) {
	dir := t.TempDir()
	a := New(wrapper.AccuracyDefault, nil)
	invocation := &wrapper.Invocation{WorkingDirectory: dir}
	outputs, err := a.ExpectedOutputs(invocation, []string{"-c", "main.c", "-o", "build/main.o"})
	if err != nil {
		t.Fatal(err)
	}
	if len(outputs) != 1 || outputs[0].ArtifactID != "object" || !outputs[0].Required {
		t.Fatalf("unexpected outputs: %+v", outputs)
	}
	if outputs[0].Path != filepath.Join(dir, "build/main.o") {
		t.Errorf("unexpected output path: %s", outputs[0].Path)
	}
}

func TestExpectedOutputsWithCoverage(t *testing.T) {
	dir := t.TempDir()
	a := New(wrapper.AccuracyDefault, nil)
	invocation := &wrapper.Invocation{WorkingDirectory: dir}
	outputs, err := a.ExpectedOutputs(invocation, []string{"-c", "main.c", "-o", "main.o", "--coverage"})
	if err != nil {
		t.Fatal(err)
	}
	if len(outputs) != 2 {
		t.Fatalf("expected 2 outputs, got %d", len(outputs))
	}
	if outputs[1].ArtifactID != "coverage" || outputs[1].Required {
		t.Errorf("unexpected coverage output: %+v", outputs[1])
	}
}

func TestExpectedOutputsAmbiguousMultiSource(t *testing.T) {
	dir := t.TempDir()
	a := New(wrapper.AccuracyDefault, nil)
	invocation := &wrapper.Invocation{WorkingDirectory: dir}
	_, err := a.ExpectedOutputs(invocation, []string{"-c", "a.c", "b.c"})
	if err != wrapper.ErrUnsupportedInvocation {
		t.Fatalf("expected ErrUnsupportedInvocation, got %v", err)
	}
}

func TestPreprocessRejectsLinkInvocation(t *testing.T) {
	dir := t.TempDir()
	a := New(wrapper.AccuracyDefault, nil)
	invocation := &wrapper.Invocation{WorkingDirectory: dir}
	_, err := a.Preprocess(invocation, []string{"main.o", "-o", "main"})
	if err != wrapper.ErrUnsupportedInvocation {
		t.Fatalf("expected ErrUnsupportedInvocation, got %v", err)
	}
}

func TestPreprocessRejectsSplitDwarfUnderStrict(t *testing.T) {
	dir := t.TempDir()
	a := New(wrapper.AccuracyStrict, nil)
	invocation := &wrapper.Invocation{WorkingDirectory: dir}
	_, err := a.Preprocess(invocation, []string{"-c", "main.c", "-gsplit-dwarf"})
	if err != wrapper.ErrUnsupportedInvocation {
		t.Fatalf("expected ErrUnsupportedInvocation, got %v", err)
	}
}

func TestExpandResponseFilesPlain(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "args.rsp")
	if err := os.WriteFile(path, []byte("-c main.c -o main.o"), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := expandResponseFiles([]string{"@" + path, "-Wall"}, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-c", "main.c", "-o", "main.o", "-Wall"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandResponseFiles = %v, want %v", got, want)
	}
}

func TestExpandResponseFilesUTF16(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "args.rsp")

	content := "-DFOO -c main.c"
	encoded := []byte{0xFF, 0xFE}
	for _, r := range content {
		encoded = append(encoded, byte(r), 0)
	}
	if err := os.WriteFile(path, encoded, 0600); err != nil {
		t.Fatal(err)
	}

	got, err := expandResponseFiles([]string{"@" + path}, dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"-DFOO", "-c", "main.c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expandResponseFiles = %v, want %v", got, want)
	}
}

func TestExpandEnvReferences(t *testing.T) {
	env := map[string]string{"SYSROOT": "/opt/sysroot"}
	got := expandEnvReferences("--sysroot=${SYSROOT}/usr", env)
	want := "--sysroot=/opt/sysroot/usr"
	if got != want {
		t.Errorf("expandEnvReferences = %q, want %q", got, want)
	}
}

func TestParseDependencyOutput(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"main.c", "foo.h", "bar.h"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
			t.Fatal(err)
		}
	}

	output := []byte("main.o: main.c foo.h \\\n bar.h\n")
	got, err := parseDependencyOutput(output, dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 dependencies, got %d: %v", len(got), got)
	}
}
