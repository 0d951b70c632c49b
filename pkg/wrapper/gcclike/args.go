package gcclike

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/buildcache/buildcache/pkg/filesystem"
	"github.com/buildcache/buildcache/pkg/wrapper"
)

// sourceExtensions is the set of file extensions treated as compiler source
// inputs for the purposes of relevant-argument filtering and input
// discovery.
var sourceExtensions = map[string]bool{
	".c":   true,
	".cc":  true,
	".cp":  true,
	".cpp": true,
	".cxx": true,
	".c++": true,
	".C":   true,
	".m":   true,
	".mm":  true,
}

func isSourceFile(arg string) bool {
	return !strings.HasPrefix(arg, "-") && sourceExtensions[filepath.Ext(arg)]
}

// ResolveArgs implements wrapper.Adapter.ResolveArgs: it expands @file
// response-file references and $VAR/${VAR} environment references within
// every argument, on every platform. GCC and Clang both honor @file on
// Windows too, so expansion isn't conditioned on GOOS.
func (a *Adapter) ResolveArgs(invocation *wrapper.Invocation) ([]string, error) {
	expanded, err := expandResponseFiles(invocation.Arguments, invocation.WorkingDirectory)
	if err != nil {
		return nil, err
	}

	result := make([]string, len(expanded))
	for i, arg := range expanded {
		result[i] = expandEnvReferences(arg, invocation.Environment)
	}

	return result, nil
}

// expandResponseFiles replaces every "@path" argument with the whitespace-
// split contents of the named file, recursively, matching the GCC/Clang
// convention that response files may themselves reference further response
// files.
func expandResponseFiles(args []string, workingDirectory string) ([]string, error) {
	var result []string
	for _, arg := range args {
		if !strings.HasPrefix(arg, "@") || len(arg) == 1 {
			result = append(result, arg)
			continue
		}

		path := arg[1:]
		if !filepath.IsAbs(path) {
			path = filepath.Join(workingDirectory, path)
		}

		contents, err := readResponseFile(path)
		if err != nil {
			return nil, fmt.Errorf("unable to read response file %q: %w", path, err)
		}

		nested, err := expandResponseFiles(splitResponseFileArgs(contents), workingDirectory)
		if err != nil {
			return nil, err
		}

		result = append(result, nested...)
	}
	return result, nil
}

// readResponseFile reads a response file's contents, transcoding from
// UTF-16 (with byte-order-mark) to UTF-8 if necessary. GCC/Clang accept
// both encodings since response files are frequently emitted by
// Windows-hosted build systems.
func readResponseFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	if len(data) >= 2 && data[0] == 0xFF && data[1] == 0xFE {
		return decodeUTF16LE(data[2:]), nil
	} else if len(data) >= 2 && data[0] == 0xFE && data[1] == 0xFF {
		return decodeUTF16BE(data[2:]), nil
	}

	return strings.TrimPrefix(string(data), "\xef\xbb\xbf"), nil
}

func decodeUTF16LE(data []byte) string {
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	return string(utf16.Decode(units))
}

func decodeUTF16BE(data []byte) string {
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return string(utf16.Decode(units))
}

// splitResponseFileArgs splits a response file's contents into arguments,
// honoring single and double quoting and backslash escapes, matching the
// behavior GCC documents for @file contents.
func splitResponseFileArgs(contents string) []string {
	var args []string
	var current bytes.Buffer
	var inArg bool
	var quote rune

	flush := func() {
		if inArg {
			args = append(args, current.String())
			current.Reset()
			inArg = false
		}
	}

	runes := []rune(contents)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else if r == '\\' && i+1 < len(runes) {
				i++
				current.WriteRune(runes[i])
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inArg = true
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			flush()
		case r == '\\' && i+1 < len(runes):
			i++
			current.WriteRune(runes[i])
			inArg = true
		default:
			current.WriteRune(r)
			inArg = true
		}
	}
	flush()

	return args
}

// expandEnvReferences substitutes $VAR and ${VAR} references in arg using
// the invocation's environment, leaving undefined variables as an empty
// string, matching shell word-expansion semantics closely enough for the
// build-system-generated arguments this adapter sees.
func expandEnvReferences(arg string, env map[string]string) string {
	return os.Expand(arg, func(name string) string {
		return env[name]
	})
}

// RelevantArgs implements wrapper.Adapter.RelevantArgs: it drops
// include-search flags, macro definitions, the output path, and positional
// source file paths, none of which affect the object output beyond what's
// already captured by the preprocessed text.
func (a *Adapter) RelevantArgs(args []string) []string {
	var result []string
	skipNext := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		switch {
		case arg == "-o":
			skipNext = true
		case strings.HasPrefix(arg, "-I"), strings.HasPrefix(arg, "-D"):
		case isSourceFile(arg):
		default:
			result = append(result, arg)
		}
	}
	return result
}

// relevantEnvKeys is the fixed set of environment variables known to
// influence GCC/Clang output beyond what the preprocessed text already
// captures.
var relevantEnvKeys = []string{
	"CPATH",
	"C_INCLUDE_PATH",
	"CPLUS_INCLUDE_PATH",
	"OBJC_INCLUDE_PATH",
	"LANG",
	"LC_ALL",
	"SOURCE_DATE_EPOCH",
}

// RelevantEnv implements wrapper.Adapter.RelevantEnv.
func (a *Adapter) RelevantEnv(env map[string]string) map[string]string {
	result := make(map[string]string)
	for _, key := range relevantEnvKeys {
		if value, ok := env[key]; ok {
			result[key] = value
		}
	}
	return result
}

// InputFiles implements wrapper.Adapter.InputFiles: the positional source
// file arguments, canonicalized relative to the invocation's working
// directory.
func (a *Adapter) InputFiles(invocation *wrapper.Invocation, args []string) ([]string, error) {
	var inputs []string
	for _, arg := range args {
		if !isSourceFile(arg) {
			continue
		}
		resolved, err := resolveRelative(invocation.WorkingDirectory, arg)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, resolved)
	}
	return inputs, nil
}

func resolveRelative(workingDirectory, path string) (string, error) {
	if !filepath.IsAbs(path) {
		path = filepath.Join(workingDirectory, path)
	}
	return filesystem.ResolvePath(path)
}

// outputPath returns the explicit -o argument, if any.
func outputPath(args []string) (string, bool) {
	for i, arg := range args {
		if arg == "-o" && i+1 < len(args) {
			return args[i+1], true
		}
		if strings.HasPrefix(arg, "-o") && len(arg) > 2 {
			return arg[2:], true
		}
	}
	return "", false
}

func hasFlag(args []string, flags ...string) bool {
	for _, arg := range args {
		for _, flag := range flags {
			if arg == flag {
				return true
			}
		}
	}
	return false
}

// sourceFileArgs returns the positional source-file arguments as they
// appear on the command line, without resolving them against the
// filesystem (unlike InputFiles, which canonicalizes real paths for
// hashing purposes).
func sourceFileArgs(args []string) []string {
	var sources []string
	for _, arg := range args {
		if isSourceFile(arg) {
			sources = append(sources, arg)
		}
	}
	return sources
}

// ExpectedOutputs implements wrapper.Adapter.ExpectedOutputs: a required
// "object" artifact, plus an optional "coverage" artifact (.gcno
// companion) when coverage instrumentation is requested.
func (a *Adapter) ExpectedOutputs(invocation *wrapper.Invocation, args []string) ([]wrapper.OutputSpec, error) {
	sources := sourceFileArgs(args)

	output, explicit := outputPath(args)
	if !explicit {
		if len(sources) != 1 {
			return nil, wrapper.ErrUnsupportedInvocation
		}
		base := filepath.Base(sources[0])
		output = strings.TrimSuffix(base, filepath.Ext(base)) + ".o"
	}
	if !filepath.IsAbs(output) {
		output = filepath.Join(invocation.WorkingDirectory, output)
	}

	outputs := []wrapper.OutputSpec{
		{ArtifactID: "object", Path: output, Required: true},
	}

	if hasFlag(args, "--coverage", "-ftest-coverage") {
		base := strings.TrimSuffix(output, filepath.Ext(output))
		outputs = append(outputs, wrapper.OutputSpec{
			ArtifactID: "coverage",
			Path:       base + ".gcno",
			Required:   false,
		})
	}

	return outputs, nil
}
