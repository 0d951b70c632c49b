package gcclike

import (
	"bufio"
	"bytes"
	"fmt"
	"os/exec"
	"strings"

	"github.com/buildcache/buildcache/pkg/environment"
	"github.com/buildcache/buildcache/pkg/wrapper"
)

// incompatibleWithStrict lists debug-info flags whose output this adapter
// can't faithfully reconstruct from a hash of the preprocessed text alone,
// and which are therefore refused under AccuracyStrict.
var incompatibleWithStrict = []string{"-gsplit-dwarf", "-g3"}

// Preprocess implements wrapper.Adapter.Preprocess. It refuses link
// invocations, multi-source invocations lacking an explicit -o, and
// (under AccuracyStrict) debug-info modes it can't safely cache; otherwise
// it runs the tool a second time in "-E" mode to capture preprocessed text
// and, since this adapter declares CapabilityDirectMode, a third time in
// "-M" mode to discover implicit header inputs. The "-M" run happens
// whether or not the pipeline has direct mode enabled.
func (a *Adapter) Preprocess(invocation *wrapper.Invocation, args []string) (*wrapper.PreprocessResult, error) {
	if !hasFlag(args, "-c", "-E", "-S") {
		return nil, wrapper.ErrUnsupportedInvocation
	}

	if len(sourceFileArgs(args)) > 1 {
		if _, explicit := outputPath(args); !explicit {
			return nil, wrapper.ErrUnsupportedInvocation
		}
	}

	if a.accuracy == wrapper.AccuracyStrict && hasFlag(args, incompatibleWithStrict...) {
		return nil, wrapper.ErrUnsupportedInvocation
	}

	text, err := a.runMode(invocation, args, "-E")
	if err != nil {
		return nil, fmt.Errorf("preprocessing failed: %w", err)
	}

	result := &wrapper.PreprocessResult{Text: text}

	if a.Capabilities().Has(wrapper.CapabilityDirectMode) {
		dependencyOutput, err := a.runMode(invocation, args, "-M")
		if err != nil {
			return nil, fmt.Errorf("dependency scan failed: %w", err)
		}
		implicit, err := parseDependencyOutput(dependencyOutput, invocation.WorkingDirectory)
		if err != nil {
			return nil, err
		}
		result.ImplicitInputs = implicit
	}

	return result, nil
}

// runMode replaces any compile-phase flag (-c/-E/-S) in args with mode,
// drops any explicit output path so the tool writes to standard output, and
// runs the tool, returning its captured stdout.
func (a *Adapter) runMode(invocation *wrapper.Invocation, args []string, mode string) ([]byte, error) {
	rewritten := make([]string, 0, len(args)+1)
	skipNext := false
	replaced := false
	for _, arg := range args {
		if skipNext {
			skipNext = false
			continue
		}
		switch {
		case arg == "-o":
			skipNext = true
		case strings.HasPrefix(arg, "-o") && len(arg) > 2:
		case arg == "-c" || arg == "-E" || arg == "-S":
			rewritten = append(rewritten, mode)
			replaced = true
		default:
			rewritten = append(rewritten, arg)
		}
	}
	if !replaced {
		rewritten = append(rewritten, mode)
	}

	cmd := exec.Command(invocation.Executable, rewritten...)
	cmd.Dir = invocation.WorkingDirectory
	cmd.Env = environment.FromMap(invocation.Environment)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w (stderr: %s)", err, stderr.String())
	}

	return stdout.Bytes(), nil
}

// parseDependencyOutput parses GCC/Clang "-M" Makefile-rule output
// ("target: dep1 dep2 \\\n dep3 ...") into a flat, canonicalized,
// deduplicated list of dependency paths, excluding the rule's own target.
func parseDependencyOutput(output []byte, workingDirectory string) ([]string, error) {
	joined := strings.ReplaceAll(string(output), "\\\n", " ")

	scanner := bufio.NewScanner(strings.NewReader(joined))
	seen := make(map[string]bool)
	var result []string

	for scanner.Scan() {
		line := scanner.Text()
		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		fields := strings.Fields(line[colon+1:])
		for _, field := range fields {
			resolved, err := resolveRelative(workingDirectory, field)
			if err != nil {
				continue
			}
			if !seen[resolved] {
				seen[resolved] = true
				result = append(result, resolved)
			}
		}
	}

	return result, nil
}
