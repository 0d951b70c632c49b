package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/buildcache/buildcache/cmd"
	"github.com/buildcache/buildcache/pkg/environment"
	"github.com/buildcache/buildcache/pkg/filesystem"
	"github.com/buildcache/buildcache/pkg/process"
	"github.com/buildcache/buildcache/pkg/utility"
	"github.com/buildcache/buildcache/pkg/wrapper"
)

// runInvocation resolves toolName to a real executable (excluding
// buildcache's own resolved path from the search when toolName isn't
// already an absolute/relative path to a specific file), runs it through
// the cache pipeline, forwards its captured output, and returns the real
// tool's exit code, whether it came from a cache hit or an actual run.
func runInvocation(toolName string, arguments []string) (int, error) {
	executable, err := resolveToolPath(toolName)
	if err != nil {
		return 1, fmt.Errorf("unable to locate tool %q: %w", toolName, err)
	}

	workingDirectory, err := os.Getwd()
	if err != nil {
		return 1, fmt.Errorf("unable to determine working directory: %w", err)
	}

	// Copy the argument vector so that adapters mutating their resolved
	// argument slices can never alias the caller's os.Args backing array.
	invocation := &wrapper.Invocation{
		Executable:       executable,
		Arguments:        utility.CopyStringSlice(arguments),
		Environment:      environment.CopyCurrent(),
		WorkingDirectory: workingDirectory,
	}

	env, err := openEnvironment(configFlagValue)
	if err != nil {
		return 1, err
	}
	defer env.Close()

	// On termination, release the environment (which drains in-flight remote
	// puts and the store's lock resources) before exiting. Staged temporary
	// state is scoped to its publisher and cleaned up by its own deferred
	// removal, so interrupted invocations never leave partial entries behind.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, cmd.TerminationSignals...)
	defer signal.Stop(signals)
	go func() {
		if _, ok := <-signals; ok {
			env.Close()
			os.Exit(1)
		}
	}()

	p, err := env.buildPipeline()
	if err != nil {
		return 1, err
	}

	result, err := p.Run(invocation)
	if err != nil {
		return 1, err
	}

	os.Stdout.Write(result.Stdout)
	os.Stderr.Write(result.Stderr)

	return result.ReturnCode, nil
}

// resolveToolPath resolves toolName to an executable path. If toolName
// contains a path separator, it's used as-is (the caller named a specific
// file); otherwise it's searched for via PATH, excluding buildcache's own
// resolved executable path so that a compiler-named symlink installed
// alongside the real tools doesn't find itself.
func resolveToolPath(toolName string) (string, error) {
	if strings.ContainsRune(toolName, os.PathSeparator) {
		return filesystem.ResolvePath(toolName)
	}

	selfPath, err := os.Executable()
	if err != nil {
		selfPath = ""
	} else if resolved, resolveErr := filesystem.ResolvePath(selfPath); resolveErr == nil {
		selfPath = resolved
	}

	paths := strings.Split(os.Getenv("PATH"), string(os.PathListSeparator))
	found, err := process.FindCommand(toolName, paths, selfPath)
	if err != nil {
		return "", err
	}
	return filesystem.ResolvePath(found)
}
