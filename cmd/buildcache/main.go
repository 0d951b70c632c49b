// Command buildcache is the front-end binary: a transparent wrapper placed
// in front of a slow compiler invocation. It's invoked either directly
// (`buildcache <tool> [args...]`) or via a symlink installed alongside
// real compilers under the compiler's own name (`gcc`, `clang`, `cl`,
// ...), in which case it behaves as `buildcache <real-tool> [args...]`
// with the real tool located via PATH search, excluding the symlink's own
// resolved path.
package main

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/buildcache/buildcache/cmd"
	"github.com/buildcache/buildcache/pkg/process"

	// Blank-imported for their init-time remote.Register side effects: the
	// registry only needs to know these backends exist, never their
	// concrete types.
	_ "github.com/buildcache/buildcache/pkg/remote/httpprovider"
	_ "github.com/buildcache/buildcache/pkg/remote/redisprovider"
)

func main() {
	selfName := filepath.Base(os.Args[0])
	if selfName == process.ExecutableName("buildcache", runtime.GOOS) {
		runAsFrontEnd()
		return
	}
	runAsCompilerShim(selfName)
}

// runAsFrontEnd executes the Cobra command tree for ordinary `buildcache
// ...` invocations.
func runAsFrontEnd() {
	root := newRootCommand()
	if err := root.Execute(); err != nil {
		// Cobra has already printed the error; just set the exit code.
		os.Exit(1)
	}
}

// runAsCompilerShim handles the symlink-dispatch case: the binary was
// invoked under a compiler's own name, so the entire argument vector is
// the compiler invocation itself, with no buildcache-specific flags to
// parse.
func runAsCompilerShim(selfName string) {
	code, err := runInvocation(selfName, os.Args[1:])
	if err != nil {
		cmd.Fatal(err)
	}
	os.Exit(code)
}
