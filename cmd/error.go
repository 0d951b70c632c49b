package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints an error message to standard error. It intentionally avoids
// color: error lines are the one part of buildcache's output that build
// systems may scrape, and ANSI escapes would corrupt that.
func Error(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// Fatal prints an error message to standard error and then terminates the
// process with an error exit code. It's used for failures that occur before
// the wrapped tool has been started; once the tool is running, its own exit
// code always wins.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}
