package environment

import (
	"os"
)

// Current is a snapshot of the current process environment, parsed via
// Parse at package initialization time. It's used as the baseline for
// wrapper adapters computing a relevant-environment digest, since re-parsing
// os.Environ() on every invocation would be wasteful.
var Current map[string]string

func init() {
	// os.Environ() is always well-formed from Parse's perspective (every
	// entry has a key, even if some platforms surface empty-named
	// specifications, which Parse silently ignores), so this can't fail.
	current, err := Parse(os.Environ())
	if err != nil {
		panic("failed to parse current environment: " + err.Error())
	}
	Current = current
}

// CopyCurrent returns a copy of Current that the caller can freely mutate.
func CopyCurrent() map[string]string {
	result := make(map[string]string, len(Current))
	for k, v := range Current {
		result[k] = v
	}
	return result
}
