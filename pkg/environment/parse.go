package environment

import (
	"fmt"
	"strings"
)

// Parse converts an environment variable specification from a slice of
// "KEY=value" strings (as returned by os.Environ or passed to exec.Cmd.Env)
// into a map with equivalent contents. Entries with no "=" at all are
// malformed and cause an error. Entries with an empty key (e.g. "=value",
// which some platforms and shells can produce) are silently ignored, since
// they can't be round-tripped into a later exec.Cmd.Env entry anyway. If a
// key appears more than once, the last occurrence wins.
func Parse(environment []string) (map[string]string, error) {
	result := make(map[string]string, len(environment))

	for _, specification := range environment {
		index := strings.IndexByte(specification, '=')
		if index < 0 {
			return nil, fmt.Errorf("invalid environment variable specification: %q", specification)
		} else if index == 0 {
			continue
		}
		result[specification[:index]] = specification[index+1:]
	}

	return result, nil
}
