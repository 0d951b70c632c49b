package pipeline

import (
	"sort"
	"strings"

	"github.com/buildcache/buildcache/pkg/hash"
)

// canonicalizeArgs renders an ordered argument list as a single byte
// sequence for hashing. Argument order is preserved, since it's already
// deterministic for a given invocation.
func canonicalizeArgs(args []string) []byte {
	return []byte(strings.Join(args, "\x00"))
}

// canonicalizeEnv renders an environment map as a single byte sequence for
// hashing, sorting by key first so that map iteration order never affects
// the result.
func canonicalizeEnv(env map[string]string) []byte {
	keys := make([]string, 0, len(env))
	for key := range env {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, key := range keys {
		builder.WriteString(key)
		builder.WriteByte('=')
		builder.WriteString(env[key])
		builder.WriteByte(0)
	}
	return []byte(builder.String())
}

// computeDirectKey derives the direct-mode key: a digest over the program
// ID, the relevant arguments, the relevant environment subset, and the raw
// contents of every explicit source file (by path, sorted, so that both a
// renamed and an edited source produce a different key). Feeding file
// contents rather than paths alone is what lets a manifest restrict itself
// to implicit inputs: the sources themselves are already pinned here.
func computeDirectKey(algorithm hash.Algorithm, programID string, relevantArgs []string, relevantEnv map[string]string, inputs []string) (string, error) {
	digester, err := hash.NewDigester(algorithm)
	if err != nil {
		return "", err
	}

	digester.Update([]byte(programID))
	digester.Update([]byte{0})
	digester.Update(canonicalizeArgs(relevantArgs))
	digester.Update([]byte{0})
	digester.Update(canonicalizeEnv(relevantEnv))

	sorted := append([]string(nil), inputs...)
	sort.Strings(sorted)
	for _, path := range sorted {
		digester.Update([]byte{0})
		digester.Update([]byte(path))
		digester.Update([]byte{0})
		if err := digester.UpdateFromFile(path); err != nil {
			return "", err
		}
	}

	return digester.FinalizeToHex(), nil
}
