package environment

// FromMap converts a map of environment variables into a slice of "KEY=value"
// strings.
func FromMap(environment map[string]string) []string {
	// Allocate result storage.
	result := make([]string, 0, len(environment))

	// Convert entries.
	for key, value := range environment {
		result = append(result, key+"="+value)
	}

	// Done.
	return result
}
