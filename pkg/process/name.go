package process

// ExecutableName computes the name for an executable for a given base name on
// a specified operating system. It's used both when searching PATH for a real
// compiler and when deciding whether the running binary was invoked under its
// own name or as a compiler-named shim.
func ExecutableName(base, goos string) string {
	// If we're on Windows, append ".exe".
	if goos == "windows" {
		return base + ".exe"
	}

	// Otherwise return the base name unmodified.
	return base
}
