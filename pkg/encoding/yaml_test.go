package encoding

import (
	"os"
	"testing"
)

// testMessageYAML is a test structure to use for encoding tests using YAML.
type testMessageYAML struct {
	Store struct {
		Directory string `yaml:"directory"`
		MaxSize   uint   `yaml:"maxSize"`
	} `yaml:"store"`
}

const (
	// testMessageYAMLString is the YAML-encoded form of the YAML test data.
	testMessageYAMLString = `
store:
  directory: "/var/cache/build"
  maxSize: 56
`
	// testMessageYAMLDirectory is the YAML test directory.
	testMessageYAMLDirectory = "/var/cache/build"
	// testMessageYAMLMaxSize is the YAML test size.
	testMessageYAMLMaxSize = 56
)

// TestLoadAndUnmarshalYAML tests that loading and unmarshaling YAML data
// succeeds.
func TestLoadAndUnmarshalYAML(t *testing.T) {
	// Write the test YAML to a temporary file and defer its cleanup.
	file, err := os.CreateTemp("", "buildcache_encoding")
	if err != nil {
		t.Fatal("unable to create temporary file:", err)
	} else if _, err = file.Write([]byte(testMessageYAMLString)); err != nil {
		t.Fatal("unable to write data to temporary file:", err)
	} else if err = file.Close(); err != nil {
		t.Fatal("unable to close temporary file:", err)
	}
	defer os.Remove(file.Name())

	// Attempt to load and unmarshal.
	value := &testMessageYAML{}
	if err := LoadAndUnmarshalYAML(file.Name(), value); err != nil {
		t.Fatal("loadAndUnmarshal failed:", err)
	}

	// Verify test values.
	if value.Store.Directory != testMessageYAMLDirectory {
		t.Error("test message directory mismatch:", value.Store.Directory, "!=", testMessageYAMLDirectory)
	}
	if value.Store.MaxSize != testMessageYAMLMaxSize {
		t.Error("test message size mismatch:", value.Store.MaxSize, "!=", testMessageYAMLMaxSize)
	}
}
