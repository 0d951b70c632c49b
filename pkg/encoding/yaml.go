package encoding

import (
	"bytes"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadAndUnmarshalYAML loads data from the specified path and decodes it into
// the specified structure. Unlike the strict decoding historically used for
// session configuration files, this uses lenient decoding: an unrecognized
// key in a forward-compatible configuration file must never prevent an older
// binary from starting, so callers that care about unknown keys (see
// pkg/config) perform their own strict pass and log a warning instead of
// failing.
func LoadAndUnmarshalYAML(path string, value interface{}) error {
	return LoadAndUnmarshal(path, func(data []byte) error {
		return yaml.Unmarshal(data, value)
	})
}

// WarnOnUnknownYAMLFields re-decodes the file at path in strict mode (i.e.
// requiring every key in the document to correspond to a field on value) and
// returns a non-nil error describing the first unrecognized key if one is
// found. It is intended to be called after LoadAndUnmarshalYAML has already
// succeeded, purely to produce a warning: callers should log the error, not
// propagate it as a load failure.
func WarnOnUnknownYAMLFields(path string, value interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(value)
}
