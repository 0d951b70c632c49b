package remote

import (
	"bytes"
	"testing"

	"github.com/buildcache/buildcache/pkg/store"
)

// TestEncodeDecodeEntryRoundTrip tests that EncodeEntry/DecodeEntry
// round-trip an entry's contents exactly.
func TestEncodeDecodeEntryRoundTrip(t *testing.T) {
	entry := &store.Entry{
		Artifacts: map[string][]byte{
			"object":   []byte("object contents"),
			"coverage": []byte("coverage contents"),
		},
		Stdout:     []byte("compiling...\n"),
		Stderr:     []byte(""),
		ReturnCode: 0,
	}

	blob, err := EncodeEntry(entry)
	if err != nil {
		t.Fatal("unable to encode entry:", err)
	}

	decoded, err := DecodeEntry(blob)
	if err != nil {
		t.Fatal("unable to decode entry:", err)
	}

	if len(decoded.Artifacts) != len(entry.Artifacts) {
		t.Fatal("decoded artifact count does not match")
	}
	for name, data := range entry.Artifacts {
		if !bytes.Equal(decoded.Artifacts[name], data) {
			t.Errorf("decoded artifact %s does not match", name)
		}
	}
	if !bytes.Equal(decoded.Stdout, entry.Stdout) {
		t.Error("decoded stdout does not match")
	}
	if !bytes.Equal(decoded.Stderr, entry.Stderr) {
		t.Error("decoded stderr does not match")
	}
	if decoded.ReturnCode != entry.ReturnCode {
		t.Error("decoded return code does not match")
	}
}

// TestEncodeEntryDeterministic tests that encoding the same entry twice
// produces byte-identical blobs.
func TestEncodeEntryDeterministic(t *testing.T) {
	entry := &store.Entry{
		Artifacts: map[string][]byte{"b": []byte("2"), "a": []byte("1")},
	}

	first, err := EncodeEntry(entry)
	if err != nil {
		t.Fatal("unable to encode entry:", err)
	}
	second, err := EncodeEntry(entry)
	if err != nil {
		t.Fatal("unable to encode entry:", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("encoding the same entry twice produced different blobs")
	}
}

// TestDecodeEntryRejectsBadMagic tests that DecodeEntry rejects a blob
// without the expected magic prefix.
func TestDecodeEntryRejectsBadMagic(t *testing.T) {
	if _, err := DecodeEntry([]byte("XXXX")); err == nil {
		t.Fatal("decode of blob with bad magic succeeded unexpectedly")
	}
}
