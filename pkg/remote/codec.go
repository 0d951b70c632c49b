package remote

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/buildcache/buildcache/pkg/store"
)

// entryMagic is the magic prefix identifying a framed entry blob.
var entryMagic = [4]byte{'B', 'C', 'E', '1'}

// EncodeEntry renders an entry using the framed blob format:
// magic, artifact count, then per-artifact name/size/bytes, followed by
// stdout/stderr/return-code, all integers little-endian. Artifacts are
// written in a stable (sorted) order so that encoding the same entry twice
// always yields byte-identical output.
func EncodeEntry(entry *store.Entry) ([]byte, error) {
	var buffer bytes.Buffer
	buffer.Write(entryMagic[:])

	names := make([]string, 0, len(entry.Artifacts))
	for name := range entry.Artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	if err := binary.Write(&buffer, binary.LittleEndian, uint32(len(names))); err != nil {
		return nil, fmt.Errorf("unable to write artifact count: %w", err)
	}
	for _, name := range names {
		data := entry.Artifacts[name]
		if err := binary.Write(&buffer, binary.LittleEndian, uint32(len(name))); err != nil {
			return nil, fmt.Errorf("unable to write artifact name length: %w", err)
		}
		buffer.WriteString(name)
		if err := binary.Write(&buffer, binary.LittleEndian, uint64(len(data))); err != nil {
			return nil, fmt.Errorf("unable to write artifact size: %w", err)
		}
		buffer.Write(data)
	}

	if err := binary.Write(&buffer, binary.LittleEndian, uint32(len(entry.Stdout))); err != nil {
		return nil, fmt.Errorf("unable to write stdout length: %w", err)
	}
	buffer.Write(entry.Stdout)
	if err := binary.Write(&buffer, binary.LittleEndian, uint32(len(entry.Stderr))); err != nil {
		return nil, fmt.Errorf("unable to write stderr length: %w", err)
	}
	buffer.Write(entry.Stderr)
	if err := binary.Write(&buffer, binary.LittleEndian, int32(entry.ReturnCode)); err != nil {
		return nil, fmt.Errorf("unable to write return code: %w", err)
	}

	return buffer.Bytes(), nil
}

// DecodeEntry parses a framed entry blob produced by EncodeEntry.
func DecodeEntry(blob []byte) (*store.Entry, error) {
	reader := bytes.NewReader(blob)

	var magic [4]byte
	if _, err := io.ReadFull(reader, magic[:]); err != nil {
		return nil, fmt.Errorf("unable to read magic: %w", err)
	}
	if magic != entryMagic {
		return nil, fmt.Errorf("invalid entry blob magic")
	}

	var artifactCount uint32
	if err := binary.Read(reader, binary.LittleEndian, &artifactCount); err != nil {
		return nil, fmt.Errorf("unable to read artifact count: %w", err)
	}

	entry := &store.Entry{Artifacts: make(map[string][]byte, artifactCount)}
	for i := uint32(0); i < artifactCount; i++ {
		var nameLength uint32
		if err := binary.Read(reader, binary.LittleEndian, &nameLength); err != nil {
			return nil, fmt.Errorf("unable to read artifact name length: %w", err)
		}
		nameBytes := make([]byte, nameLength)
		if _, err := io.ReadFull(reader, nameBytes); err != nil {
			return nil, fmt.Errorf("unable to read artifact name: %w", err)
		}

		var size uint64
		if err := binary.Read(reader, binary.LittleEndian, &size); err != nil {
			return nil, fmt.Errorf("unable to read artifact size: %w", err)
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(reader, data); err != nil {
			return nil, fmt.Errorf("unable to read artifact contents: %w", err)
		}

		entry.Artifacts[string(nameBytes)] = data
	}

	var stdoutLength uint32
	if err := binary.Read(reader, binary.LittleEndian, &stdoutLength); err != nil {
		return nil, fmt.Errorf("unable to read stdout length: %w", err)
	}
	stdout := make([]byte, stdoutLength)
	if _, err := io.ReadFull(reader, stdout); err != nil {
		return nil, fmt.Errorf("unable to read stdout: %w", err)
	}
	entry.Stdout = stdout

	var stderrLength uint32
	if err := binary.Read(reader, binary.LittleEndian, &stderrLength); err != nil {
		return nil, fmt.Errorf("unable to read stderr length: %w", err)
	}
	stderr := make([]byte, stderrLength)
	if _, err := io.ReadFull(reader, stderr); err != nil {
		return nil, fmt.Errorf("unable to read stderr: %w", err)
	}
	entry.Stderr = stderr

	var returnCode int32
	if err := binary.Read(reader, binary.LittleEndian, &returnCode); err != nil {
		return nil, fmt.Errorf("unable to read return code: %w", err)
	}
	entry.ReturnCode = int(returnCode)

	return entry, nil
}
