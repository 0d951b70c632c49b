package utility

import (
	"testing"
)

// TestCopyStringSlice tests CopyStringSlice.
func TestCopyStringSlice(t *testing.T) {
	// Set up test cases.
	testCases := [][]string{
		nil,
		{},
		{"-Wall"},
		{"-Wall", "-O2"},
	}

	// Process test cases.
	for _, value := range testCases {
		if result := CopyStringSlice(value); value == nil && result != nil {
			t.Error("nilness not preserved by copy")
		} else if !StringSlicesEqual(result, value) {
			t.Error("copy result not equal to original")
		}
	}
}

// TestCopyStringMap tests CopyStringMap.
func TestCopyStringMap(t *testing.T) {
	// Set up test cases.
	testCases := []map[string]string{
		nil,
		{},
		{"CPATH": "/usr/include"},
		{"CPATH": "/usr/include", "LANG": "C"},
	}

	// Process test cases.
	for _, value := range testCases {
		if result := CopyStringMap(value); value == nil && result != nil {
			t.Error("nilness not preserved by copy")
		} else if !StringMapsEqual(result, value) {
			t.Error("copy result not equal to original")
		}
	}
}
