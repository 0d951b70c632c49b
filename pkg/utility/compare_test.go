package utility

import (
	"testing"
)

// TestStringSlicesEqual tests StringSlicesEqual.
func TestStringSlicesEqual(t *testing.T) {
	// Set up test cases.
	testCases := []struct {
		first    []string
		second   []string
		expected bool
	}{
		{nil, nil, true},
		{[]string{}, nil, true},
		{nil, []string{}, true},
		{[]string{}, []string{}, true},
		{[]string{"-Wall"}, nil, false},
		{nil, []string{"-O2"}, false},
		{[]string{"-Wall"}, []string{}, false},
		{[]string{}, []string{"-O2"}, false},
		{[]string{"-Wall"}, []string{"-O2"}, false},
		{[]string{"-Wall"}, []string{"-Wall", "-O2"}, false},
		{[]string{"-Wall", "-O2"}, []string{"-Wall"}, false},
		{[]string{"-Wall"}, []string{"-Wall"}, true},
		{[]string{"-Wall", "-O2"}, []string{"-Wall", "-O2"}, true},
		{[]string{"-Wall", "-O2"}, []string{"-O2", "-Wall"}, false},
	}

	// Process test cases.
	for _, testCase := range testCases {
		if equal := StringSlicesEqual(testCase.first, testCase.second); equal != testCase.expected {
			t.Errorf("unexpected comparison result: %v == %v? %t (expected %t)",
				testCase.first, testCase.second,
				equal, testCase.expected,
			)
		}
	}
}

// TestStringMapsEqual tests StringMapsEqual.
func TestStringMapsEqual(t *testing.T) {
	// Set up test cases.
	testCases := []struct {
		first    map[string]string
		second   map[string]string
		expected bool
	}{
		{nil, nil, true},
		{map[string]string{}, nil, true},
		{nil, map[string]string{}, true},
		{map[string]string{}, map[string]string{}, true},
		{map[string]string{"CPATH": "/usr/include"}, nil, false},
		{nil, map[string]string{"LANG": "C"}, false},
		{map[string]string{"CPATH": "/usr/include"}, map[string]string{}, false},
		{map[string]string{}, map[string]string{"LANG": "C"}, false},
		{map[string]string{"CPATH": "/usr/include"}, map[string]string{"LANG": "C"}, false},
		{map[string]string{"CPATH": "/usr/include"}, map[string]string{"CPATH": "/usr/include", "LANG": "C"}, false},
		{map[string]string{"CPATH": "/usr/include", "LANG": "C"}, map[string]string{"CPATH": "/usr/include"}, false},
		{map[string]string{"CPATH": "/usr/include"}, map[string]string{"CPATH": "/usr/include"}, true},
		{map[string]string{"CPATH": "/usr/include", "LANG": "C"}, map[string]string{"CPATH": "/usr/include", "LANG": "C"}, true},
	}

	// Process test cases.
	for _, testCase := range testCases {
		if equal := StringMapsEqual(testCase.first, testCase.second); equal != testCase.expected {
			t.Errorf("unexpected comparison result: %v == %v? %t (expected %t)",
				testCase.first, testCase.second,
				equal, testCase.expected,
			)
		}
	}
}
