package environment

import (
	"testing"
)

// TestFromMapRoundTrip tests that FromMap output survives a round trip
// through Parse.
func TestFromMapRoundTrip(t *testing.T) {
	// Set test parameters.
	input := map[string]string{
		"KEY":   "VALUE",
		"EMPTY": "",
		"HEY":   "THERE",
	}

	// Perform conversion to a slice and then back to a map so that we can
	// compare based on map contents.
	output, err := Parse(FromMap(input))
	if err != nil {
		t.Fatal("unable to parse formatted environment:", err)
	}

	// Validate results.
	if len(output) != len(input) {
		t.Fatal("output length does not match expected:", len(output), "!=", len(input))
	}
	for key, value := range output {
		if expectedValue, ok := input[key]; !ok {
			t.Errorf("output key \"%s\" not expected", key)
		} else if value != expectedValue {
			t.Error("output value does not match expected:", value, "!=", expectedValue)
		}
	}
}
