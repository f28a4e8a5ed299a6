package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseNodeID tests node ID parsing
func TestParseNodeID(t *testing.T) {
	tests := []struct {
		input    string
		expected NodeID
		hasError bool
	}{
		{"split_true", NodeID("split_true"), false},
		{"root", NodeID("root"), false},
		{"", "", true},
		{"   ", "", true},
	}

	for _, test := range tests {
		result, err := ParseNodeID(test.input)
		if test.hasError && err == nil {
			t.Errorf("Expected error for input '%s', but got none", test.input)
		}
		if !test.hasError && err != nil {
			t.Errorf("Unexpected error for input '%s': %v", test.input, err)
		}
		if result != test.expected {
			t.Errorf("Expected %s, got %s", test.expected, result)
		}
	}
}

// TestComputeLayoutKeyStable tests that layout keys are order-independent
// over threshold maps and sensitive to every input.
func TestComputeLayoutKeyStable(t *testing.T) {
	digest := NewHash([]byte("distribution"))
	thresholds := map[string]float64{"semdist_mean": 0.1, "score_fuzz": 0.5}

	a := ComputeLayoutKey("histogram", []Hash{digest}, thresholds, 300, 150)
	b := ComputeLayoutKey("histogram", []Hash{digest}, map[string]float64{"score_fuzz": 0.5, "semdist_mean": 0.1}, 300, 150)
	if !Hash(a).Equals(Hash(b)) {
		t.Error("Expected identical keys for identical inputs")
	}

	c := ComputeLayoutKey("histogram", []Hash{digest}, thresholds, 300, 151)
	if Hash(a).Equals(Hash(c)) {
		t.Error("Expected different keys when height changes")
	}

	d := ComputeLayoutKey("sankey", []Hash{digest}, thresholds, 300, 150)
	if Hash(a).Equals(Hash(d)) {
		t.Error("Expected different keys for different layout kinds")
	}
}
