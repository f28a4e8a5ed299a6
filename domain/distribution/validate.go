package distribution

import (
	"fmt"
)

// Validate checks the distribution for configuration errors. Problems are
// returned as human-readable strings, never raised: the caller gates
// rendering on an empty list.
func (d Distribution) Validate() []string {
	var issues []string

	if !d.Metric.Valid() {
		issues = append(issues, fmt.Sprintf("unknown metric %q", d.Metric))
	}

	if len(d.Counts) == 0 {
		issues = append(issues, "distribution has no bins")
		return issues
	}

	if len(d.Edges) != len(d.Counts)+1 {
		issues = append(issues, fmt.Sprintf(
			"bin count %d does not match edge count %d (want edges = bins + 1)",
			len(d.Counts), len(d.Edges)))
	}

	for i := 1; i < len(d.Edges); i++ {
		if d.Edges[i] <= d.Edges[i-1] {
			issues = append(issues, fmt.Sprintf(
				"bin edges are not strictly increasing at index %d", i))
			break
		}
	}

	for i, c := range d.Counts {
		if c < 0 {
			issues = append(issues, fmt.Sprintf("bin %d has negative count %d", i, c))
			break
		}
	}

	if d.Summary.Min >= d.Summary.Max {
		issues = append(issues, fmt.Sprintf(
			"degenerate statistics: min %v is not below max %v", d.Summary.Min, d.Summary.Max))
	}

	return issues
}
