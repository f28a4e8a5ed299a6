package distribution

import (
	"fmt"
	"strings"

	"saevis/domain/core"
	"saevis/domain/threshold"
)

// Summary holds the summary statistics of one metric's values.
type Summary struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Count  int     `json:"count"`
}

// Distribution is a binned distribution of one metric, as returned by the
// data provider. Edges has one more element than Counts; bin i covers
// [Edges[i], Edges[i+1]).
type Distribution struct {
	Metric  threshold.Metric `json:"metric"`
	Edges   []float64        `json:"edges"`
	Counts  []int            `json:"counts"`
	Summary Summary          `json:"summary"`
}

// Total returns the total item count across all bins.
func (d Distribution) Total() int {
	total := 0
	for _, c := range d.Counts {
		total += c
	}
	return total
}

// MaxCount returns the largest single-bin count.
func (d Distribution) MaxCount() int {
	max := 0
	for _, c := range d.Counts {
		if c > max {
			max = c
		}
	}
	return max
}

// Digest fingerprints the distribution's content for layout cache keys.
func (d Distribution) Digest() core.Hash {
	var b strings.Builder
	b.WriteString(d.Metric.String())
	for _, e := range d.Edges {
		fmt.Fprintf(&b, "|%v", e)
	}
	for _, c := range d.Counts {
		fmt.Fprintf(&b, "|%d", c)
	}
	fmt.Fprintf(&b, "|%v|%v", d.Summary.Min, d.Summary.Max)
	return core.NewHash([]byte(b.String()))
}
