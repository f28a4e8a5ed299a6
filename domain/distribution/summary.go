package distribution

import (
	"github.com/montanaflynn/stats"

	"saevis/domain/threshold"
	"saevis/internal/errors"
)

// ComputeSummary calculates summary statistics for raw metric values.
func ComputeSummary(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, errors.InvalidInput("cannot summarize an empty value set")
	}

	min, err := stats.Min(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "min computation failed")
	}
	max, err := stats.Max(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "max computation failed")
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "mean computation failed")
	}
	median, err := stats.Median(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "median computation failed")
	}
	stdDev, err := stats.StandardDeviation(values)
	if err != nil {
		return Summary{}, errors.Wrap(err, "standard deviation computation failed")
	}

	return Summary{
		Min:    min,
		Max:    max,
		Mean:   mean,
		Median: median,
		StdDev: stdDev,
		Count:  len(values),
	}, nil
}

// FromValues bins raw values into a distribution with equal-width bins
// spanning [min, max]. The last bin is closed on both ends so the maximum
// value is counted.
func FromValues(metric threshold.Metric, values []float64, bins int) (Distribution, error) {
	if bins < 1 {
		return Distribution{}, errors.InvalidInput("bin count must be at least 1")
	}

	summary, err := ComputeSummary(values)
	if err != nil {
		return Distribution{}, err
	}

	span := summary.Max - summary.Min
	if span <= 0 {
		// Degenerate distribution: widen artificially so the histogram
		// engine still has a non-zero domain to lay out.
		span = 1
	}

	edges := make([]float64, bins+1)
	width := span / float64(bins)
	for i := range edges {
		edges[i] = summary.Min + float64(i)*width
	}

	counts := make([]int, bins)
	for _, v := range values {
		idx := int((v - summary.Min) / width)
		if idx >= bins {
			idx = bins - 1
		}
		if idx < 0 {
			idx = 0
		}
		counts[idx]++
	}

	return Distribution{
		Metric:  metric,
		Edges:   edges,
		Counts:  counts,
		Summary: summary,
	}, nil
}
