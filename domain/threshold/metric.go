package threshold

// Metric identifies a scalar quantity a threshold can be defined over.
// The set is closed: one boolean-split metric, one distance metric, and
// three agreement-score metrics.
type Metric string

const (
	// MetricFeatureSplitting drives the stage-1 boolean split.
	MetricFeatureSplitting Metric = "feature_splitting"
	// MetricSemDistMean drives the stage-2 semantic-distance split.
	MetricSemDistMean Metric = "semdist_mean"
	// Agreement-score metrics drive the stage-3 split together.
	MetricScoreFuzz       Metric = "score_fuzz"
	MetricScoreSimulation Metric = "score_simulation"
	MetricScoreDetection  Metric = "score_detection"
)

// AllMetrics returns every metric in a fixed order.
func AllMetrics() []Metric {
	return []Metric{
		MetricFeatureSplitting,
		MetricSemDistMean,
		MetricScoreFuzz,
		MetricScoreSimulation,
		MetricScoreDetection,
	}
}

// ScoreMetrics returns the agreement-score family in a fixed order.
func ScoreMetrics() []Metric {
	return []Metric{MetricScoreFuzz, MetricScoreSimulation, MetricScoreDetection}
}

// IsScore reports whether the metric belongs to the agreement-score family.
func (m Metric) IsScore() bool {
	switch m {
	case MetricScoreFuzz, MetricScoreSimulation, MetricScoreDetection:
		return true
	}
	return false
}

// Valid reports whether the metric is a member of the closed set.
func (m Metric) Valid() bool {
	switch m {
	case MetricFeatureSplitting, MetricSemDistMean,
		MetricScoreFuzz, MetricScoreSimulation, MetricScoreDetection:
		return true
	}
	return false
}

// String returns the string representation
func (m Metric) String() string {
	return string(m)
}

// ParseMetric parses a string into a Metric.
func ParseMetric(s string) (Metric, bool) {
	m := Metric(s)
	return m, m.Valid()
}
