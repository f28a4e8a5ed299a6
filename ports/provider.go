package ports

import (
	"context"

	"saevis/domain/distribution"
	"saevis/domain/flowgraph"
	"saevis/domain/threshold"
)

// FilterOptions is the set of filter values the backend can serve data
// for.
type FilterOptions struct {
	SAEModels  []string `json:"sae_models"`
	Explainers []string `json:"explainers"`
	Scorers    []string `json:"scorers"`
}

// FilterSelection is the user's current filter choice. Empty fields mean
// "no filter on this dimension".
type FilterSelection struct {
	SAEModel  string `json:"sae_model,omitempty"`
	Explainer string `json:"explainer,omitempty"`
	Scorer    string `json:"scorer,omitempty"`
}

// Active reports whether at least one filter dimension is set. Threshold
// edits only trigger downstream refreshes while a filter is active.
func (s FilterSelection) Active() bool {
	return s.SAEModel != "" || s.Explainer != "" || s.Scorer != ""
}

// DataProvider is the external data-fetch interface. Given the current
// filter selection and the full threshold configuration it returns binned
// distributions and the classification flow graph. The engine treats both
// as opaque inputs to be validated and laid out.
type DataProvider interface {
	// FilterOptions returns the selectable filter values.
	FilterOptions(ctx context.Context) (FilterOptions, error)

	// Distribution returns the binned distribution of one metric under
	// the given filters, with summary statistics.
	Distribution(ctx context.Context, sel FilterSelection, metric threshold.Metric, cfg threshold.Config, bins int) (distribution.Distribution, error)

	// FlowGraph returns the classification flow under the given filters
	// and thresholds, echoing both back in the graph's metadata.
	FlowGraph(ctx context.Context, sel FilterSelection, cfg threshold.Config) (flowgraph.Graph, error)
}
