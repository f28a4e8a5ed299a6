package testkit

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"saevis/domain/core"
	"saevis/domain/distribution"
	"saevis/domain/flowgraph"
	"saevis/domain/threshold"
	"saevis/ports"
)

// DemoProvider is a deterministic in-process data provider. It fabricates
// a population of scored features per filter selection and classifies
// them through the three-stage pipeline using the caller-supplied
// threshold configuration, so the returned flow graph always conserves
// flow and reflects exactly the thresholds it echoes back.
type DemoProvider struct {
	seed         int64
	featureCount int
}

// feature is one synthetic scored item.
type feature struct {
	splitScore float64
	semDist    float64
	scores     map[threshold.Metric]float64
}

// NewDemoProvider creates a provider seeded for reproducible output.
func NewDemoProvider(seed int64, featureCount int) *DemoProvider {
	return &DemoProvider{seed: seed, featureCount: featureCount}
}

// FilterOptions returns the demo filter values.
func (p *DemoProvider) FilterOptions(ctx context.Context) (ports.FilterOptions, error) {
	return ports.FilterOptions{
		SAEModels:  []string{"gemma-2b-res", "gemma-9b-res", "pythia-70m-mlp"},
		Explainers: []string{"llama-70b", "qwen-72b"},
		Scorers:    []string{"llama-70b", "gpt-4o-mini"},
	}, nil
}

// Distribution bins the selected population's values for one metric.
func (p *DemoProvider) Distribution(ctx context.Context, sel ports.FilterSelection, metric threshold.Metric, cfg threshold.Config, bins int) (distribution.Distribution, error) {
	features := p.features(sel)
	values := make([]float64, len(features))
	for i, f := range features {
		values[i] = f.value(metric)
	}
	return distribution.FromValues(metric, values, bins)
}

// FlowGraph classifies the selected population through the pipeline under
// the given thresholds.
func (p *DemoProvider) FlowGraph(ctx context.Context, sel ports.FilterSelection, cfg threshold.Config) (flowgraph.Graph, error) {
	features := p.features(sel)

	counts := make(map[core.NodeID]int)
	counts["root"] = len(features)

	for _, f := range features {
		branch := threshold.BranchFalse
		if f.splitScore >= threshold.Resolve(cfg, "split_true", threshold.MetricFeatureSplitting) {
			branch = threshold.BranchTrue
		}
		stage1 := core.NodeID("split_" + string(branch))
		counts[stage1]++

		level := threshold.DistanceLow
		if f.semDist >= threshold.Resolve(cfg, core.NodeID(stage1.String()+"_semdist_high"), threshold.MetricSemDistMean) {
			level = threshold.DistanceHigh
		}
		stage2 := core.NodeID(stage1.String() + "_semdist_" + string(level))
		counts[stage2]++

		cleared := 0
		for _, m := range threshold.ScoreMetrics() {
			if f.scores[m] >= threshold.Resolve(cfg, core.NodeID(stage2.String()+"_agree_high"), m) {
				cleared++
			}
		}
		band := threshold.AgreementMixed
		switch cleared {
		case len(threshold.ScoreMetrics()):
			band = threshold.AgreementHigh
		case 0:
			band = threshold.AgreementLow
		}
		counts[core.NodeID(stage2.String()+"_agree_"+string(band))]++
	}

	return buildGraph(counts, sel, cfg), nil
}

// buildGraph assembles nodes and links from per-node counts, omitting
// empty branches so the graph always validates.
func buildGraph(counts map[core.NodeID]int, sel ports.FilterSelection, cfg threshold.Config) flowgraph.Graph {
	g := flowgraph.Graph{
		AppliedFilters:    appliedFilters(sel),
		AppliedThresholds: cfg.Clone(),
	}

	addNode := func(id core.NodeID, name string, stage int, category threshold.Category) {
		if counts[id] > 0 {
			g.Nodes = append(g.Nodes, flowgraph.Node{
				ID:       id,
				Name:     name,
				Stage:    stage,
				Category: category,
				Value:    float64(counts[id]),
			})
		}
	}
	addLink := func(source, target core.NodeID) {
		if counts[source] > 0 && counts[target] > 0 {
			g.Links = append(g.Links, flowgraph.Link{
				Source: source,
				Target: target,
				Value:  float64(counts[target]),
			})
		}
	}

	addNode("root", "All features", 0, threshold.CategoryRoot)

	for _, b := range []threshold.Branch{threshold.BranchTrue, threshold.BranchFalse} {
		stage1 := core.NodeID("split_" + string(b))
		addNode(stage1, branchName(b), 1, threshold.CategoryBooleanSplit)
		addLink("root", stage1)

		for _, l := range []threshold.DistanceLevel{threshold.DistanceHigh, threshold.DistanceLow} {
			stage2 := core.NodeID(stage1.String() + "_semdist_" + string(l))
			addNode(stage2, levelName(l), 2, threshold.CategoryDistanceSplit)
			addLink(stage1, stage2)

			for _, a := range []threshold.AgreementBand{threshold.AgreementHigh, threshold.AgreementMixed, threshold.AgreementLow} {
				stage3 := core.NodeID(stage2.String() + "_agree_" + string(a))
				addNode(stage3, bandName(a), 3, threshold.CategoryAgreementSplit)
				addLink(stage2, stage3)
			}
		}
	}

	return g
}

func branchName(b threshold.Branch) string {
	if b == threshold.BranchTrue {
		return "Split features"
	}
	return "Unsplit features"
}

func levelName(l threshold.DistanceLevel) string {
	if l == threshold.DistanceHigh {
		return "High semantic distance"
	}
	return "Low semantic distance"
}

func bandName(a threshold.AgreementBand) string {
	switch a {
	case threshold.AgreementHigh:
		return "Scores agree high"
	case threshold.AgreementLow:
		return "Scores agree low"
	default:
		return "Scores mixed"
	}
}

func appliedFilters(sel ports.FilterSelection) map[string]string {
	filters := make(map[string]string)
	if sel.SAEModel != "" {
		filters["sae_model"] = sel.SAEModel
	}
	if sel.Explainer != "" {
		filters["explainer"] = sel.Explainer
	}
	if sel.Scorer != "" {
		filters["scorer"] = sel.Scorer
	}
	return filters
}

func (f feature) value(metric threshold.Metric) float64 {
	switch metric {
	case threshold.MetricFeatureSplitting:
		return f.splitScore
	case threshold.MetricSemDistMean:
		return f.semDist
	default:
		return f.scores[metric]
	}
}

// features fabricates the population for one filter selection. The
// generator is a pure function of (seed, selection): quantiles of fixed
// parametric distributions evaluated on a seeded uniform stream, so
// repeated fetches see identical data.
func (p *DemoProvider) features(sel ports.FilterSelection) []feature {
	rng := rand.New(rand.NewSource(p.seed ^ selectionSeed(sel)))

	splitDist := distuv.Normal{Mu: 0.45, Sigma: 0.18}
	semDist := distuv.LogNormal{Mu: math.Log(0.12), Sigma: 0.6}
	scoreDist := distuv.Normal{Mu: 0.55, Sigma: 0.2}

	out := make([]feature, p.featureCount)
	for i := range out {
		f := feature{
			splitScore: clamp01(splitDist.Quantile(uniform(rng))),
			semDist:    semDist.Quantile(uniform(rng)),
			scores:     make(map[threshold.Metric]float64, 3),
		}
		for _, m := range threshold.ScoreMetrics() {
			f.scores[m] = clamp01(scoreDist.Quantile(uniform(rng)))
		}
		out[i] = f
	}
	return out
}

// uniform draws from the open interval (0, 1) so quantile functions stay
// finite.
func uniform(rng *rand.Rand) float64 {
	return rng.Float64()*0.998 + 0.001
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func selectionSeed(sel ports.FilterSelection) int64 {
	h := fnv.New64a()
	h.Write([]byte(sel.SAEModel))
	h.Write([]byte{0})
	h.Write([]byte(sel.Explainer))
	h.Write([]byte{0})
	h.Write([]byte(sel.Scorer))
	return int64(h.Sum64())
}
