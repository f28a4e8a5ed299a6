package layout

import (
	"fmt"
)

// Multi-chart stacking constants
const (
	defaultTitleHeight  = 24.0 // label strip above each chart
	defaultChartSpacing = 16.0 // vertical gap between charts
)

// PositionedChart is one chart inside a stacked layout with its vertical
// offset from the top of the stack.
type PositionedChart struct {
	OffsetY float64         `json:"offset_y"`
	TitleY  float64         `json:"title_y"`
	Layout  HistogramLayout `json:"layout"`
}

// StackedLayout lays several single-metric charts top to bottom. Each
// chart keeps its own independent scales; metrics are not comparable on
// one axis.
type StackedLayout struct {
	Width       float64           `json:"width"`
	TotalHeight float64           `json:"total_height"`
	Charts      []PositionedChart `json:"charts"`
}

// BuildStacked stacks one histogram per spec with fixed title height and
// inter-chart spacing. Any invalid spec fails the whole stack: partial
// stacks would misplace every chart below the failure.
func BuildStacked(specs []HistogramSpec) (StackedLayout, []string) {
	if len(specs) == 0 {
		return StackedLayout{}, []string{"no metrics to stack"}
	}

	var issues []string
	for _, spec := range specs {
		for _, issue := range spec.Validate() {
			issues = append(issues, fmt.Sprintf("%s: %s", spec.Dist.Metric, issue))
		}
	}
	if len(issues) > 0 {
		return StackedLayout{}, issues
	}

	out := StackedLayout{Width: specs[0].Width}
	y := 0.0
	for i, spec := range specs {
		if i > 0 {
			y += defaultChartSpacing
		}
		chart, chartIssues := BuildHistogram(spec)
		if len(chartIssues) > 0 {
			// Validate above should have caught everything; treat this as
			// a stack-wide failure all the same.
			return StackedLayout{}, chartIssues
		}
		out.Charts = append(out.Charts, PositionedChart{
			OffsetY: y + defaultTitleHeight,
			TitleY:  y + defaultTitleHeight/2,
			Layout:  chart,
		})
		y += defaultTitleHeight + spec.Height
	}
	out.TotalHeight = y

	return out, nil
}
