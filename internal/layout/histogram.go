package layout

import (
	"fmt"

	"saevis/domain/distribution"
	"saevis/domain/threshold"
)

// Histogram rendering constants
const (
	minChartWidth  = 120.0 // usability floor; anything narrower is unreadable
	minChartHeight = 80.0
	trackHeight    = 6.0 // slider track under the plot area
	trackGap       = 6.0 // gap between plot area and track
)

// Margins reserve space around the plot area for axis labels.
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// DefaultMargins returns the standard chart margins.
func DefaultMargins() Margins {
	return Margins{Top: 8, Right: 12, Bottom: 28, Left: 40}
}

// BinRect is one draw-ready histogram bar.
type BinRect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`

	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`

	// BelowThreshold marks bars whose full extent sits left of the
	// threshold line.
	BelowThreshold bool `json:"below_threshold"`
}

// SliderTrack is the draggable threshold control's geometry: the filled
// portion covers values below the threshold.
type SliderTrack struct {
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	FilledWidth float64 `json:"filled_width"`
}

// HistogramLayout is the derived, ephemeral geometry of one metric chart.
// It is recomputed from scratch on every relevant input change and never
// mutated in place.
type HistogramLayout struct {
	Metric  threshold.Metric `json:"metric"`
	Width   float64          `json:"width"`
	Height  float64          `json:"height"`
	Margins Margins          `json:"margins"`

	Bins   []BinRect   `json:"bins"`
	XScale LinearScale `json:"x_scale"`
	YScale LinearScale `json:"y_scale"`

	ThresholdX float64     `json:"threshold_x"`
	Threshold  float64     `json:"threshold"`
	Track      SliderTrack `json:"track"`
}

// HistogramSpec is the full input of one histogram computation.
type HistogramSpec struct {
	Dist      distribution.Distribution
	Width     float64
	Height    float64
	Threshold float64
	Margins   Margins
}

// Validate checks the spec for configuration errors, including the
// usability floor on dimensions. Issues are strings, never errors.
func (spec HistogramSpec) Validate() []string {
	issues := spec.Dist.Validate()

	if spec.Width <= 0 || spec.Height <= 0 {
		issues = append(issues, fmt.Sprintf(
			"chart dimensions %vx%v must be positive", spec.Width, spec.Height))
	} else if spec.Width < minChartWidth || spec.Height < minChartHeight {
		issues = append(issues, fmt.Sprintf(
			"chart dimensions %vx%v are below the usable minimum %vx%v",
			spec.Width, spec.Height, minChartWidth, minChartHeight))
	}

	return issues
}

// BuildHistogram converts a validated distribution plus an effective
// threshold into draw-ready geometry. On validation failure it returns the
// issue list and an empty layout; the caller must suppress rendering until
// the list is empty.
func BuildHistogram(spec HistogramSpec) (HistogramLayout, []string) {
	if issues := spec.Validate(); len(issues) > 0 {
		return HistogramLayout{}, issues
	}

	m := spec.Margins
	if m == (Margins{}) {
		m = DefaultMargins()
	}

	plotLeft := m.Left
	plotRight := spec.Width - m.Right
	plotTop := m.Top
	plotBottom := spec.Height - m.Bottom - trackHeight - trackGap
	plotHeight := plotBottom - plotTop

	edges := spec.Dist.Edges
	xScale := NewLinearScale(edges[0], edges[len(edges)-1], plotLeft, plotRight).Nice()
	yScale := NewLinearScale(0, float64(spec.Dist.MaxCount()), 0, plotHeight)

	thresholdX := clamp(xScale.Scale(spec.Threshold), plotLeft, plotRight)

	bins := make([]BinRect, len(spec.Dist.Counts))
	for i, count := range spec.Dist.Counts {
		x0 := xScale.Scale(edges[i])
		x1 := xScale.Scale(edges[i+1])
		h := yScale.Scale(float64(count))
		bins[i] = BinRect{
			X:              x0,
			Y:              plotBottom - h,
			W:              x1 - x0,
			H:              h,
			Lower:          edges[i],
			Upper:          edges[i+1],
			Count:          count,
			BelowThreshold: edges[i+1] <= spec.Threshold,
		}
	}

	track := SliderTrack{
		X:           plotLeft,
		Y:           plotBottom + trackGap,
		Width:       plotRight - plotLeft,
		Height:      trackHeight,
		FilledWidth: thresholdX - plotLeft,
	}

	return HistogramLayout{
		Metric:     spec.Dist.Metric,
		Width:      spec.Width,
		Height:     spec.Height,
		Margins:    m,
		Bins:       bins,
		XScale:     xScale,
		YScale:     yScale,
		ThresholdX: thresholdX,
		Threshold:  spec.Threshold,
		Track:      track,
	}, nil
}
