package layout

import (
	"math"
)

// LinearScale maps a data domain onto a pixel range linearly.
type LinearScale struct {
	DomainMin float64 `json:"domain_min"`
	DomainMax float64 `json:"domain_max"`
	RangeMin  float64 `json:"range_min"`
	RangeMax  float64 `json:"range_max"`
}

// NewLinearScale creates a scale from domain [d0, d1] to range [r0, r1].
func NewLinearScale(d0, d1, r0, r1 float64) LinearScale {
	return LinearScale{DomainMin: d0, DomainMax: d1, RangeMin: r0, RangeMax: r1}
}

// Scale converts a domain value to a pixel coordinate.
func (s LinearScale) Scale(v float64) float64 {
	span := s.DomainMax - s.DomainMin
	if span == 0 {
		return s.RangeMin
	}
	t := (v - s.DomainMin) / span
	return s.RangeMin + t*(s.RangeMax-s.RangeMin)
}

// Invert converts a pixel coordinate back to a domain value.
func (s LinearScale) Invert(px float64) float64 {
	span := s.RangeMax - s.RangeMin
	if span == 0 {
		return s.DomainMin
	}
	t := (px - s.RangeMin) / span
	return s.DomainMin + t*(s.DomainMax-s.DomainMin)
}

// Nice expands the domain outward to round-number boundaries, using the
// usual 1/2/5 step progression, so axis endpoints land on values a reader
// can anchor on.
func (s LinearScale) Nice() LinearScale {
	span := s.DomainMax - s.DomainMin
	if span <= 0 {
		return s
	}
	step := niceStep(span, 10)
	out := s
	out.DomainMin = math.Floor(s.DomainMin/step) * step
	out.DomainMax = math.Ceil(s.DomainMax/step) * step
	return out
}

// niceStep picks a 1/2/5-series step that divides span into roughly count
// intervals.
func niceStep(span float64, count int) float64 {
	raw := span / float64(count)
	magnitude := math.Pow(10, math.Floor(math.Log10(raw)))
	ratio := raw / magnitude
	switch {
	case ratio < 1.5:
		return magnitude
	case ratio < 3:
		return 2 * magnitude
	case ratio < 7:
		return 5 * magnitude
	default:
		return 10 * magnitude
	}
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
