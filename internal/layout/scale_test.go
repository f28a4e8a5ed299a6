package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLinearScaleMapping tests forward and inverse mapping.
func TestLinearScaleMapping(t *testing.T) {
	s := NewLinearScale(0, 10, 0, 100)

	assert.Equal(t, 0.0, s.Scale(0))
	assert.Equal(t, 50.0, s.Scale(5))
	assert.Equal(t, 100.0, s.Scale(10))

	assert.Equal(t, 5.0, s.Invert(50))
	assert.Equal(t, 2.5, s.Invert(s.Scale(2.5)))
}

// TestLinearScaleDegenerateDomain tests that a zero-width domain maps to
// the range start instead of dividing by zero.
func TestLinearScaleDegenerateDomain(t *testing.T) {
	s := NewLinearScale(3, 3, 0, 100)
	assert.Equal(t, 0.0, s.Scale(3))
	assert.Equal(t, 3.0, s.Invert(40))
}

// TestNiceExpandsToRoundNumbers tests domain nicing against known cases.
func TestNiceExpandsToRoundNumbers(t *testing.T) {
	tests := []struct {
		d0, d1     float64
		want0, want1 float64
	}{
		{0.13, 9.87, 0, 10},
		{0, 10, 0, 10},       // already nice
		{0.02, 0.97, 0, 1},
		{-1.3, 6.1, -2, 7},
	}
	for _, test := range tests {
		n := NewLinearScale(test.d0, test.d1, 0, 100).Nice()
		assert.Equal(t, test.want0, n.DomainMin, "min for [%v,%v]", test.d0, test.d1)
		assert.Equal(t, test.want1, n.DomainMax, "max for [%v,%v]", test.d0, test.d1)
	}
}

// TestNiceNeverShrinks tests that nicing only expands the domain.
func TestNiceNeverShrinks(t *testing.T) {
	s := NewLinearScale(0.37, 12.9, 0, 100)
	n := s.Nice()
	assert.LessOrEqual(t, n.DomainMin, s.DomainMin)
	assert.GreaterOrEqual(t, n.DomainMax, s.DomainMax)
}
