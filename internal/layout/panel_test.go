package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func contained(p Placement, size Size, viewport Rect, margin float64) bool {
	return p.X >= viewport.X+margin &&
		p.Y >= viewport.Y+margin &&
		p.X+size.Width <= viewport.X+viewport.Width-margin &&
		p.Y+size.Height <= viewport.Y+viewport.Height-margin
}

// TestPlacePanelPrefersAbove tests the placement preference order.
func TestPlacePanelPrefersAbove(t *testing.T) {
	viewport := Rect{X: 0, Y: 0, Width: 1200, Height: 800}
	size := Size{Width: 200, Height: 150}

	p := PlacePanel(Point{X: 600, Y: 400}, size, viewport, 12)
	assert.Equal(t, "above", p.Anchor)
	assert.False(t, p.Clamped)
	assert.True(t, contained(p, size, viewport, 12))

	// Too close to the top: falls through to below.
	p = PlacePanel(Point{X: 600, Y: 100}, size, viewport, 12)
	assert.Equal(t, "below", p.Anchor)
	assert.True(t, contained(p, size, viewport, 12))

	// Top-right corner: above and below overflow vertically or fit, left
	// fits before right is tried.
	p = PlacePanel(Point{X: 1150, Y: 100}, size, viewport, 12)
	assert.Equal(t, "left", p.Anchor)
	assert.True(t, contained(p, size, viewport, 12))
}

// TestPlacePanelContainment tests the containment property over a sweep
// of anchor points: any panel smaller than the viewport stays fully
// inside viewport minus margin.
func TestPlacePanelContainment(t *testing.T) {
	viewport := Rect{X: 0, Y: 0, Width: 1000, Height: 700}
	size := Size{Width: 320, Height: 240}
	margin := 16.0

	for x := -50.0; x <= 1050; x += 110 {
		for y := -50.0; y <= 750; y += 80 {
			p := PlacePanel(Point{X: x, Y: y}, size, viewport, margin)
			assert.True(t, contained(p, size, viewport, margin),
				"anchor (%v,%v) placed at (%v,%v)", x, y, p.X, p.Y)
		}
	}
}

// TestPlacePanelClampsWhenNothingFits tests the clamping fallback.
func TestPlacePanelClampsWhenNothingFits(t *testing.T) {
	viewport := Rect{X: 0, Y: 0, Width: 400, Height: 300}
	size := Size{Width: 350, Height: 250}

	p := PlacePanel(Point{X: 200, Y: 150}, size, viewport, 10)
	assert.True(t, p.Clamped)
	assert.True(t, contained(p, size, viewport, 10))
}

// TestPlacePanelOffsetViewport tests placement inside a viewport that
// does not start at the origin.
func TestPlacePanelOffsetViewport(t *testing.T) {
	viewport := Rect{X: 100, Y: 50, Width: 800, Height: 600}
	size := Size{Width: 200, Height: 150}

	p := PlacePanel(Point{X: 500, Y: 350}, size, viewport, 12)
	assert.True(t, contained(p, size, viewport, 12))
}
