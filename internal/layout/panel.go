package layout

// panelGap separates the panel from its anchor point.
const panelGap = 8.0

// Point is a viewport coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a panel's requested dimensions.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle, used for the viewport.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Placement is where a floating panel should be drawn. Anchor names the
// side of the anchor point the panel ended up on ("above", "below",
// "left", "right"); Clamped reports that no candidate fit and the last
// one was clamped into the viewport.
type Placement struct {
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Anchor  string  `json:"anchor"`
	Clamped bool    `json:"clamped"`
}

type candidate struct {
	name string
	x, y float64
}

// PlacePanel computes a panel position that stays fully on-screen. It
// tries above, below, left, then right of the anchor and picks the first
// placement that fits within the viewport minus margin; if none fit, the
// last candidate is clamped into bounds rather than overflowing.
func PlacePanel(anchor Point, size Size, viewport Rect, margin float64) Placement {
	candidates := []candidate{
		{"above", anchor.X - size.Width/2, anchor.Y - size.Height - panelGap},
		{"below", anchor.X - size.Width/2, anchor.Y + panelGap},
		{"left", anchor.X - size.Width - panelGap, anchor.Y - size.Height/2},
		{"right", anchor.X + panelGap, anchor.Y - size.Height/2},
	}

	minX := viewport.X + margin
	minY := viewport.Y + margin
	maxX := viewport.X + viewport.Width - margin - size.Width
	maxY := viewport.Y + viewport.Height - margin - size.Height

	for _, c := range candidates {
		if c.x >= minX && c.x <= maxX && c.y >= minY && c.y <= maxY {
			return Placement{X: c.x, Y: c.y, Anchor: c.name}
		}
	}

	last := candidates[len(candidates)-1]
	return Placement{
		X:       clamp(last.x, minX, maxX),
		Y:       clamp(last.y, minY, maxY),
		Anchor:  last.name,
		Clamped: true,
	}
}
