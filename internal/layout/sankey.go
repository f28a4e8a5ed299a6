package layout

import (
	"fmt"
	"sort"

	"saevis/domain/core"
	"saevis/domain/flowgraph"
)

// Flow diagram constants
const (
	nodeWidth   = 18.0 // horizontal thickness of a node bar
	nodePadding = 12.0 // minimum vertical gap between nodes in a column
)

// NodeRect is one positioned flow node.
type NodeRect struct {
	ID    core.NodeID `json:"id"`
	Name  string      `json:"name"`
	Stage int         `json:"stage"`
	Value float64     `json:"value"`

	X0 float64 `json:"x0"`
	X1 float64 `json:"x1"`
	Y0 float64 `json:"y0"`
	Y1 float64 `json:"y1"`
}

// LinkBand is one positioned flow ribbon. The band occupies the vertical
// interval [SY0, SY1] at the source's right edge and [TY0, TY1] at the
// target's left edge; both intervals have the same thickness.
type LinkBand struct {
	Source core.NodeID `json:"source"`
	Target core.NodeID `json:"target"`
	Value  float64     `json:"value"`

	X0  float64 `json:"x0"`
	X1  float64 `json:"x1"`
	SY0 float64 `json:"sy0"`
	SY1 float64 `json:"sy1"`
	TY0 float64 `json:"ty0"`
	TY1 float64 `json:"ty1"`
}

// FlowLayout is the derived geometry of the whole flow diagram.
type FlowLayout struct {
	Width  float64    `json:"width"`
	Height float64    `json:"height"`
	Nodes  []NodeRect `json:"nodes"`
	Links  []LinkBand `json:"links"`
}

// BuildFlow converts a validated flow graph into a layered left-to-right
// layout: one column per stage, node height proportional to value, link
// bands stacked without overlap at both ends. Validation failure returns
// the issue list and an empty layout, never a partial one.
func BuildFlow(g flowgraph.Graph, width, height float64) (FlowLayout, []string) {
	issues := g.Validate()
	if width <= 0 || height <= 0 {
		issues = append(issues, fmt.Sprintf("flow dimensions %vx%v must be positive", width, height))
	}
	if len(issues) > 0 {
		return FlowLayout{}, issues
	}

	stageCount := g.StageCount()

	// Group nodes into columns by stage, preserving input order within a
	// column so re-fetches with the same node order are stable.
	columns := make([][]int, stageCount)
	for i, n := range g.Nodes {
		columns[n.Stage] = append(columns[n.Stage], i)
	}

	// One value-to-pixel scale for the whole diagram, chosen so the
	// tallest column still fits with its padding.
	scale := valueScale(g, columns, height)

	rects := make([]NodeRect, len(g.Nodes))
	index := make(map[core.NodeID]int, len(g.Nodes))

	for stage, column := range columns {
		if len(column) == 0 {
			continue
		}

		x0 := columnX(stage, stageCount, width)

		total := nodePadding * float64(len(column)-1)
		for _, i := range column {
			total += g.Nodes[i].Value * scale
		}

		// Center the column vertically.
		y := (height - total) / 2
		for _, i := range column {
			n := g.Nodes[i]
			h := n.Value * scale
			rects[i] = NodeRect{
				ID:    n.ID,
				Name:  n.Name,
				Stage: n.Stage,
				Value: n.Value,
				X0:    x0,
				X1:    x0 + nodeWidth,
				Y0:    y,
				Y1:    y + h,
			}
			index[n.ID] = i
			y += h + nodePadding
		}
	}

	links := placeLinks(g, rects, index, scale)

	return FlowLayout{
		Width:  width,
		Height: height,
		Nodes:  rects,
		Links:  links,
	}, nil
}

// valueScale returns pixels per unit of flow value.
func valueScale(g flowgraph.Graph, columns [][]int, height float64) float64 {
	scale := 0.0
	for _, column := range columns {
		if len(column) == 0 {
			continue
		}
		sum := 0.0
		for _, i := range column {
			sum += g.Nodes[i].Value
		}
		available := height - nodePadding*float64(len(column)-1)
		if available < 1 {
			available = 1
		}
		s := available / sum
		if scale == 0 || s < scale {
			scale = s
		}
	}
	return scale
}

// columnX returns the left edge of a stage's column.
func columnX(stage, stageCount int, width float64) float64 {
	if stageCount <= 1 {
		return (width - nodeWidth) / 2
	}
	return float64(stage) * (width - nodeWidth) / float64(stageCount-1)
}

// placeLinks assigns each link its vertical band at both ends. Bands at a
// node are ordered by the far end's vertical position, which keeps ribbons
// from crossing within one node's stack.
func placeLinks(g flowgraph.Graph, rects []NodeRect, index map[core.NodeID]int, scale float64) []LinkBand {
	links := make([]LinkBand, len(g.Links))
	for i, l := range g.Links {
		src := rects[index[l.Source]]
		tgt := rects[index[l.Target]]
		links[i] = LinkBand{
			Source: l.Source,
			Target: l.Target,
			Value:  l.Value,
			X0:     src.X1,
			X1:     tgt.X0,
		}
	}

	// Outgoing bands, stacked down each source by target position.
	bySource := make(map[core.NodeID][]int)
	for i, l := range links {
		bySource[l.Source] = append(bySource[l.Source], i)
	}
	for source, idxs := range bySource {
		sort.SliceStable(idxs, func(a, b int) bool {
			return rects[index[links[idxs[a]].Target]].Y0 < rects[index[links[idxs[b]].Target]].Y0
		})
		y := rects[index[source]].Y0
		for _, i := range idxs {
			thickness := links[i].Value * scale
			links[i].SY0 = y
			links[i].SY1 = y + thickness
			y += thickness
		}
	}

	// Incoming bands, stacked down each target by source position.
	byTarget := make(map[core.NodeID][]int)
	for i, l := range links {
		byTarget[l.Target] = append(byTarget[l.Target], i)
	}
	for target, idxs := range byTarget {
		sort.SliceStable(idxs, func(a, b int) bool {
			return rects[index[links[idxs[a]].Source]].Y0 < rects[index[links[idxs[b]].Source]].Y0
		})
		y := rects[index[target]].Y0
		for _, i := range idxs {
			thickness := links[i].Value * scale
			links[i].TY0 = y
			links[i].TY1 = y + thickness
			y += thickness
		}
	}

	return links
}
