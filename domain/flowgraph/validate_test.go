package flowgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"saevis/domain/threshold"
)

func validGraph() Graph {
	return Graph{
		Nodes: []Node{
			{ID: "root", Name: "All features", Stage: 0, Category: threshold.CategoryRoot, Value: 100},
			{ID: "split_true", Name: "Split", Stage: 1, Category: threshold.CategoryBooleanSplit, Value: 40},
			{ID: "split_false", Name: "Not split", Stage: 1, Category: threshold.CategoryBooleanSplit, Value: 60},
		},
		Links: []Link{
			{Source: "root", Target: "split_true", Value: 40},
			{Source: "root", Target: "split_false", Value: 60},
		},
	}
}

// TestValidateAcceptsGraph tests that a well-formed graph produces no
// issues.
func TestValidateAcceptsGraph(t *testing.T) {
	assert.Empty(t, validGraph().Validate())
}

// TestValidateRejectsGraph tests each malformation individually.
func TestValidateRejectsGraph(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Graph)
	}{
		{"no nodes", func(g *Graph) { g.Nodes = nil }},
		{"duplicate node id", func(g *Graph) { g.Nodes[1].ID = "root" }},
		{"empty node id", func(g *Graph) { g.Nodes[0].ID = "" }},
		{"non-positive node value", func(g *Graph) { g.Nodes[0].Value = 0 }},
		{"negative stage", func(g *Graph) { g.Nodes[0].Stage = -1 }},
		{"unknown link source", func(g *Graph) { g.Links[0].Source = "ghost" }},
		{"unknown link target", func(g *Graph) { g.Links[0].Target = "ghost" }},
		{"non-positive link value", func(g *Graph) { g.Links[0].Value = -3 }},
		{"backwards link", func(g *Graph) {
			g.Links[0].Source, g.Links[0].Target = g.Links[0].Target, g.Links[0].Source
		}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			g := validGraph()
			test.mutate(&g)
			assert.NotEmpty(t, g.Validate())
		})
	}
}

// TestGraphHelpers tests lookup and digest helpers.
func TestGraphHelpers(t *testing.T) {
	g := validGraph()

	n, ok := g.Node("split_true")
	assert.True(t, ok)
	assert.Equal(t, 40.0, n.Value)

	_, ok = g.Node("ghost")
	assert.False(t, ok)

	assert.Equal(t, 2, g.StageCount())
	assert.Len(t, g.NodeIDs(), 3)

	other := validGraph()
	assert.Equal(t, g.Digest(), other.Digest())
	other.Nodes[0].Value = 101
	assert.NotEqual(t, g.Digest(), other.Digest())
}
