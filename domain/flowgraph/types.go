package flowgraph

import (
	"fmt"
	"strings"

	"saevis/domain/core"
	"saevis/domain/threshold"
)

// Node is one classification node of the flow graph. Nodes are created
// from fetched flow data, are immutable for the lifetime of one fetch
// result, and are replaced wholesale on re-fetch.
type Node struct {
	ID       core.NodeID        `json:"id"`
	Name     string             `json:"name"`
	Stage    int                `json:"stage"`
	Category threshold.Category `json:"category"`
	Value    float64            `json:"value"`
}

// Link is a directed flow between two nodes of adjacent stages.
type Link struct {
	Source core.NodeID `json:"source"`
	Target core.NodeID `json:"target"`
	Value  float64     `json:"value"`
}

// Graph is the full classification flow for one fetch, with the filters
// and thresholds the provider applied echoed back as metadata.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Links []Link `json:"links"`

	AppliedFilters    map[string]string `json:"applied_filters,omitempty"`
	AppliedThresholds threshold.Config  `json:"applied_thresholds"`
}

// Node looks up a node by id.
func (g Graph) Node(id core.NodeID) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIDs returns every node identifier in input order.
func (g Graph) NodeIDs() []core.NodeID {
	ids := make([]core.NodeID, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// StageCount returns the number of distinct stages (max stage + 1).
func (g Graph) StageCount() int {
	max := -1
	for _, n := range g.Nodes {
		if n.Stage > max {
			max = n.Stage
		}
	}
	return max + 1
}

// Digest fingerprints the graph's content for layout cache keys.
func (g Graph) Digest() core.Hash {
	var b strings.Builder
	for _, n := range g.Nodes {
		fmt.Fprintf(&b, "%s|%d|%v;", n.ID, n.Stage, n.Value)
	}
	for _, l := range g.Links {
		fmt.Fprintf(&b, "%s>%s|%v;", l.Source, l.Target, l.Value)
	}
	return core.NewHash([]byte(b.String()))
}
