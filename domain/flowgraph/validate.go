package flowgraph

import (
	"fmt"

	"saevis/domain/core"
)

// Validate checks the graph for configuration errors before layout.
// Problems come back as human-readable strings; a failed validation means
// the layout engine produces an empty layout rather than a partial one.
func (g Graph) Validate() []string {
	var issues []string

	if len(g.Nodes) == 0 {
		issues = append(issues, "flow graph has no nodes")
		return issues
	}

	seen := make(map[core.NodeID]int, len(g.Nodes))
	for _, n := range g.Nodes {
		seen[n.ID]++
		if core.ID(n.ID).IsEmpty() {
			issues = append(issues, "flow graph contains a node with an empty id")
		}
		if n.Value <= 0 {
			issues = append(issues, fmt.Sprintf("node %q has non-positive value %v", n.ID, n.Value))
		}
		if n.Stage < 0 {
			issues = append(issues, fmt.Sprintf("node %q has negative stage %d", n.ID, n.Stage))
		}
	}
	for id, count := range seen {
		if count > 1 {
			issues = append(issues, fmt.Sprintf("node id %q appears %d times", id, count))
		}
	}

	stage := make(map[core.NodeID]int, len(g.Nodes))
	for _, n := range g.Nodes {
		stage[n.ID] = n.Stage
	}

	for i, l := range g.Links {
		if _, ok := seen[l.Source]; !ok {
			issues = append(issues, fmt.Sprintf("link %d references unknown source %q", i, l.Source))
			continue
		}
		if _, ok := seen[l.Target]; !ok {
			issues = append(issues, fmt.Sprintf("link %d references unknown target %q", i, l.Target))
			continue
		}
		if l.Value <= 0 {
			issues = append(issues, fmt.Sprintf("link %d (%s -> %s) has non-positive value %v",
				i, l.Source, l.Target, l.Value))
		}
		if stage[l.Target] <= stage[l.Source] {
			issues = append(issues, fmt.Sprintf("link %d (%s -> %s) does not flow left to right",
				i, l.Source, l.Target))
		}
	}

	return issues
}
