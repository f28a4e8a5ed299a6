package threshold

import (
	"saevis/domain/core"
)

// Grouping rules, one per node category. A node shares a threshold group
// with its siblings exactly when the metric is the one that produced the
// node's split stage:
//
//   - feature_splitting governs the stage-1 boolean split, and that split
//     is shared everywhere, so stage-1 nodes all group under "root";
//   - semdist_mean governs the stage-2 distance split, grouped per
//     stage-1 branch;
//   - the score metrics govern the stage-3 agreement split, grouped per
//     stage-2 parent.
//
// Every other (node, metric) combination falls back to a synthetic
// per-node group so resolution always has a valid key.

// GroupFor computes the identifier of the threshold group the node belongs
// to for the given metric. It is a pure function: group identifiers are
// always recomputed from the node identifier, never cached, so they can
// never go stale after a re-fetch replaces the tree.
func GroupFor(id core.NodeID, metric Metric) core.GroupID {
	p, err := ParsePath(id)
	if err != nil {
		return IndividualGroup(id)
	}

	switch {
	case metric == MetricFeatureSplitting && p.Category() == CategoryBooleanSplit:
		return core.GroupID("root")
	case metric == MetricSemDistMean && p.Category() == CategoryDistanceSplit:
		parent, _ := p.Parent()
		return core.GroupID(parent)
	case metric.IsScore() && p.Category() == CategoryAgreementSplit:
		parent, _ := p.Parent()
		return core.GroupID(parent)
	default:
		return IndividualGroup(id)
	}
}

// IndividualGroup returns the synthetic per-node group identifier used by
// the individual-override layer.
func IndividualGroup(id core.NodeID) core.GroupID {
	return core.GroupID("node:" + id.String())
}

// Members returns every node in allNodes that shares groupID for the given
// metric. Linear in the node count and intentionally uncached: the node
// list is replaced wholesale on every re-fetch and membership must never
// be served stale.
func Members(groupID core.GroupID, metric Metric, allNodes []core.NodeID) []core.NodeID {
	members := make([]core.NodeID, 0, len(allNodes))
	for _, id := range allNodes {
		if GroupFor(id, metric) == groupID {
			members = append(members, id)
		}
	}
	return members
}
