package threshold

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"saevis/domain/core"
)

func newTestStore() *Store {
	return NewStore(map[Metric]float64{
		MetricFeatureSplitting: 0.5,
		MetricSemDistMean:      0.10,
		MetricScoreFuzz:        0.5,
		MetricScoreSimulation:  0.5,
		MetricScoreDetection:   0.5,
	})
}

// TestEffectiveTotal tests that resolution always yields a value for any
// (node, metric) pair, including nodes that have no overrides anywhere.
func TestEffectiveTotal(t *testing.T) {
	store := newTestStore()
	for _, id := range allDemoNodes() {
		for _, m := range AllMetrics() {
			v := store.Effective(id, m)
			assert.Greater(t, v, 0.0, "node %s metric %s", id, m)
		}
	}
}

// TestEffectivePartialDefaults tests that a store seeded with a partial
// default map still resolves every metric.
func TestEffectivePartialDefaults(t *testing.T) {
	store := NewStore(map[Metric]float64{MetricSemDistMean: 0.2})
	assert.Equal(t, 0.2, store.Effective("split_true_semdist_high", MetricSemDistMean))
	assert.Equal(t, fallbackDefault, store.Effective("split_true", MetricFeatureSplitting))
}

// TestGroupOverrideScenario covers the concrete resolution scenario:
// a group override on one branch must govern both siblings and leave the
// other branch on the global default.
func TestGroupOverrideScenario(t *testing.T) {
	store := newTestStore()

	assert.Equal(t, 0.10, store.Effective("split_true_semdist_high", MetricSemDistMean))

	store.SetGroup("split_true", MetricSemDistMean, 0.35)

	assert.Equal(t, 0.35, store.Effective("split_true_semdist_high", MetricSemDistMean))
	assert.Equal(t, 0.35, store.Effective("split_true_semdist_low", MetricSemDistMean))
	assert.Equal(t, 0.10, store.Effective("split_false_semdist_high", MetricSemDistMean))
}

// TestPrecedenceIndividualOverGroup tests the fixed precedence order:
// individual override, then natural group override, then global.
func TestPrecedenceIndividualOverGroup(t *testing.T) {
	store := newTestStore()
	node := core.NodeID("split_true_semdist_high")

	store.SetGroup("split_true", MetricSemDistMean, 0.35)
	store.SetIndividual(node, MetricSemDistMean, 0.42)

	assert.Equal(t, 0.42, store.Effective(node, MetricSemDistMean))
	// The sibling has no individual override and stays on the group value.
	assert.Equal(t, 0.35, store.Effective("split_true_semdist_low", MetricSemDistMean))

	store.ClearIndividual(node, MetricSemDistMean)
	assert.Equal(t, 0.35, store.Effective(node, MetricSemDistMean))
}

// TestSetGroupMergesSiblingMetrics tests that writing one metric into a
// group entry does not clobber other metrics already overridden there.
func TestSetGroupMergesSiblingMetrics(t *testing.T) {
	store := newTestStore()
	group := core.GroupID("split_true_semdist_high")

	store.SetGroup(group, MetricScoreFuzz, 0.7)
	store.SetGroup(group, MetricScoreDetection, 0.8)

	node := core.NodeID("split_true_semdist_high_agree_mixed")
	assert.Equal(t, 0.7, store.Effective(node, MetricScoreFuzz))
	assert.Equal(t, 0.8, store.Effective(node, MetricScoreDetection))
	assert.Equal(t, 0.5, store.Effective(node, MetricScoreSimulation))
}

// TestWriteThenClearRestores tests that clearing an override returns the
// resolution to exactly the pre-write value.
func TestWriteThenClearRestores(t *testing.T) {
	store := newTestStore()
	node := core.NodeID("split_false_semdist_low")
	before := store.Effective(node, MetricSemDistMean)

	store.SetGroup("split_false", MetricSemDistMean, 0.9)
	store.ClearGroup("split_false", MetricSemDistMean)
	assert.Equal(t, before, store.Effective(node, MetricSemDistMean))

	store.SetIndividual(node, MetricSemDistMean, 0.9)
	store.ClearIndividual(node, MetricSemDistMean)
	assert.Equal(t, before, store.Effective(node, MetricSemDistMean))
}

// TestClearRemovesEmptyResidue tests that removing the last metric of an
// entry removes the entry itself.
func TestClearRemovesEmptyResidue(t *testing.T) {
	store := newTestStore()
	group := core.GroupID("split_true")

	store.SetGroup(group, MetricSemDistMean, 0.3)
	store.ClearGroup(group, MetricSemDistMean)
	assert.NotContains(t, store.Snapshot().GroupOverrides, group)

	// Clearing with no metric drops the whole entry.
	store.SetGroup(group, MetricSemDistMean, 0.3)
	store.ClearGroup(group)
	assert.NotContains(t, store.Snapshot().GroupOverrides, group)

	node := core.NodeID("split_true")
	store.SetIndividual(node, MetricSemDistMean, 0.3)
	store.ClearIndividual(node)
	assert.NotContains(t, store.Snapshot().IndividualOverrides, IndividualGroup(node))
}

// TestSetGlobalLeavesOverrides tests that replacing a base-layer value
// does not touch overrides.
func TestSetGlobalLeavesOverrides(t *testing.T) {
	store := newTestStore()
	store.SetGroup("split_true", MetricSemDistMean, 0.35)
	store.SetGlobal(MetricSemDistMean, 0.2)

	assert.Equal(t, 0.35, store.Effective("split_true_semdist_high", MetricSemDistMean))
	assert.Equal(t, 0.2, store.Effective("split_false_semdist_high", MetricSemDistMean))
}

// TestReset tests that Reset restores initial defaults and discards every
// override.
func TestReset(t *testing.T) {
	store := newTestStore()
	store.SetGlobal(MetricSemDistMean, 0.9)
	store.SetGroup("split_true", MetricSemDistMean, 0.8)
	store.SetIndividual("split_true_semdist_high", MetricSemDistMean, 0.7)

	store.Reset()

	assert.Equal(t, 0.10, store.Effective("split_true_semdist_high", MetricSemDistMean))
	snapshot := store.Snapshot()
	assert.Empty(t, snapshot.GroupOverrides)
	assert.Empty(t, snapshot.IndividualOverrides)
}

// TestOnChangeFires tests that every mutating operation notifies the
// registered listener.
func TestOnChangeFires(t *testing.T) {
	store := newTestStore()
	var changes []Metric
	store.OnChange(func(m Metric) { changes = append(changes, m) })

	store.SetGlobal(MetricSemDistMean, 0.2)
	store.SetGroup("split_true", MetricScoreFuzz, 0.7)
	store.SetIndividual("split_true", MetricScoreFuzz, 0.7)
	store.ClearGroup("split_true", MetricScoreFuzz)
	store.ClearIndividual("split_true")

	assert.Equal(t, []Metric{
		MetricSemDistMean,
		MetricScoreFuzz,
		MetricScoreFuzz,
		MetricScoreFuzz,
		MetricScoreFuzz,
	}, changes)

	// Clearing something that was never set is a no-op notification-wise.
	changes = nil
	store.ClearGroup("split_false", MetricSemDistMean)
	assert.Empty(t, changes)
}

// TestSnapshotIsDetached tests that mutating a snapshot cannot leak back
// into the store.
func TestSnapshotIsDetached(t *testing.T) {
	store := newTestStore()
	snapshot := store.Snapshot()
	snapshot.Global[MetricSemDistMean] = 99
	snapshot.GroupOverrides["split_true"] = map[Metric]float64{MetricSemDistMean: 99}

	assert.Equal(t, 0.10, store.Effective("split_true_semdist_high", MetricSemDistMean))
}
