package threshold

import (
	"sync"

	"saevis/domain/core"
)

// fallbackDefault backs any metric the caller forgot to seed, keeping the
// global layer fully populated at all times.
const fallbackDefault = 0.5

// Config is the layered threshold configuration. Global is always fully
// populated and acts as the base layer; GroupOverrides holds values for
// natural tree groups; IndividualOverrides holds one-off per-node values
// keyed by the node's synthetic group.
type Config struct {
	Global              map[Metric]float64             `json:"global"`
	GroupOverrides      map[core.GroupID]map[Metric]float64 `json:"group_overrides"`
	IndividualOverrides map[core.GroupID]map[Metric]float64 `json:"individual_overrides"`
}

// Clone returns a deep copy of the configuration.
func (c Config) Clone() Config {
	out := Config{
		Global:              make(map[Metric]float64, len(c.Global)),
		GroupOverrides:      make(map[core.GroupID]map[Metric]float64, len(c.GroupOverrides)),
		IndividualOverrides: make(map[core.GroupID]map[Metric]float64, len(c.IndividualOverrides)),
	}
	for m, v := range c.Global {
		out.Global[m] = v
	}
	for g, metrics := range c.GroupOverrides {
		inner := make(map[Metric]float64, len(metrics))
		for m, v := range metrics {
			inner[m] = v
		}
		out.GroupOverrides[g] = inner
	}
	for g, metrics := range c.IndividualOverrides {
		inner := make(map[Metric]float64, len(metrics))
		for m, v := range metrics {
			inner[m] = v
		}
		out.IndividualOverrides[g] = inner
	}
	return out
}

// Resolve returns the effective threshold for (id, metric) under cfg,
// following the fixed precedence order: individual override, then natural
// group override, then the global default. It is total: the global layer
// always yields a value.
func Resolve(cfg Config, id core.NodeID, metric Metric) float64 {
	if metrics, ok := cfg.IndividualOverrides[IndividualGroup(id)]; ok {
		if v, ok := metrics[metric]; ok {
			return v
		}
	}
	if metrics, ok := cfg.GroupOverrides[GroupFor(id, metric)]; ok {
		if v, ok := metrics[metric]; ok {
			return v
		}
	}
	if v, ok := cfg.Global[metric]; ok {
		return v
	}
	return fallbackDefault
}

// Store owns the threshold configuration. It is the single source of truth
// for threshold values: every mutation goes through its operations and no
// second copy of the configuration may exist. Values survive data
// re-fetches; only Reset discards them.
type Store struct {
	mu       sync.RWMutex
	defaults map[Metric]float64
	cfg      Config
	onChange func(Metric)
}

// NewStore creates a store seeded with the given global defaults. Any
// metric missing from defaults is backfilled so the global layer is fully
// populated.
func NewStore(defaults map[Metric]float64) *Store {
	full := make(map[Metric]float64, len(AllMetrics()))
	for _, m := range AllMetrics() {
		if v, ok := defaults[m]; ok {
			full[m] = v
		} else {
			full[m] = fallbackDefault
		}
	}

	s := &Store{defaults: full}
	s.cfg = s.freshConfig()
	return s
}

func (s *Store) freshConfig() Config {
	global := make(map[Metric]float64, len(s.defaults))
	for m, v := range s.defaults {
		global[m] = v
	}
	return Config{
		Global:              global,
		GroupOverrides:      make(map[core.GroupID]map[Metric]float64),
		IndividualOverrides: make(map[core.GroupID]map[Metric]float64),
	}
}

// OnChange registers a listener invoked after every mutating operation.
// The listener runs outside the store's lock.
func (s *Store) OnChange(fn func(Metric)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *Store) notify(metric Metric) {
	s.mu.RLock()
	fn := s.onChange
	s.mu.RUnlock()
	if fn != nil {
		fn(metric)
	}
}

// Effective resolves the threshold governing (id, metric). Never fails:
// the global layer is guaranteed to hold every metric.
func (s *Store) Effective(id core.NodeID, metric Metric) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Resolve(s.cfg, id, metric)
}

// Snapshot returns a deep copy of the current configuration, for echoing
// to the data provider and for export.
func (s *Store) Snapshot() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Clone()
}

// SetGlobal replaces the base-layer entry for the metric. Overrides are
// untouched.
func (s *Store) SetGlobal(metric Metric, value float64) {
	s.mu.Lock()
	s.cfg.Global[metric] = value
	s.mu.Unlock()
	s.notify(metric)
}

// SetGroup writes a group override. The write merges into the group's
// entry so sibling metrics already overridden for the same group survive.
func (s *Store) SetGroup(groupID core.GroupID, metric Metric, value float64) {
	s.mu.Lock()
	metrics, ok := s.cfg.GroupOverrides[groupID]
	if !ok {
		metrics = make(map[Metric]float64)
		s.cfg.GroupOverrides[groupID] = metrics
	}
	metrics[metric] = value
	s.mu.Unlock()
	s.notify(metric)
}

// SetIndividual writes a per-node override under the node's synthetic
// group.
func (s *Store) SetIndividual(id core.NodeID, metric Metric, value float64) {
	s.mu.Lock()
	group := IndividualGroup(id)
	metrics, ok := s.cfg.IndividualOverrides[group]
	if !ok {
		metrics = make(map[Metric]float64)
		s.cfg.IndividualOverrides[group] = metrics
	}
	metrics[metric] = value
	s.mu.Unlock()
	s.notify(metric)
}

// ClearGroup removes the named metrics from a group override, or the whole
// entry when no metric is given. Removing the last metric removes the
// entry itself, leaving no empty residue.
func (s *Store) ClearGroup(groupID core.GroupID, metrics ...Metric) {
	s.mu.Lock()
	cleared := clearLayer(s.cfg.GroupOverrides, groupID, metrics)
	s.mu.Unlock()
	for _, m := range cleared {
		s.notify(m)
	}
}

// ClearIndividual removes per-node overrides, with the same metric
// semantics as ClearGroup.
func (s *Store) ClearIndividual(id core.NodeID, metrics ...Metric) {
	s.mu.Lock()
	cleared := clearLayer(s.cfg.IndividualOverrides, IndividualGroup(id), metrics)
	s.mu.Unlock()
	for _, m := range cleared {
		s.notify(m)
	}
}

func clearLayer(layer map[core.GroupID]map[Metric]float64, group core.GroupID, metrics []Metric) []Metric {
	entry, ok := layer[group]
	if !ok {
		return nil
	}

	if len(metrics) == 0 {
		cleared := make([]Metric, 0, len(entry))
		for m := range entry {
			cleared = append(cleared, m)
		}
		delete(layer, group)
		return cleared
	}

	cleared := make([]Metric, 0, len(metrics))
	for _, m := range metrics {
		if _, ok := entry[m]; ok {
			delete(entry, m)
			cleared = append(cleared, m)
		}
	}
	if len(entry) == 0 {
		delete(layer, group)
	}
	return cleared
}

// Reset restores the initial global defaults and discards all overrides.
func (s *Store) Reset() {
	s.mu.Lock()
	s.cfg = s.freshConfig()
	s.mu.Unlock()
	for _, m := range AllMetrics() {
		s.notify(m)
	}
}
