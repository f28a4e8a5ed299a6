package app

import (
	"sync"
	"time"

	"saevis/domain/core"
	"saevis/domain/distribution"
	"saevis/domain/flowgraph"
	"saevis/domain/threshold"
	"saevis/internal/errors"
	"saevis/internal/layout"
	"saevis/ports"
)

// Session holds one viewer's dashboard state: their threshold store, the
// active filter selection, an optional dragged panel position and the
// last data that passed validation. Thresholds survive re-fetches; only
// an explicit reset discards them.
type Session struct {
	ID        core.SessionID
	Store     *threshold.Store
	CreatedAt time.Time

	mu            sync.RWMutex
	filters       ports.FilterSelection
	panelOverride *layout.Point

	// Last-known-good data. A failed or invalid fetch never replaces it.
	distributions map[threshold.Metric]distribution.Distribution
	graph         flowgraph.Graph
	hasGraph      bool
	lastRefreshed time.Time
	lastIssues    []string
}

func newSession(defaults map[threshold.Metric]float64) *Session {
	return &Session{
		ID:            core.NewSessionID(),
		Store:         threshold.NewStore(defaults),
		CreatedAt:     time.Now(),
		distributions: make(map[threshold.Metric]distribution.Distribution),
	}
}

// Filters returns the current filter selection.
func (s *Session) Filters() ports.FilterSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// SetFilters replaces the filter selection. Thresholds are untouched.
func (s *Session) SetFilters(sel ports.FilterSelection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = sel
}

// PanelOverride returns the user-dragged panel position, if any.
func (s *Session) PanelOverride() (layout.Point, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.panelOverride == nil {
		return layout.Point{}, false
	}
	return *s.panelOverride, true
}

// SetPanelOverride pins the floating panel to an explicit position,
// suppressing automatic placement until cleared.
func (s *Session) SetPanelOverride(p layout.Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOverride = &p
}

// ClearPanelOverride restores automatic panel placement.
func (s *Session) ClearPanelOverride() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panelOverride = nil
}

// Distribution returns the last-known-good distribution for a metric.
func (s *Session) Distribution(metric threshold.Metric) (distribution.Distribution, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.distributions[metric]
	return d, ok
}

// Graph returns the last-known-good flow graph.
func (s *Session) Graph() (flowgraph.Graph, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph, s.hasGraph
}

// LastIssues returns the validation issues from the most recent refresh,
// empty when everything was accepted.
func (s *Session) LastIssues() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.lastIssues...)
}

// LastRefreshed returns when data was last accepted into the session.
func (s *Session) LastRefreshed() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastRefreshed
}

func (s *Session) acceptRefresh(dists map[threshold.Metric]distribution.Distribution, graph *flowgraph.Graph, issues []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for m, d := range dists {
		s.distributions[m] = d
	}
	if graph != nil {
		s.graph = *graph
		s.hasGraph = true
	}
	s.lastIssues = issues
	s.lastRefreshed = time.Now()
}

// SessionManager is the in-memory session registry.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*Session
	defaults map[threshold.Metric]float64
}

// NewSessionManager creates a registry whose sessions start from the
// given global threshold defaults.
func NewSessionManager(defaults map[threshold.Metric]float64) *SessionManager {
	return &SessionManager{
		sessions: make(map[core.SessionID]*Session),
		defaults: defaults,
	}
}

// Create registers a fresh session.
func (m *SessionManager) Create() *Session {
	sess := newSession(m.defaults)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[sess.ID] = sess
	return sess
}

// Get looks a session up by ID.
func (m *SessionManager) Get(id core.SessionID) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, errors.SessionNotFound(id.String())
	}
	return sess, nil
}

// Remove drops a session from the registry. Missing IDs are a no-op.
func (m *SessionManager) Remove(id core.SessionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
