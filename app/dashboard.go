package app

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"saevis/domain/core"
	"saevis/domain/distribution"
	"saevis/domain/flowgraph"
	"saevis/domain/threshold"
	"saevis/internal"
	"saevis/internal/coalesce"
	"saevis/internal/config"
	"saevis/internal/errors"
	"saevis/internal/layout"
	"saevis/ports"
)

// DashboardService orchestrates the dashboard: threshold edits feed a
// coalesced refresh, refreshes fetch distributions and the flow graph
// concurrently, and views derive draw-ready layouts from whatever data
// last passed validation.
type DashboardService struct {
	provider ports.DataProvider
	sched    *coalesce.Scheduler
	sessions *SessionManager
	logger   *internal.Logger

	engine config.EngineConfig
	chart  config.ChartConfig

	cacheMu   sync.Mutex
	histCache map[core.LayoutKey]layout.HistogramLayout
	flowCache map[core.LayoutKey]layout.FlowLayout
}

// NewDashboardService creates the service.
func NewDashboardService(provider ports.DataProvider, sched *coalesce.Scheduler, sessions *SessionManager, logger *internal.Logger, cfg *config.Config) *DashboardService {
	return &DashboardService{
		provider:  provider,
		sched:     sched,
		sessions:  sessions,
		logger:    logger,
		engine:    cfg.Engine,
		chart:     cfg.Chart,
		histCache: make(map[core.LayoutKey]layout.HistogramLayout),
		flowCache: make(map[core.LayoutKey]layout.FlowLayout),
	}
}

// Sessions exposes the session registry.
func (s *DashboardService) Sessions() *SessionManager {
	return s.sessions
}

// FilterOptions returns the selectable filter values from the provider.
func (s *DashboardService) FilterOptions(ctx context.Context) (ports.FilterOptions, error) {
	opts, err := s.provider.FilterOptions(ctx)
	if err != nil {
		return ports.FilterOptions{}, errors.ProviderError("filter options", err)
	}
	return opts, nil
}

// ApplyFilters replaces the session's filter selection and refreshes
// immediately. Filter changes are deliberate enough that they skip the
// edit debounce.
func (s *DashboardService) ApplyFilters(ctx context.Context, sess *Session, sel ports.FilterSelection) error {
	sess.SetFilters(sel)
	if !sel.Active() {
		s.sched.Cancel(refreshKey(sess))
		return nil
	}
	return s.Refresh(ctx, sess)
}

// SetGlobal updates a global default and queues a refresh.
func (s *DashboardService) SetGlobal(sess *Session, metric threshold.Metric, value float64) error {
	if err := validateThreshold(metric, value); err != nil {
		return err
	}
	sess.Store.SetGlobal(metric, value)
	s.scheduleRefresh(sess)
	return nil
}

// SetGroup writes a group override and queues a refresh.
func (s *DashboardService) SetGroup(sess *Session, groupID core.GroupID, metric threshold.Metric, value float64) error {
	if err := validateThreshold(metric, value); err != nil {
		return err
	}
	sess.Store.SetGroup(groupID, metric, value)
	s.scheduleRefresh(sess)
	return nil
}

// SetIndividual writes a per-node override and queues a refresh.
func (s *DashboardService) SetIndividual(sess *Session, id core.NodeID, metric threshold.Metric, value float64) error {
	if err := validateThreshold(metric, value); err != nil {
		return err
	}
	sess.Store.SetIndividual(id, metric, value)
	s.scheduleRefresh(sess)
	return nil
}

// ClearGroup removes group overrides and queues a refresh.
func (s *DashboardService) ClearGroup(sess *Session, groupID core.GroupID, metrics ...threshold.Metric) {
	sess.Store.ClearGroup(groupID, metrics...)
	s.scheduleRefresh(sess)
}

// ClearIndividual removes per-node overrides and queues a refresh.
func (s *DashboardService) ClearIndividual(sess *Session, id core.NodeID, metrics ...threshold.Metric) {
	sess.Store.ClearIndividual(id, metrics...)
	s.scheduleRefresh(sess)
}

// ResetThresholds restores the session's defaults and queues a refresh.
func (s *DashboardService) ResetThresholds(sess *Session) {
	sess.Store.Reset()
	s.scheduleRefresh(sess)
}

// Effective resolves the threshold a node currently experiences.
func (s *DashboardService) Effective(sess *Session, id core.NodeID, metric threshold.Metric) (float64, error) {
	if !metric.Valid() {
		return 0, errors.InvalidInput("unknown metric: " + string(metric))
	}
	return sess.Store.Effective(id, metric), nil
}

// Members lists the nodes sharing a group threshold, drawn from the
// session's current flow graph.
func (s *DashboardService) Members(sess *Session, groupID core.GroupID, metric threshold.Metric) ([]core.NodeID, error) {
	if !metric.Valid() {
		return nil, errors.InvalidInput("unknown metric: " + string(metric))
	}
	graph, ok := sess.Graph()
	if !ok {
		return nil, errors.NotFound("flow graph")
	}
	return threshold.Members(groupID, metric, graph.NodeIDs()), nil
}

// scheduleRefresh queues a trailing-edge refresh for the session. Edits
// made without an active filter change only the stored values; there is
// no data to re-derive yet.
func (s *DashboardService) scheduleRefresh(sess *Session) {
	if !sess.Filters().Active() {
		return
	}
	s.sched.Schedule(refreshKey(sess), func() {
		if err := s.Refresh(context.Background(), sess); err != nil {
			s.logger.Warn("Background refresh failed for session %s: %v", sess.ID, err)
		}
	})
}

// Refresh fetches all metric distributions and the flow graph under the
// session's current filters and thresholds. Fetches run concurrently;
// results that fail validation are dropped individually and the session
// keeps its previous data for them.
func (s *DashboardService) Refresh(ctx context.Context, sess *Session) error {
	sel := sess.Filters()
	cfg := sess.Store.Snapshot()

	var mu sync.Mutex
	dists := make(map[threshold.Metric]distribution.Distribution)
	var graph *flowgraph.Graph
	var issues []string

	g, ctx := errgroup.WithContext(ctx)
	for _, metric := range threshold.AllMetrics() {
		metric := metric
		g.Go(func() error {
			d, err := s.provider.Distribution(ctx, sel, metric, cfg, s.engine.HistogramBins)
			if err != nil {
				return errors.ProviderError("distribution "+string(metric), err)
			}
			mu.Lock()
			defer mu.Unlock()
			if bad := d.Validate(); len(bad) > 0 {
				issues = append(issues, bad...)
				return nil
			}
			dists[metric] = d
			return nil
		})
	}
	g.Go(func() error {
		fg, err := s.provider.FlowGraph(ctx, sel, cfg)
		if err != nil {
			return errors.ProviderError("flow graph", err)
		}
		mu.Lock()
		defer mu.Unlock()
		if bad := fg.Validate(); len(bad) > 0 {
			issues = append(issues, bad...)
			return nil
		}
		graph = &fg
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("Refresh for session %s kept previous data: %v", sess.ID, err)
		return err
	}

	sess.acceptRefresh(dists, graph, issues)
	if len(issues) > 0 {
		s.logger.Warn("Refresh for session %s rejected %d result(s)", sess.ID, len(issues))
	} else {
		s.logger.Debug("Refresh for session %s accepted %d distributions", sess.ID, len(dists))
	}
	return nil
}

// HistogramView derives the single-metric histogram layout from the
// session's last-known-good distribution. The issue list is the render
// gate: a non-empty list means draw nothing.
func (s *DashboardService) HistogramView(sess *Session, metric threshold.Metric, width, height float64) (layout.HistogramLayout, []string, error) {
	if !metric.Valid() {
		return layout.HistogramLayout{}, nil, errors.InvalidInput("unknown metric: " + string(metric))
	}
	dist, ok := sess.Distribution(metric)
	if !ok {
		return layout.HistogramLayout{}, nil, errors.NotFound("distribution " + string(metric))
	}
	if width <= 0 {
		width = s.chart.HistogramWidth
	}
	if height <= 0 {
		height = s.chart.HistogramHeight
	}

	thr := sess.Store.Effective("root", metric)
	key := core.ComputeLayoutKey("histogram", []core.Hash{dist.Digest()},
		flattenConfig(sess.Store.Snapshot()), width, height)

	s.cacheMu.Lock()
	cached, hit := s.histCache[key]
	s.cacheMu.Unlock()
	if hit {
		return cached, nil, nil
	}

	built, bad := layout.BuildHistogram(layout.HistogramSpec{
		Dist:      dist,
		Width:     width,
		Height:    height,
		Threshold: thr,
		Margins:   layout.DefaultMargins(),
	})
	if len(bad) > 0 {
		return layout.HistogramLayout{}, bad, nil
	}

	s.cacheMu.Lock()
	s.histCache[key] = built
	s.cacheMu.Unlock()
	return built, nil, nil
}

// StackedView derives the vertically stacked multi-metric chart.
func (s *DashboardService) StackedView(sess *Session, metrics []threshold.Metric, width, height float64) (layout.StackedLayout, []string, error) {
	if len(metrics) == 0 {
		metrics = threshold.AllMetrics()
	}
	if width <= 0 {
		width = s.chart.HistogramWidth
	}
	if height <= 0 {
		height = s.chart.HistogramHeight
	}

	specs := make([]layout.HistogramSpec, 0, len(metrics))
	for _, metric := range metrics {
		if !metric.Valid() {
			return layout.StackedLayout{}, nil, errors.InvalidInput("unknown metric: " + string(metric))
		}
		dist, ok := sess.Distribution(metric)
		if !ok {
			return layout.StackedLayout{}, nil, errors.NotFound("distribution " + string(metric))
		}
		specs = append(specs, layout.HistogramSpec{
			Dist:      dist,
			Width:     width,
			Height:    height,
			Threshold: sess.Store.Effective("root", metric),
			Margins:   layout.DefaultMargins(),
		})
	}

	built, bad := layout.BuildStacked(specs)
	if len(bad) > 0 {
		return layout.StackedLayout{}, bad, nil
	}
	return built, nil, nil
}

// FlowView derives the flow-diagram layout from the session's
// last-known-good graph.
func (s *DashboardService) FlowView(sess *Session, width, height float64) (layout.FlowLayout, []string, error) {
	graph, ok := sess.Graph()
	if !ok {
		return layout.FlowLayout{}, nil, errors.NotFound("flow graph")
	}
	if width <= 0 {
		width = s.chart.FlowWidth
	}
	if height <= 0 {
		height = s.chart.FlowHeight
	}

	key := core.ComputeLayoutKey("flow", []core.Hash{graph.Digest()},
		flattenConfig(graph.AppliedThresholds), width, height)

	s.cacheMu.Lock()
	cached, hit := s.flowCache[key]
	s.cacheMu.Unlock()
	if hit {
		return cached, nil, nil
	}

	built, bad := layout.BuildFlow(graph, width, height)
	if len(bad) > 0 {
		return layout.FlowLayout{}, bad, nil
	}

	s.cacheMu.Lock()
	s.flowCache[key] = built
	s.cacheMu.Unlock()
	return built, nil, nil
}

// PlacePanel positions the floating detail panel near its anchor. A
// user-dragged override wins over automatic placement.
func (s *DashboardService) PlacePanel(sess *Session, anchor layout.Point, size layout.Size, viewport layout.Rect) layout.Placement {
	if p, ok := sess.PanelOverride(); ok {
		return layout.Placement{X: p.X, Y: p.Y, Anchor: "pinned"}
	}
	return layout.PlacePanel(anchor, size, viewport, s.chart.PanelMargin)
}

// Deactivate cancels any pending refresh for the session, keeping its
// thresholds and data intact. Used when the dashboard view unmounts.
func (s *DashboardService) Deactivate(sess *Session) {
	s.sched.Cancel(refreshKey(sess))
}

// CloseSession removes the session and drops its pending work.
func (s *DashboardService) CloseSession(id core.SessionID) {
	if sess, err := s.sessions.Get(id); err == nil {
		s.sched.Cancel(refreshKey(sess))
	}
	s.sessions.Remove(id)
}

func refreshKey(sess *Session) string {
	return "refresh:" + sess.ID.String()
}

func validateThreshold(metric threshold.Metric, value float64) error {
	if !metric.Valid() {
		return errors.InvalidInput("unknown metric: " + string(metric))
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return errors.InvalidInput("threshold value must be finite and non-negative")
	}
	return nil
}

// flattenConfig folds a threshold configuration into the flat map the
// layout key digest expects.
func flattenConfig(cfg threshold.Config) map[string]float64 {
	flat := make(map[string]float64)
	for m, v := range cfg.Global {
		flat["global/"+string(m)] = v
	}
	for g, metrics := range cfg.GroupOverrides {
		for m, v := range metrics {
			flat["group/"+g.String()+"/"+string(m)] = v
		}
	}
	for g, metrics := range cfg.IndividualOverrides {
		for m, v := range metrics {
			flat["individual/"+g.String()+"/"+string(m)] = v
		}
	}
	return flat
}
