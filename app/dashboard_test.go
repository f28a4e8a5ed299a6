package app

import (
	"context"
	"fmt"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saevis/domain/distribution"
	"saevis/domain/flowgraph"
	"saevis/domain/threshold"
	"saevis/internal"
	"saevis/internal/coalesce"
	"saevis/internal/config"
	"saevis/internal/layout"
	"saevis/internal/testkit"
	"saevis/ports"
)

// countingProvider wraps another provider and counts flow-graph fetches.
type countingProvider struct {
	ports.DataProvider
	flowCalls atomic.Int64
}

func (p *countingProvider) FlowGraph(ctx context.Context, sel ports.FilterSelection, cfg threshold.Config) (flowgraph.Graph, error) {
	p.flowCalls.Add(1)
	return p.DataProvider.FlowGraph(ctx, sel, cfg)
}

// failingProvider errors on every data fetch.
type failingProvider struct{}

func (failingProvider) FilterOptions(ctx context.Context) (ports.FilterOptions, error) {
	return ports.FilterOptions{}, fmt.Errorf("upstream unavailable")
}

func (failingProvider) Distribution(ctx context.Context, sel ports.FilterSelection, metric threshold.Metric, cfg threshold.Config, bins int) (distribution.Distribution, error) {
	return distribution.Distribution{}, fmt.Errorf("upstream unavailable")
}

func (failingProvider) FlowGraph(ctx context.Context, sel ports.FilterSelection, cfg threshold.Config) (flowgraph.Graph, error) {
	return flowgraph.Graph{}, fmt.Errorf("upstream unavailable")
}

func testConfig() *config.Config {
	return &config.Config{
		Engine: config.EngineConfig{
			DebounceDelay:           300 * time.Millisecond,
			DefaultFeatureSplitting: 0.5,
			DefaultSemDistMean:      0.10,
			DefaultScore:            0.5,
			HistogramBins:           20,
		},
		Chart: config.ChartConfig{
			HistogramWidth:  420,
			HistogramHeight: 160,
			FlowWidth:       960,
			FlowHeight:      540,
			PanelMargin:     12,
		},
	}
}

func newTestService(provider ports.DataProvider, clock ports.Clock) *DashboardService {
	cfg := testConfig()
	sessions := NewSessionManager(map[threshold.Metric]float64{
		threshold.MetricFeatureSplitting: cfg.Engine.DefaultFeatureSplitting,
		threshold.MetricSemDistMean:      cfg.Engine.DefaultSemDistMean,
	})
	sched := coalesce.NewScheduler(clock, cfg.Engine.DebounceDelay)
	return NewDashboardService(provider, sched, sessions, internal.NewLogger(internal.LogLevelError), cfg)
}

func TestRefreshPopulatesSession(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 800), testkit.NewFakeClock())
	sess := svc.Sessions().Create()

	err := svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{SAEModel: "gemma-2b-res"})
	require.NoError(t, err)

	for _, m := range threshold.AllMetrics() {
		d, ok := sess.Distribution(m)
		require.True(t, ok, "metric %s", m)
		assert.Equal(t, 800, d.Total())
	}
	g, ok := sess.Graph()
	require.True(t, ok)
	assert.Empty(t, g.Validate())
	assert.Empty(t, sess.LastIssues())
}

func TestEditWithoutFilterDoesNotRefresh(t *testing.T) {
	provider := &countingProvider{DataProvider: testkit.NewDemoProvider(1, 200)}
	clock := testkit.NewFakeClock()
	svc := newTestService(provider, clock)
	sess := svc.Sessions().Create()

	require.NoError(t, svc.SetGlobal(sess, threshold.MetricSemDistMean, 0.2))
	clock.Advance(time.Second)

	assert.Equal(t, int64(0), provider.flowCalls.Load())
	// The value still sticks for later.
	assert.Equal(t, 0.2, sess.Store.Effective("split_true_semdist_high", threshold.MetricSemDistMean))
}

func TestEditBurstCoalesces(t *testing.T) {
	provider := &countingProvider{DataProvider: testkit.NewDemoProvider(1, 200)}
	clock := testkit.NewFakeClock()
	svc := newTestService(provider, clock)
	sess := svc.Sessions().Create()

	require.NoError(t, svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{Scorer: "fuzz"}))
	require.Equal(t, int64(1), provider.flowCalls.Load())

	// A slider drag: many writes inside one settle window.
	for i := 1; i <= 10; i++ {
		require.NoError(t, svc.SetGlobal(sess, threshold.MetricSemDistMean, float64(i)/100))
		clock.Advance(50 * time.Millisecond)
	}
	assert.Equal(t, int64(1), provider.flowCalls.Load(), "no refresh while edits keep arriving")

	clock.Advance(300 * time.Millisecond)
	assert.Equal(t, int64(2), provider.flowCalls.Load(), "exactly one refresh after the burst settles")

	g, ok := sess.Graph()
	require.True(t, ok)
	assert.Equal(t, 0.10, g.AppliedThresholds.Global[threshold.MetricSemDistMean])
}

func TestFailedRefreshKeepsLastKnownGood(t *testing.T) {
	good := testkit.NewDemoProvider(1, 300)
	clock := testkit.NewFakeClock()
	svc := newTestService(good, clock)
	sess := svc.Sessions().Create()
	require.NoError(t, svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{SAEModel: "gemma-2b-res"}))

	before, ok := sess.Graph()
	require.True(t, ok)

	// Upstream goes away; the session must keep serving the old data.
	svc.provider = failingProvider{}
	err := svc.Refresh(context.Background(), sess)
	require.Error(t, err)

	after, ok := sess.Graph()
	require.True(t, ok)
	assert.Equal(t, before.Digest(), after.Digest())

	_, ok = sess.Distribution(threshold.MetricScoreFuzz)
	assert.True(t, ok)
}

func TestDeactivateCancelsPendingRefresh(t *testing.T) {
	provider := &countingProvider{DataProvider: testkit.NewDemoProvider(1, 200)}
	clock := testkit.NewFakeClock()
	svc := newTestService(provider, clock)
	sess := svc.Sessions().Create()
	require.NoError(t, svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{Scorer: "fuzz"}))

	require.NoError(t, svc.SetGlobal(sess, threshold.MetricScoreFuzz, 0.7))
	svc.Deactivate(sess)
	clock.Advance(time.Second)

	assert.Equal(t, int64(1), provider.flowCalls.Load())
}

func TestCloseSessionRemovesIt(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 200), testkit.NewFakeClock())
	sess := svc.Sessions().Create()
	require.Equal(t, 1, svc.Sessions().Count())

	svc.CloseSession(sess.ID)
	assert.Equal(t, 0, svc.Sessions().Count())
	_, err := svc.Sessions().Get(sess.ID)
	assert.Error(t, err)
}

func TestHistogramViewBeforeData(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 200), testkit.NewFakeClock())
	sess := svc.Sessions().Create()

	_, _, err := svc.HistogramView(sess, threshold.MetricScoreFuzz, 0, 0)
	assert.Error(t, err)
}

func TestHistogramViewDerivesLayout(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 500), testkit.NewFakeClock())
	sess := svc.Sessions().Create()
	require.NoError(t, svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{SAEModel: "gemma-2b-res"}))

	hl, issues, err := svc.HistogramView(sess, threshold.MetricScoreFuzz, 0, 0)
	require.NoError(t, err)
	require.Empty(t, issues)
	assert.Equal(t, 420.0, hl.Width)
	assert.Equal(t, 160.0, hl.Height)
	assert.Equal(t, 0.5, hl.Threshold)
	assert.NotEmpty(t, hl.Bins)

	// A second derivation with identical inputs is served from the cache
	// and must be identical.
	again, issues, err := svc.HistogramView(sess, threshold.MetricScoreFuzz, 0, 0)
	require.NoError(t, err)
	require.Empty(t, issues)
	assert.Equal(t, hl, again)
}

func TestStackedViewAllMetrics(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 500), testkit.NewFakeClock())
	sess := svc.Sessions().Create()
	require.NoError(t, svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{SAEModel: "gemma-2b-res"}))

	sl, issues, err := svc.StackedView(sess, nil, 0, 0)
	require.NoError(t, err)
	require.Empty(t, issues)
	assert.Len(t, sl.Charts, len(threshold.AllMetrics()))
	assert.Greater(t, sl.TotalHeight, 0.0)
}

func TestFlowViewDerivesLayout(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 500), testkit.NewFakeClock())
	sess := svc.Sessions().Create()
	require.NoError(t, svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{SAEModel: "gemma-2b-res"}))

	fl, issues, err := svc.FlowView(sess, 0, 0)
	require.NoError(t, err)
	require.Empty(t, issues)
	assert.Equal(t, 960.0, fl.Width)
	assert.NotEmpty(t, fl.Nodes)
	assert.NotEmpty(t, fl.Links)
}

func TestPlacePanelHonorsOverride(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 200), testkit.NewFakeClock())
	sess := svc.Sessions().Create()

	viewport := layout.Rect{X: 0, Y: 0, Width: 1280, Height: 720}
	auto := svc.PlacePanel(sess, layout.Point{X: 400, Y: 300}, layout.Size{Width: 200, Height: 120}, viewport)
	assert.False(t, auto.Clamped)

	sess.SetPanelOverride(layout.Point{X: 33, Y: 44})
	pinned := svc.PlacePanel(sess, layout.Point{X: 400, Y: 300}, layout.Size{Width: 200, Height: 120}, viewport)
	assert.Equal(t, 33.0, pinned.X)
	assert.Equal(t, 44.0, pinned.Y)
	assert.Equal(t, "pinned", pinned.Anchor)

	sess.ClearPanelOverride()
	restored := svc.PlacePanel(sess, layout.Point{X: 400, Y: 300}, layout.Size{Width: 200, Height: 120}, viewport)
	assert.Equal(t, auto, restored)
}

func TestMembersFromCurrentGraph(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 2000), testkit.NewFakeClock())
	sess := svc.Sessions().Create()

	_, err := svc.Members(sess, "split_true", threshold.MetricSemDistMean)
	assert.Error(t, err, "no graph yet")

	require.NoError(t, svc.ApplyFilters(context.Background(), sess, ports.FilterSelection{SAEModel: "gemma-2b-res"}))

	members, err := svc.Members(sess, "split_true", threshold.MetricSemDistMean)
	require.NoError(t, err)
	for _, id := range members {
		assert.Equal(t, "split_true", string(threshold.GroupFor(id, threshold.MetricSemDistMean)))
	}
	assert.NotEmpty(t, members)
}

func TestRejectsBadThresholdInput(t *testing.T) {
	svc := newTestService(testkit.NewDemoProvider(1, 200), testkit.NewFakeClock())
	sess := svc.Sessions().Create()

	assert.Error(t, svc.SetGlobal(sess, "bogus", 0.5))
	assert.Error(t, svc.SetGlobal(sess, threshold.MetricScoreFuzz, -0.1))
	assert.Error(t, svc.SetIndividual(sess, "root", threshold.MetricScoreFuzz, math.NaN()))
}
