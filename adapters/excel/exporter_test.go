package excel

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"saevis/domain/distribution"
	"saevis/domain/threshold"
	"saevis/internal/testkit"
	"saevis/ports"
)

func TestWorkbookRoundTrip(t *testing.T) {
	provider := testkit.NewDemoProvider(3, 400)
	store := threshold.NewStore(map[threshold.Metric]float64{
		threshold.MetricSemDistMean: 0.10,
	})
	store.SetGroup("split_true", threshold.MetricSemDistMean, 0.35)
	cfg := store.Snapshot()

	dist, err := provider.Distribution(context.Background(), ports.FilterSelection{}, threshold.MetricSemDistMean, cfg, 10)
	require.NoError(t, err)
	graph, err := provider.FlowGraph(context.Background(), ports.FilterSelection{}, cfg)
	require.NoError(t, err)

	data, err := NewExporter().Workbook(Export{
		Filters:    map[string]string{"sae_model": "gemma-2b-res"},
		Thresholds: cfg,
		Distributions: map[threshold.Metric]distribution.Distribution{
			threshold.MetricSemDistMean: dist,
		},
		Graph: &graph,
	})
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Thresholds", "Distributions", "Flow"}, f.GetSheetList())

	header, err := f.GetCellValue("Thresholds", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Layer", header)

	// The group override written above must appear in the sheet.
	rows, err := f.GetRows("Thresholds")
	require.NoError(t, err)
	found := false
	for _, row := range rows {
		if len(row) >= 3 && row[0] == "group" && row[1] == "split_true" && row[2] == string(threshold.MetricSemDistMean) {
			found = true
		}
	}
	assert.True(t, found, "group override row missing")
}
