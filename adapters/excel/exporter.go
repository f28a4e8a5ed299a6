package excel

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"

	"saevis/domain/core"
	"saevis/domain/distribution"
	"saevis/domain/flowgraph"
	"saevis/domain/threshold"
)

// Export is everything a workbook snapshot carries: the filters and
// thresholds the data was fetched under, plus the data itself.
type Export struct {
	Filters       map[string]string
	Thresholds    threshold.Config
	Distributions map[threshold.Metric]distribution.Distribution
	Graph         *flowgraph.Graph
}

// Exporter renders a dashboard snapshot as an xlsx workbook.
type Exporter struct{}

func NewExporter() Exporter {
	return Exporter{}
}

// Workbook builds the snapshot workbook and returns its bytes. Sheets:
// Thresholds (layered configuration), Distributions (per-metric bins and
// summary), Flow (nodes then links).
func (Exporter) Workbook(exp Export) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeThresholdSheet(f, "Sheet1", exp); err != nil {
		return nil, err
	}
	if err := f.SetSheetName("Sheet1", "Thresholds"); err != nil {
		return nil, err
	}
	if err := writeDistributionSheet(f, exp.Distributions); err != nil {
		return nil, err
	}
	if exp.Graph != nil {
		if err := writeFlowSheet(f, exp.Graph); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeThresholdSheet(f *excelize.File, sheet string, exp Export) error {
	row := 1
	if err := writeRow(f, sheet, row, "Layer", "Target", "Metric", "Value"); err != nil {
		return err
	}
	row++

	for _, m := range threshold.AllMetrics() {
		if v, ok := exp.Thresholds.Global[m]; ok {
			if err := writeRow(f, sheet, row, "global", "", string(m), v); err != nil {
				return err
			}
			row++
		}
	}
	for _, g := range sortedGroups(exp.Thresholds.GroupOverrides) {
		for _, m := range threshold.AllMetrics() {
			if v, ok := exp.Thresholds.GroupOverrides[g][m]; ok {
				if err := writeRow(f, sheet, row, "group", g.String(), string(m), v); err != nil {
					return err
				}
				row++
			}
		}
	}
	for _, g := range sortedGroups(exp.Thresholds.IndividualOverrides) {
		for _, m := range threshold.AllMetrics() {
			if v, ok := exp.Thresholds.IndividualOverrides[g][m]; ok {
				if err := writeRow(f, sheet, row, "individual", g.String(), string(m), v); err != nil {
					return err
				}
				row++
			}
		}
	}

	// Filter context at the bottom, separated by a blank row.
	row++
	keys := make([]string, 0, len(exp.Filters))
	for k := range exp.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if err := writeRow(f, sheet, row, "filter", k, exp.Filters[k], ""); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeDistributionSheet(f *excelize.File, dists map[threshold.Metric]distribution.Distribution) error {
	sheet := "Distributions"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	row := 1
	if err := writeRow(f, sheet, row, "Metric", "Bin Start", "Bin End", "Count"); err != nil {
		return err
	}
	row++

	for _, m := range threshold.AllMetrics() {
		d, ok := dists[m]
		if !ok {
			continue
		}
		for i, count := range d.Counts {
			if err := writeRow(f, sheet, row, string(m), d.Edges[i], d.Edges[i+1], count); err != nil {
				return err
			}
			row++
		}
		if err := writeRow(f, sheet, row, string(m)+" summary",
			fmt.Sprintf("min=%g max=%g", d.Summary.Min, d.Summary.Max),
			fmt.Sprintf("mean=%g median=%g", d.Summary.Mean, d.Summary.Median),
			fmt.Sprintf("stddev=%g n=%d", d.Summary.StdDev, d.Summary.Count)); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeFlowSheet(f *excelize.File, g *flowgraph.Graph) error {
	sheet := "Flow"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	row := 1
	if err := writeRow(f, sheet, row, "Node", "Name", "Stage", "Value"); err != nil {
		return err
	}
	row++
	for _, n := range g.Nodes {
		if err := writeRow(f, sheet, row, n.ID.String(), n.Name, n.Stage, n.Value); err != nil {
			return err
		}
		row++
	}

	row++
	if err := writeRow(f, sheet, row, "Source", "Target", "Value", ""); err != nil {
		return err
	}
	row++
	for _, l := range g.Links {
		if err := writeRow(f, sheet, row, l.Source.String(), l.Target.String(), l.Value, ""); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	return nil
}

func sortedGroups(layer map[core.GroupID]map[threshold.Metric]float64) []core.GroupID {
	out := make([]core.GroupID, 0, len(layer))
	for g := range layer {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
