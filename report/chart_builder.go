package report

import (
	"github.com/spektr-org/doped/engine"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from a pipeline result
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// BuildShareChart produces a stacked area chart of each resource's share of
// total supply, one series per resource and one point per year of totals.
// Years without a row or with a missing share have a nil value.
func BuildShareChart(result *engine.Result) *ChartConfig {
	if result == nil || len(result.Totals) == 0 {
		return nil
	}

	config := &ChartConfig{
		ChartType:  "area",
		Title:      "Share of total primary energy supply",
		XAxis:      "Year",
		YAxis:      "Share",
		ShowLegend: true,
		ShowGrid:   true,
	}

	for _, r := range engine.Resources {
		config.Series = append(config.Series, buildShareSeries(result.Tables.Get(r), result.Totals))
	}
	config.Colors = assignColors(len(config.Series))
	for i := range config.Series {
		config.Series[i].Color = config.Colors[i]
	}
	return config
}

// BuildIndexChart produces a line chart of the index over the years.
func BuildIndexChart(idx Index) *ChartConfig {
	if len(idx) == 0 {
		return nil
	}

	points := make([]ChartPoint, 0, len(idx))
	for _, p := range idx {
		points = append(points, ChartPoint{Label: FormatYear(p.Year), Value: pointValue(p.DoPED)})
	}

	return &ChartConfig{
		ChartType:  "line",
		Title:      "Degree of primary energy diversity",
		XAxis:      "Year",
		YAxis:      "DoPED",
		Series:     []ChartSeries{{Name: "DoPED", Data: points, Color: defaultColors[0]}},
		Colors:     assignColors(1),
		ShowLegend: false,
		ShowGrid:   true,
	}
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

func buildShareSeries(t engine.DiversityTable, totals engine.YearlyTotals) ChartSeries {
	byYear := make(map[int]float64, len(t.Rows))
	for _, row := range t.Rows {
		if row.Year != 0 {
			byYear[row.Year] = row.Share
		}
	}

	points := make([]ChartPoint, 0, len(totals))
	for _, yt := range totals {
		var value *float64
		if share, ok := byYear[yt.Year]; ok {
			value = pointValue(share)
		}
		points = append(points, ChartPoint{Label: FormatYear(yt.Year), Value: value})
	}

	return ChartSeries{Name: t.Resource.String(), Data: points}
}

func assignColors(count int) []string {
	colors := make([]string, count)
	for i := 0; i < count; i++ {
		colors[i] = defaultColors[i%len(defaultColors)]
	}
	return colors
}
