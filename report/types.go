// Package report turns pipeline results into render-ready tables, chart
// configs and text summaries, and reduces the per-resource components into
// the final diversity index.
package report

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title" yaml:"title"`
	Columns []Column   `json:"columns" yaml:"columns"`
	Rows    [][]string `json:"rows" yaml:"rows"`
	Summary *Summary   `json:"summary,omitempty" yaml:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
	Type  string `json:"type" yaml:"type"`   // "text", "integer", "number"
	Align string `json:"align" yaml:"align"` // "left", "center", "right"
}

// Headers returns the column labels in order.
func (t *TableData) Headers() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Label
	}
	return out
}

// Summary provides totals or aggregations for a table.
type Summary struct {
	Label  string            `json:"label" yaml:"label"`
	Values map[string]string `json:"values" yaml:"values"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  string        `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point. Missing values are null.
type ChartPoint struct {
	Label string   `json:"label"`
	Value *float64 `json:"value"`
}

// ============================================================================
// TEXT TYPES
// ============================================================================

// TextData is a one-line answer about the index over the covered years.
type TextData struct {
	Value    string      `json:"value" yaml:"value"`
	RawValue float64     `json:"rawValue" yaml:"rawValue"`
	Period   string      `json:"period" yaml:"period"`
	Count    int         `json:"count" yaml:"count"` // years with a defined index
	Growth   *GrowthData `json:"growth,omitempty" yaml:"growth,omitempty"`
}

// GrowthData contains change-over-time metrics.
type GrowthData struct {
	EarliestValue float64 `json:"earliestValue" yaml:"earliestValue"`
	LatestValue   float64 `json:"latestValue" yaml:"latestValue"`
	EarliestYear  int     `json:"earliestYear" yaml:"earliestYear"`
	LatestYear    int     `json:"latestYear" yaml:"latestYear"`
	ChangeAmount  float64 `json:"changeAmount" yaml:"changeAmount"`
	ChangePercent float64 `json:"changePercent" yaml:"changePercent"`
	Direction     string  `json:"direction" yaml:"direction"` // "increased", "decreased", "unchanged", "insufficient data"
}
