package report

import (
	"fmt"
	"math"

	"github.com/spektr-org/doped/engine"
)

// ============================================================================
// TABLE BUILDER — Produces TableData from pipeline tables
// ============================================================================
// Every cell is a string. Numbers use FormatValue, so a missing value is an
// empty cell and never the text "NaN".
// ============================================================================

// resourceColumns lists the headers of a diversity table, minus the
// resource-specific ones that are filled in per table.
func resourceColumns(r engine.Resource) []Column {
	return []Column{
		{Key: engine.KeyPeriod, Label: "YYYYMM", Type: "text", Align: "left"},
		{Key: "exports", Label: r.ExportsColumn(), Type: "number", Align: "right"},
		{Key: "imports", Label: r.ImportsColumn(), Type: "number", Align: "right"},
		{Key: "production", Label: r.ProductionColumn(), Type: "number", Align: "right"},
		{Key: engine.KeyYear, Label: "Year", Type: "integer", Align: "right"},
		{Key: "net_import", Label: r.NetImportColumn(), Type: "number", Align: "right"},
		{Key: engine.KeySupply, Label: r.SupplyColumn(), Type: "number", Align: "right"},
		{Key: "share", Label: "Share", Type: "number", Align: "right"},
		{Key: "log_share", Label: "LogShare", Type: "number", Align: "right"},
		{Key: "share_log_share", Label: "ShareLogShare", Type: "number", Align: "right"},
	}
}

// ResourceRow renders one diversity row in the order of resourceColumns.
func ResourceRow(row engine.DiversityRow) []string {
	return []string{
		row.Period,
		FormatValue(row.Exports),
		FormatValue(row.Imports),
		FormatValue(row.Production),
		FormatYear(row.Year),
		FormatValue(row.NetImport),
		FormatValue(row.Supply),
		FormatValue(row.Share),
		FormatValue(row.LogShare),
		FormatValue(row.ShareLogShare),
	}
}

// BuildResourceTable produces one row per annual period of t.
func BuildResourceTable(t engine.DiversityTable) *TableData {
	rows := make([][]string, 0, len(t.Rows))
	var supply float64
	var present int
	for _, row := range t.Rows {
		rows = append(rows, ResourceRow(row))
		if !math.IsNaN(row.Supply) {
			supply += row.Supply
			present++
		}
	}

	return &TableData{
		Title:   t.Resource.String() + " diversity components",
		Columns: resourceColumns(t.Resource),
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Total (%s years)", FormatInt(present)),
			Values: map[string]string{
				engine.KeySupply: FormatValue(supply),
			},
		},
	}
}

// BuildTotalsTable produces one row per year of totals.
func BuildTotalsTable(totals engine.YearlyTotals) *TableData {
	rows := make([][]string, 0, len(totals))
	var missing int
	for _, yt := range totals {
		rows = append(rows, []string{FormatYear(yt.Year), FormatValue(yt.TotalSupply)})
		if math.IsNaN(yt.TotalSupply) {
			missing++
		}
	}

	return &TableData{
		Title: "Total primary energy supply",
		Columns: []Column{
			{Key: engine.KeyYear, Label: "Year", Type: "integer", Align: "right"},
			{Key: "total_supply", Label: "Total Supply", Type: "number", Align: "right"},
		},
		Rows: rows,
		Summary: &Summary{
			Label: fmt.Sprintf("%s years", FormatInt(len(totals))),
			Values: map[string]string{
				"missing": FormatInt(missing),
			},
		},
	}
}

// BuildIndexTable produces one row per year of the index.
func BuildIndexTable(idx Index) *TableData {
	rows := make([][]string, 0, len(idx))
	for _, p := range idx {
		rows = append(rows, []string{FormatYear(p.Year), FormatValue(p.DoPED), FormatValue(p.Normalized)})
	}

	table := &TableData{
		Title: "Degree of primary energy diversity",
		Columns: []Column{
			{Key: engine.KeyYear, Label: "Year", Type: "integer", Align: "right"},
			{Key: "doped", Label: "DoPED", Type: "number", Align: "right"},
			{Key: "normalized", Label: "Normalized", Type: "number", Align: "right"},
		},
		Rows: rows,
	}

	if defined := idx.Defined(); len(defined) > 0 {
		var sum float64
		for _, p := range defined {
			sum += p.DoPED
		}
		table.Summary = &Summary{
			Label: fmt.Sprintf("Mean (%s years)", FormatInt(len(defined))),
			Values: map[string]string{
				"doped":      FormatValue(sum / float64(len(defined))),
				"normalized": FormatValue(sum / float64(len(defined)) / maxEntropy),
			},
		}
	}
	return table
}
