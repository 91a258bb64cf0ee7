package engine

import (
	"sort"
)

// ============================================================================
// RESHAPER — one row per period, one column per series kind
// ============================================================================

// Reshape selects the records whose description contains the resource name
// (case-insensitive) and pivots them into one row per period with the fixed
// Exports / Imports / Production-equivalent columns. Values sharing a
// (period, series) are summed; NaN values are skipped, and a cell with no
// present value is NaN. Rows are ordered by period.
func Reshape(unified RecordView, r Resource) (ResourceTable, error) {
	spec, err := r.spec()
	if err != nil {
		return ResourceTable{}, err
	}

	matched := ContainsFilter(unified, KeyDescription, spec.name)
	table := ResourceTable{Resource: r, Rows: make([]PeriodRow, 0)}

	for _, g := range groupBySingle(matched, KeyPeriod) {
		series := groupBySingle(g.View, KeyDescription)
		cells := make(map[string]float64, len(series))
		for _, sg := range series {
			cells[sg.Key] = SumPresent(sg.View, KeyValue)
		}

		table.Rows = append(table.Rows, PeriodRow{
			Period:     g.Key,
			Exports:    cellOrMissing(cells, r.ExportsColumn()),
			Imports:    cellOrMissing(cells, r.ImportsColumn()),
			Production: cellOrMissing(cells, r.ProductionColumn()),
		})
	}

	sort.SliceStable(table.Rows, func(i, j int) bool {
		return table.Rows[i].Period < table.Rows[j].Period
	})
	return table, nil
}

func cellOrMissing(cells map[string]float64, column string) float64 {
	if v, ok := cells[column]; ok {
		return v
	}
	return nan
}
