package engine

import (
	"math"
	"strconv"
)

// ============================================================================
// AGGREGATORS — Grouping and summation via RecordView
// ============================================================================
// All functions operate on RecordView — zero-copy access to any data source.
// Grouping produces SubViews (index lists into parent view).
// ============================================================================

// groupBySingle groups view rows by one dimension, in first-seen order.
func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		sub := newSubView(view, grouped[key])
		groups = append(groups, Group{
			Key:   key,
			Count: sub.Len(),
			View:  sub,
		})
	}
	return groups
}

// SumMeasure sums a named measure across a view with plain float addition:
// a NaN anywhere makes the sum NaN. An empty view sums to 0.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// SumPresent sums the non-NaN values of a measure. It returns NaN when the
// view holds no present value.
func SumPresent(view RecordView, measure string) float64 {
	var total float64
	found := false
	for i := 0; i < view.Len(); i++ {
		v := view.Measure(i, measure)
		if math.IsNaN(v) {
			continue
		}
		total += v
		found = true
	}
	if !found {
		return math.NaN()
	}
	return total
}

// ============================================================================
// YEARLY TOTALS
// ============================================================================

// AggregateYears sums Supply across the four resources for every year of
// the configured range. A resource without a row for a year contributes 0;
// NaN supplies propagate into that year's total.
func AggregateYears(tables SupplyTables, opts ...Option) YearlyTotals {
	cfg := applyOptions(opts)
	return aggregateYears(tables, cfg)
}

func aggregateYears(tables SupplyTables, cfg *config) YearlyTotals {
	var partials [resourceCount]map[int]float64
	for _, r := range Resources {
		view := supplyRowAdapter.Bind(tables[r].Rows)
		sums := make(map[int]float64)
		for _, g := range groupBySingle(view, KeyYear) {
			year, err := strconv.Atoi(g.Key)
			if err != nil {
				continue // missing Year
			}
			sums[year] = SumMeasure(g.View, KeySupply)
		}
		partials[r] = sums
	}

	if cfg.LastYear < cfg.FirstYear {
		return YearlyTotals{}
	}

	totals := make(YearlyTotals, 0, cfg.LastYear-cfg.FirstYear+1)
	for year := cfg.FirstYear; year <= cfg.LastYear; year++ {
		var total float64
		for _, r := range Resources {
			total += partials[r][year] // absent → 0
		}
		totals = append(totals, YearlyTotal{Year: year, TotalSupply: total})
	}
	return totals
}
