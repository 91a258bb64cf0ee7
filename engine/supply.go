package engine

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// SUPPLY — annual rows, net import, supply
// ============================================================================

var nan = math.NaN()

// annualMarker is the month field of the year-end summary row.
const annualMarker = "13"

// Supply restricts t to the annual-marker rows of the configured year range
// and derives Year, NetImport = Imports − Exports and
// Supply = Production-equivalent + NetImport. Missing values propagate.
//
// Supply returns ErrSchemaMismatch when r is not a known resource or when t
// was reshaped for a different resource.
func Supply(t ResourceTable, r Resource, opts ...Option) (SupplyTable, error) {
	return supply(t, r, applyOptions(opts))
}

func supply(t ResourceTable, r Resource, cfg *config) (SupplyTable, error) {
	if _, err := r.spec(); err != nil {
		return SupplyTable{}, err
	}
	if t.Resource != r {
		return SupplyTable{}, fmt.Errorf("%w: table holds %s columns, want %s",
			ErrSchemaMismatch, t.Resource.ProductionColumn(), r.ProductionColumn())
	}

	lower, upper := cfg.periodBounds()
	out := SupplyTable{Resource: r, Rows: make([]SupplyRow, 0)}

	for _, row := range t.Rows {
		if !isAnnualRow(row.Period, lower, upper) {
			continue
		}
		netImport := row.Imports - row.Exports
		out.Rows = append(out.Rows, SupplyRow{
			PeriodRow: row,
			Year:      parseYear(row.Period),
			NetImport: netImport,
			Supply:    row.Production + netImport,
		})
	}
	return out, nil
}

// isAnnualRow reports whether period is a year-end summary within
// [lower, upper], compared as strings.
func isAnnualRow(period, lower, upper string) bool {
	return strings.HasSuffix(period, annualMarker) && period >= lower && period <= upper
}

// parseYear reads the first four characters of a period. It returns 0 for
// a period that is too short or not numeric.
func parseYear(period string) int {
	if len(period) < 4 {
		return 0
	}
	year, err := strconv.Atoi(period[:4])
	if err != nil || year <= 0 {
		return 0
	}
	return year
}

// countMissing returns how many rows of t have a NaN in each derived column.
func countMissing(t SupplyTable) map[string]int {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if math.IsNaN(row.Exports) {
			counts[t.Resource.ExportsColumn()]++
		}
		if math.IsNaN(row.Imports) {
			counts[t.Resource.ImportsColumn()]++
		}
		if math.IsNaN(row.Production) {
			counts[t.Resource.ProductionColumn()]++
		}
		if math.IsNaN(row.Supply) {
			counts[t.Resource.SupplyColumn()]++
		}
	}
	return counts
}
