package engine

import "math"

// ============================================================================
// DIVERSITY — share, log-share and their product per resource-year
// ============================================================================

// Diversity computes, for every row of t, Share = Supply / TotalSupply[Year],
// LogShare = ln(Share) and ShareLogShare = Share × LogShare. Rows are
// matched to totals by Year, so every row of a year gets that year's total.
// A zero or missing total, a missing Year and a non-positive Share all
// yield NaN instead of an error.
func Diversity(t SupplyTable, totals YearlyTotals) DiversityTable {
	out := DiversityTable{Resource: t.Resource, Rows: make([]DiversityRow, 0, len(t.Rows))}
	for _, row := range t.Rows {
		share := nan
		if total, ok := totals.Lookup(row.Year); ok && row.Year != 0 {
			share = ShareOf(row.Supply, total)
		}
		logShare := LogShare(share)
		out.Rows = append(out.Rows, DiversityRow{
			SupplyRow:     row,
			Share:         share,
			LogShare:      logShare,
			ShareLogShare: share * logShare,
		})
	}
	return out
}

// ShareOf divides supply by total, returning NaN when total is zero or
// either operand is missing.
func ShareOf(supply, total float64) float64 {
	if total == 0 || math.IsNaN(total) || math.IsNaN(supply) {
		return nan
	}
	return supply / total
}

// LogShare is the natural log of share, NaN when share is not positive.
func LogShare(share float64) float64 {
	if math.IsNaN(share) || share <= 0 {
		return nan
	}
	return math.Log(share)
}
