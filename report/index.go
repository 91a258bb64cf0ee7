package report

import (
	"math"

	"github.com/spektr-org/doped/engine"
)

// maxEntropy is ln(4), the index of four equal shares.
var maxEntropy = math.Log(4)

// IndexPoint is the diversity index of one year.
type IndexPoint struct {
	Year       int     `json:"year"`
	DoPED      float64 `json:"doped"`
	Normalized float64 `json:"normalized"` // DoPED / ln(4)
}

// Index is ordered by increasing year.
type Index []IndexPoint

// ComputeIndex reduces the per-resource components to
// DoPED[year] = −Σ ShareLogShare[year] over the four resources, for every
// year of the result's totals. A resource with no row for a year, or with
// a zero share, adds nothing (0·ln 0 = 0); any other NaN component makes
// the year's index NaN.
func ComputeIndex(result *engine.Result) Index {
	if result == nil {
		return Index{}
	}

	sums := make(map[int]float64, len(result.Totals))
	for _, r := range engine.Resources {
		for _, row := range result.Tables.Get(r).Rows {
			if row.Year == 0 {
				continue
			}
			term := row.ShareLogShare
			if row.Share == 0 {
				term = 0
			}
			sums[row.Year] += term
		}
	}

	out := make(Index, 0, len(result.Totals))
	for _, yt := range result.Totals {
		doped := math.NaN()
		if s, ok := sums[yt.Year]; ok {
			doped = -s
		}
		out = append(out, IndexPoint{
			Year:       yt.Year,
			DoPED:      doped,
			Normalized: doped / maxEntropy,
		})
	}
	return out
}

// Defined returns the points whose index is a number.
func (idx Index) Defined() Index {
	out := make(Index, 0, len(idx))
	for _, p := range idx {
		if !math.IsNaN(p.DoPED) {
			out = append(out, p)
		}
	}
	return out
}
