package report

import (
	"fmt"
	"math"
)

// ============================================================================
// TEXT BUILDER — Produces TextData describing the index
// ============================================================================

// BuildSummary reports how the index moved between the earliest and latest
// years that have a defined value.
func BuildSummary(idx Index) *TextData {
	defined := idx.Defined()
	if len(defined) == 0 {
		return &TextData{
			Value:  "No data",
			Period: DerivePeriod(idx),
			Count:  0,
		}
	}

	earliest := defined[0]
	latest := defined[len(defined)-1]

	if len(defined) < 2 {
		return &TextData{
			Value:    FormatValue(latest.DoPED),
			RawValue: latest.DoPED,
			Period:   FormatYear(latest.Year),
			Count:    1,
			Growth: &GrowthData{
				EarliestValue: latest.DoPED,
				LatestValue:   latest.DoPED,
				EarliestYear:  latest.Year,
				LatestYear:    latest.Year,
				Direction:     "insufficient data",
			},
		}
	}

	changeAmount := latest.DoPED - earliest.DoPED
	var changePercent float64
	if earliest.DoPED != 0 {
		changePercent = (changeAmount / earliest.DoPED) * 100
	}

	direction := "unchanged"
	if changePercent > 0.5 {
		direction = "increased"
	} else if changePercent < -0.5 {
		direction = "decreased"
	}

	absPercent := math.Abs(changePercent)
	var displayValue string
	switch direction {
	case "increased":
		displayValue = fmt.Sprintf("↑ %.1f%%", absPercent)
	case "decreased":
		displayValue = fmt.Sprintf("↓ %.1f%%", absPercent)
	default:
		displayValue = "→ No change"
	}

	return &TextData{
		Value:    displayValue,
		RawValue: changePercent,
		Period:   fmt.Sprintf("%d – %d", earliest.Year, latest.Year),
		Count:    len(defined),
		Growth: &GrowthData{
			EarliestValue: earliest.DoPED,
			LatestValue:   latest.DoPED,
			EarliestYear:  earliest.Year,
			LatestYear:    latest.Year,
			ChangeAmount:  changeAmount,
			ChangePercent: changePercent,
			Direction:     direction,
		},
	}
}

// DerivePeriod builds a human-readable period string from an index.
func DerivePeriod(idx Index) string {
	switch len(idx) {
	case 0:
		return "No data"
	case 1:
		return FormatYear(idx[0].Year)
	}
	return fmt.Sprintf("%d – %d", idx[0].Year, idx[len(idx)-1].Year)
}
