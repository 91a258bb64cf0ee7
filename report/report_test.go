package report

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/doped/engine"
)

// ============================================================================
// TEST DATA
// ============================================================================

// evenResult runs the pipeline over years where every resource supplies
// the same amount, plus one year where only coal has data.
func evenResult(t *testing.T) *engine.Result {
	t.Helper()
	var prod []engine.RawRecord
	for _, year := range []string{"1990", "1991"} {
		for _, r := range engine.Resources {
			prod = append(prod, engine.RawRecord{Period: year + "13", Value: 25, Description: r.ProductionColumn()})
		}
	}
	prod = append(prod, engine.RawRecord{Period: "199213", Value: 40, Description: engine.Coal.ProductionColumn()})

	var imp, exp []engine.RawRecord
	for _, r := range engine.Resources {
		for _, year := range []string{"1990", "1991", "1992"} {
			imp = append(imp, engine.RawRecord{Period: year + "13", Value: 0, Description: r.ImportsColumn()})
			exp = append(exp, engine.RawRecord{Period: year + "13", Value: 0, Description: r.ExportsColumn()})
		}
	}

	result, err := engine.Execute(prod, imp, exp, engine.WithYearRange(1990, 1993))
	require.NoError(t, err)
	return result
}

// ============================================================================
// INDEX
// ============================================================================

func TestComputeIndex(t *testing.T) {
	idx := ComputeIndex(evenResult(t))
	require.Len(t, idx, 4)

	assert.Equal(t, 1990, idx[0].Year)
	assert.InDelta(t, math.Log(4), idx[0].DoPED, 1e-12)
	assert.InDelta(t, 1.0, idx[0].Normalized, 1e-12)

	// 1992: only coal reports production, so the total is missing.
	assert.True(t, math.IsNaN(idx[2].DoPED))

	// 1993 has no rows at all.
	assert.True(t, math.IsNaN(idx[3].DoPED))
	assert.Len(t, idx.Defined(), 2)
}

func TestComputeIndexZeroShareAddsNothing(t *testing.T) {
	var prod, imp, exp []engine.RawRecord
	for _, r := range engine.Resources {
		v := 30.0
		if r == engine.Biomass {
			v = 0
		}
		prod = append(prod, engine.RawRecord{Period: "200013", Value: v, Description: r.ProductionColumn()})
		imp = append(imp, engine.RawRecord{Period: "200013", Value: 0, Description: r.ImportsColumn()})
		exp = append(exp, engine.RawRecord{Period: "200013", Value: 0, Description: r.ExportsColumn()})
	}
	result, err := engine.Execute(prod, imp, exp, engine.WithYearRange(2000, 2000))
	require.NoError(t, err)

	biomass := result.Tables.Get(engine.Biomass).Rows
	require.Len(t, biomass, 1)
	assert.Equal(t, 0.0, biomass[0].Share)
	assert.True(t, math.IsNaN(biomass[0].ShareLogShare), "the component itself stays undefined")

	idx := ComputeIndex(result)
	require.Len(t, idx, 1)
	assert.InDelta(t, math.Log(3), idx[0].DoPED, 1e-12, "three equal shares")
	assert.InDelta(t, math.Log(3)/math.Log(4), idx[0].Normalized, 1e-12)
}

func TestComputeIndexNil(t *testing.T) {
	assert.Empty(t, ComputeIndex(nil))
}

// ============================================================================
// TABLES
// ============================================================================

func TestBuildResourceTable(t *testing.T) {
	result := evenResult(t)
	table := BuildResourceTable(result.Tables.Get(engine.NaturalGas))

	require.Len(t, table.Columns, 10)
	assert.Equal(t, "Natural Gas (Dry) Production", table.Columns[3].Label)
	assert.Equal(t, "Natural Gas Supply", table.Columns[6].Label)

	require.Len(t, table.Rows, 3)
	assert.Equal(t, []string{"199013", "0", "0", "25", "1990", "0", "25", "0.25", "-1.38629", "-0.346574"}, table.Rows[0])

	// Missing production in 1992 renders as empty cells.
	assert.Equal(t, "", table.Rows[2][3])
	assert.Equal(t, "", table.Rows[2][6])
	assert.Equal(t, "50", table.Summary.Values[engine.KeySupply])
}

func TestBuildTotalsTable(t *testing.T) {
	table := BuildTotalsTable(evenResult(t).Totals)
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{"1990", "100"}, table.Rows[0])
	assert.Equal(t, []string{"1992", ""}, table.Rows[2])
	assert.Equal(t, []string{"1993", "0"}, table.Rows[3])
	assert.Equal(t, "1", table.Summary.Values["missing"])
	assert.Equal(t, []string{"Year", "Total Supply"}, table.Headers())
}

func TestBuildIndexTable(t *testing.T) {
	table := BuildIndexTable(ComputeIndex(evenResult(t)))
	require.Len(t, table.Rows, 4)
	assert.Equal(t, []string{"1990", "1.38629", "1"}, table.Rows[0])
	require.NotNil(t, table.Summary)
	assert.Equal(t, "Mean (2 years)", table.Summary.Label)

	empty := BuildIndexTable(nil)
	assert.Nil(t, empty.Summary)
	assert.Empty(t, empty.Rows)
}

// ============================================================================
// CHARTS
// ============================================================================

func TestBuildShareChart(t *testing.T) {
	chart := BuildShareChart(evenResult(t))
	require.NotNil(t, chart)
	assert.Equal(t, "area", chart.ChartType)
	require.Len(t, chart.Series, 4)

	coal := chart.Series[0]
	assert.Equal(t, "Coal", coal.Name)
	require.Len(t, coal.Data, 4)
	require.NotNil(t, coal.Data[0].Value)
	assert.Equal(t, 0.25, *coal.Data[0].Value)
	assert.Nil(t, coal.Data[2].Value, "1992 share is missing")
	assert.Nil(t, coal.Data[3].Value, "1993 has no coal row")
	assert.Equal(t, defaultColors[0], coal.Color)

	assert.Nil(t, BuildShareChart(nil))
}

func TestBuildIndexChart(t *testing.T) {
	chart := BuildIndexChart(ComputeIndex(evenResult(t)))
	require.NotNil(t, chart)
	require.Len(t, chart.Series, 1)
	assert.Equal(t, "1990", chart.Series[0].Data[0].Label)
	assert.Nil(t, BuildIndexChart(nil))
}

// ============================================================================
// TEXT
// ============================================================================

func TestBuildSummary(t *testing.T) {
	tests := []struct {
		name      string
		idx       Index
		value     string
		direction string
	}{
		{"empty", nil, "No data", ""},
		{"single", Index{{Year: 2000, DoPED: 1}}, "1", "insufficient data"},
		{"increase", Index{{Year: 2000, DoPED: 1}, {Year: 2001, DoPED: 1.5}}, "↑ 50.0%", "increased"},
		{"decrease", Index{{Year: 2000, DoPED: 1}, {Year: 2001, DoPED: 0.5}}, "↓ 50.0%", "decreased"},
		{"flat", Index{{Year: 2000, DoPED: 1}, {Year: 2001, DoPED: 1.001}}, "→ No change", "unchanged"},
		{"skips missing", Index{{Year: 1999, DoPED: math.NaN()}, {Year: 2000, DoPED: 1}, {Year: 2001, DoPED: 2}}, "↑ 100.0%", "increased"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := BuildSummary(tt.idx)
			assert.Equal(t, tt.value, text.Value)
			if tt.direction == "" {
				assert.Nil(t, text.Growth)
				return
			}
			require.NotNil(t, text.Growth)
			assert.Equal(t, tt.direction, text.Growth.Direction)
		})
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(math.NaN()))
	assert.Equal(t, "0.1", FormatValue(0.1))
	assert.Equal(t, "1.23457e+06", FormatValue(1234567))
	assert.Equal(t, "+Inf", FormatValue(math.Inf(1)))
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "", FormatYear(0))
}
