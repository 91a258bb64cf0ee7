package engine

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// TEST DATA
// ============================================================================

func rec(period string, value float64, description string) RawRecord {
	return RawRecord{Period: period, Value: value, Description: description}
}

// annualFixture builds production/import/export collections where every
// resource has supply = production + imports − exports for each year.
func annualFixture(year string, supplies map[Resource]float64) (prod, imp, exp []RawRecord) {
	for _, r := range Resources {
		s := supplies[r]
		prod = append(prod, rec(year+"13", s, r.ProductionColumn()))
		imp = append(imp, rec(year+"13", 10, r.ImportsColumn()))
		exp = append(exp, rec(year+"13", 10, r.ExportsColumn()))
	}
	return prod, imp, exp
}

// ============================================================================
// PIPELINE SCENARIOS
// ============================================================================

func TestExecuteScenario1980(t *testing.T) {
	prod, imp, exp := annualFixture("1980", map[Resource]float64{
		Coal:       100,
		CrudeOil:   200,
		NaturalGas: 300,
		Biomass:    400,
	})

	result, err := Execute(prod, imp, exp)
	require.NoError(t, err)

	total, ok := result.Totals.Lookup(1980)
	require.True(t, ok)
	assert.Equal(t, 1000.0, total)

	coal := result.Tables.Get(Coal)
	require.Len(t, coal.Rows, 1)
	row := coal.Rows[0]
	assert.Equal(t, 1980, row.Year)
	assert.InDelta(t, 0.1, row.Share, 1e-12)
	assert.InDelta(t, -2.302585, row.LogShare, 1e-6)
	assert.InDelta(t, -0.2302585, row.ShareLogShare, 1e-7)
	assert.Equal(t, 12, result.Classified)
}

func TestExecuteTotalsCoverWholeRange(t *testing.T) {
	result, err := Execute(nil, nil, nil)
	require.NoError(t, err)

	require.Len(t, result.Totals, DefaultLastYear-DefaultFirstYear+1)
	for i, yt := range result.Totals {
		assert.Equal(t, DefaultFirstYear+i, yt.Year)
		assert.Equal(t, 0.0, yt.TotalSupply, "empty year must total 0, not NaN")
	}
	for _, r := range Resources {
		tbl := result.Tables.Get(r)
		assert.Equal(t, r, tbl.Resource)
		assert.Empty(t, tbl.Rows)
	}
}

func TestExecuteCustomYearRange(t *testing.T) {
	prod, imp, exp := annualFixture("2000", map[Resource]float64{Coal: 50, NaturalGas: 50, CrudeOil: 50, Biomass: 50})

	result, err := Execute(prod, imp, exp, WithYearRange(1999, 2001))
	require.NoError(t, err)
	require.Len(t, result.Totals, 3)
	assert.Equal(t, 200.0, result.Totals[1].TotalSupply)
	assert.InDelta(t, 0.25, result.Tables.Get(Biomass).Rows[0].Share, 1e-12)

	_, err = Execute(prod, imp, exp, WithYearRange(2001, 1999))
	assert.Error(t, err)
}

func TestExecuteShareRoundTrip(t *testing.T) {
	var prod, imp, exp []RawRecord
	for _, y := range []string{"1990", "1991", "2005"} {
		p, i, e := annualFixture(y, map[Resource]float64{Coal: 123.5, NaturalGas: 77.25, CrudeOil: 310, Biomass: 9.125})
		prod, imp, exp = append(prod, p...), append(imp, i...), append(exp, e...)
	}

	result, err := Execute(prod, imp, exp)
	require.NoError(t, err)

	for _, r := range Resources {
		for _, row := range result.Tables.Get(r).Rows {
			total, ok := result.Totals.Lookup(row.Year)
			require.True(t, ok)
			require.NotZero(t, total)
			assert.InDelta(t, row.Supply, row.Share*total, 1e-9)
		}
	}
}

// ============================================================================
// OBSERVER
// ============================================================================

type recordingObserver struct {
	classified map[Series][2]int
	rows       map[string]int
	missing    map[string]int
	stages     []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{
		classified: map[Series][2]int{},
		rows:       map[string]int{},
		missing:    map[string]int{},
	}
}

func (o *recordingObserver) ObserveClassified(s Series, kept, total int) {
	o.classified[s] = [2]int{kept, total}
}
func (o *recordingObserver) ObserveRows(r Resource, stage string, rows int) {
	o.rows[r.String()+"/"+stage] = rows
}
func (o *recordingObserver) ObserveMissing(r Resource, column string, count int) {
	o.missing[column] += count
}
func (o *recordingObserver) ObserveStage(stage string, _ time.Duration) {
	o.stages = append(o.stages, stage)
}

func TestExecuteReportsToObserver(t *testing.T) {
	prod := []RawRecord{
		rec("198013", 100, "Coal Production"),
		rec("198013", 5, "Nuclear Electric Power Production"),
		rec("198006", 8, "Coal Production"),
	}
	imp := []RawRecord{rec("198013", math.NaN(), "Coal Imports")}
	exp := []RawRecord{rec("198013", 1, "Coal Exports")}

	obs := newRecordingObserver()
	_, err := Execute(prod, imp, exp, WithObserver(obs))
	require.NoError(t, err)

	assert.Equal(t, [2]int{2, 3}, obs.classified[SeriesProduction])
	assert.Equal(t, [2]int{1, 1}, obs.classified[SeriesImports])
	assert.Equal(t, 2, obs.rows["Coal/"+StageReshape])
	assert.Equal(t, 1, obs.rows["Coal/"+StageSupply])
	assert.Equal(t, 0, obs.rows["Biomass/"+StageSupply])
	assert.Equal(t, 1, obs.missing["Coal Imports"])
	assert.Equal(t, 1, obs.missing["Coal Supply"])
	assert.Equal(t, []string{StageClassify, StageReshape, StageSupply, StageAggregate, StageDiversity}, obs.stages)
}
