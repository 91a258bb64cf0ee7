package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spektr-org/doped/engine"
)

func TestRecorderObservesPipeline(t *testing.T) {
	rec := NewRecorder()

	prod := []engine.RawRecord{
		{Period: "198013", Value: 100, Description: "Coal Production"},
		{Period: "198013", Value: 5, Description: "Nuclear Electric Power Production"},
	}
	imp := []engine.RawRecord{{Period: "198013", Value: 10, Description: "Coal Imports"}}
	exp := []engine.RawRecord{{Period: "198013", Value: 1, Description: "Coal Exports"}}

	_, err := engine.Execute(prod, imp, exp, engine.WithObserver(rec))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.recordsClassified.WithLabelValues("production")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.recordsRead.WithLabelValues("production")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.resourceRows.WithLabelValues("Coal", engine.StageDiversity)))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.resourceRows.WithLabelValues("Biomass", engine.StageSupply)))
	assert.Equal(t, 5, testutil.CollectAndCount(rec.stageDuration))
}

func TestRecorderMissingValues(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveMissing(engine.Coal, "Coal Imports", 2)
	rec.ObserveMissing(engine.Coal, "Coal Imports", 1)

	expected := `
# HELP doped_missing_values_total Annual rows with a missing value, per column
# TYPE doped_missing_values_total counter
doped_missing_values_total{column="Coal Imports",resource="Coal"} 3
`
	require.NoError(t, testutil.CollectAndCompare(rec.missingValues, strings.NewReader(expected)))
}

func TestWriteTextfile(t *testing.T) {
	rec := NewRecorder()
	rec.ObserveStage(engine.StageClassify, 2*time.Millisecond)
	rec.ObserveRows(engine.NaturalGas, engine.StageReshape, 12)

	path := filepath.Join(t.TempDir(), "doped.prom")
	require.NoError(t, rec.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `doped_resource_rows{resource="Natural Gas",stage="reshape"} 12`)
	assert.Contains(t, string(data), `doped_stage_duration_seconds_count{stage="classify"} 1`)

	assert.Error(t, rec.WriteTextfile(filepath.Join(t.TempDir(), "missing", "doped.prom")))
}
