package engine

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spektr-org/doped/logging"
)

// ============================================================================
// EXECUTOR — the full pipeline
// ============================================================================
// Entry point: Execute(production, imports, exports, opts...)
//
// Pipeline:
//   1. Classify the three sources → unified view (zero-copy)
//   2. Reshape per resource → ResourceTable
//   3. Supply per resource → SupplyTable
//   4. AggregateYears over all four → YearlyTotals
//   5. Diversity per resource → DiversityTable
//
// Stage 4 needs every resource's supply, so stages 3 and 5 never interleave.
// This function never does I/O. All computation is local.
// ============================================================================

// Execute runs the pipeline over the three raw record collections.
// Only a schema mismatch is returned as an error; bad values become NaN.
func Execute(production, imports, exports []RawRecord, opts ...Option) (*Result, error) {
	return ExecuteViews(NewRecordView(production), NewRecordView(imports), NewRecordView(exports), opts...)
}

// ExecuteViews is Execute over caller-provided views. Each view must expose
// the period and description dimensions and the value measure.
func ExecuteViews(production, imports, exports RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	log := cfg.Logger.With(zap.Int("first_year", cfg.FirstYear), zap.Int("last_year", cfg.LastYear))

	if cfg.LastYear < cfg.FirstYear {
		return nil, fmt.Errorf("invalid year range %d-%d", cfg.FirstYear, cfg.LastYear)
	}

	// 1. Classify
	start := time.Now()
	unified := classify(production, imports, exports, cfg.Observer)
	cfg.Observer.ObserveStage(StageClassify, time.Since(start))
	logging.Stage(log, StageClassify).Debug("records classified", zap.Int("kept", unified.Len()))

	// 2 + 3. Reshape and supply, one resource at a time
	var supplies SupplyTables
	var reshapeElapsed, supplyElapsed time.Duration
	for _, r := range Resources {
		rlog := logging.Stage(log, StageSupply, zap.Stringer("resource", r))
		start = time.Now()
		table, err := Reshape(unified, r)
		if err != nil {
			return nil, fmt.Errorf("reshape %s: %w", r, err)
		}
		reshapeElapsed += time.Since(start)
		cfg.Observer.ObserveRows(r, StageReshape, len(table.Rows))

		start = time.Now()
		st, err := supply(table, r, cfg)
		if err != nil {
			return nil, fmt.Errorf("supply %s: %w", r, err)
		}
		supplyElapsed += time.Since(start)
		cfg.Observer.ObserveRows(r, StageSupply, len(st.Rows))

		for column, n := range countMissing(st) {
			cfg.Observer.ObserveMissing(r, column, n)
			logging.DataQuality(rlog, column, "missing values", zap.Int("rows", n))
		}
		for _, row := range st.Rows {
			if row.Year == 0 {
				logging.DataQuality(rlog, r.SupplyColumn(), "annual row without a year", zap.String("period", row.Period))
			}
		}
		if len(st.Rows) == 0 {
			rlog.Info("no annual rows in range")
		}

		rlog.Debug("resource table ready",
			zap.Int("periods", len(table.Rows)),
			zap.Int("annual_rows", len(st.Rows)),
		)
		supplies[r] = st
	}
	cfg.Observer.ObserveStage(StageReshape, reshapeElapsed)
	cfg.Observer.ObserveStage(StageSupply, supplyElapsed)

	// 4. Yearly totals
	start = time.Now()
	totals := aggregateYears(supplies, cfg)
	cfg.Observer.ObserveStage(StageAggregate, time.Since(start))
	for _, yt := range totals {
		if math.IsNaN(yt.TotalSupply) {
			logging.DataQuality(log, "Total Supply", "total supply is missing", zap.Int("year", yt.Year))
		}
	}

	// 5. Diversity components
	start = time.Now()
	result := &Result{
		Totals:     totals,
		FirstYear:  cfg.FirstYear,
		LastYear:   cfg.LastYear,
		Classified: unified.Len(),
	}
	for _, r := range Resources {
		result.Tables[r] = Diversity(supplies[r], totals)
		cfg.Observer.ObserveRows(r, StageDiversity, len(result.Tables[r].Rows))
	}
	cfg.Observer.ObserveStage(StageDiversity, time.Since(start))

	log.Info("pipeline complete", zap.Int("classified", result.Classified), zap.Int("years", len(totals)))
	return result, nil
}
