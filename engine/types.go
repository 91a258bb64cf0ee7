package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// DoPED ENGINE TYPES
// ============================================================================
// Every stage returns a new snapshot that embeds the previous stage's row:
//   PeriodRow → SupplyRow → DiversityRow
// Missing values are NaN throughout. Nothing in this package does I/O.
// ============================================================================

// ============================================================================
// RESOURCES
// ============================================================================

// Resource identifies one of the four primary energy resources.
type Resource int

const (
	Coal Resource = iota
	NaturalGas
	CrudeOil
	Biomass
)

const resourceCount = 4

// Resources lists every resource in pipeline order.
var Resources = [resourceCount]Resource{Coal, NaturalGas, CrudeOil, Biomass}

// resourceSpec is the per-resource configuration consumed by Reshape and Supply.
type resourceSpec struct {
	name       string // description token and column prefix
	production string // production-equivalent series suffix
}

var resourceSpecs = [resourceCount]resourceSpec{
	Coal:       {name: "Coal", production: "Production"},
	NaturalGas: {name: "Natural Gas", production: "(Dry) Production"},
	CrudeOil:   {name: "Crude Oil", production: "Production"},
	Biomass:    {name: "Biomass", production: "Energy Production"},
}

// Valid reports whether r is one of the four known resources.
func (r Resource) Valid() bool { return r >= 0 && int(r) < resourceCount }

func (r Resource) String() string {
	if !r.Valid() {
		return fmt.Sprintf("Resource(%d)", int(r))
	}
	return resourceSpecs[r].name
}

func (r Resource) spec() (resourceSpec, error) {
	if !r.Valid() {
		return resourceSpec{}, fmt.Errorf("%w: %s", ErrSchemaMismatch, r)
	}
	return resourceSpecs[r], nil
}

// ParseResource resolves a resource from its display name ("Natural Gas")
// or identifier form ("natural_gas", "NaturalGas"). Case-insensitive.
func ParseResource(name string) (Resource, error) {
	norm := normalizeResourceName(name)
	for _, r := range Resources {
		if normalizeResourceName(resourceSpecs[r].name) == norm {
			return r, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownResource, name)
}

func normalizeResourceName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// ExportsColumn returns the description of the resource's export series.
func (r Resource) ExportsColumn() string { return r.String() + " Exports" }

// ImportsColumn returns the description of the resource's import series.
func (r Resource) ImportsColumn() string { return r.String() + " Imports" }

// ProductionColumn returns the description of the resource's
// production-equivalent series, e.g. "Natural Gas (Dry) Production".
func (r Resource) ProductionColumn() string {
	if !r.Valid() {
		return r.String() + " Production"
	}
	return r.String() + " " + resourceSpecs[r].production
}

// NetImportColumn names the derived net import column.
func (r Resource) NetImportColumn() string { return r.String() + " Net Import" }

// SupplyColumn names the derived supply column.
func (r Resource) SupplyColumn() string { return r.String() + " Supply" }

// ============================================================================
// SERIES
// ============================================================================

// Series is the statistic category a raw record belongs to.
type Series int

const (
	SeriesProduction Series = iota
	SeriesImports
	SeriesExports
)

const seriesCount = 3

func (s Series) String() string {
	switch s {
	case SeriesProduction:
		return "production"
	case SeriesImports:
		return "imports"
	case SeriesExports:
		return "exports"
	default:
		return fmt.Sprintf("Series(%d)", int(s))
	}
}

// Description returns the recognised description string for a resource and
// series, e.g. (Biomass, SeriesProduction) → "Biomass Energy Production".
func Description(r Resource, s Series) string {
	switch s {
	case SeriesImports:
		return r.ImportsColumn()
	case SeriesExports:
		return r.ExportsColumn()
	default:
		return r.ProductionColumn()
	}
}

// RecognizedDescriptions returns the twelve description strings kept by
// Classify, production series first.
func RecognizedDescriptions() []string {
	out := make([]string, 0, resourceCount*seriesCount)
	for s := Series(0); s < seriesCount; s++ {
		for _, r := range Resources {
			out = append(out, Description(r, s))
		}
	}
	return out
}

// ============================================================================
// RECORDS AND TABLES
// ============================================================================

// RawRecord is one monthly statistic as read from the source.
// Period is a "YYYYMM" token; month "13" marks the annual summary row.
type RawRecord struct {
	Period      string  `json:"period"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

// PeriodRow is one pivoted period of a resource.
type PeriodRow struct {
	Period     string  `json:"period"`
	Exports    float64 `json:"exports"`
	Imports    float64 `json:"imports"`
	Production float64 `json:"production"`
}

// ResourceTable holds one resource's series pivoted by period.
type ResourceTable struct {
	Resource Resource    `json:"resource"`
	Rows     []PeriodRow `json:"rows"`
}

// SupplyRow extends PeriodRow with the supply derivation.
// Year is 0 when the period prefix is not numeric.
type SupplyRow struct {
	PeriodRow
	Year      int     `json:"year"`
	NetImport float64 `json:"netImport"`
	Supply    float64 `json:"supply"`
}

// SupplyTable is the annual-marker restriction of a ResourceTable.
type SupplyTable struct {
	Resource Resource    `json:"resource"`
	Rows     []SupplyRow `json:"rows"`
}

// Periods strips the derived columns, giving back a ResourceTable that
// Supply can consume again.
func (t SupplyTable) Periods() ResourceTable {
	rows := make([]PeriodRow, len(t.Rows))
	for i, r := range t.Rows {
		rows[i] = r.PeriodRow
	}
	return ResourceTable{Resource: t.Resource, Rows: rows}
}

// SupplyTables holds the supply table of every resource, indexed by Resource.
type SupplyTables [resourceCount]SupplyTable

// Get returns the table for r.
func (ts *SupplyTables) Get(r Resource) SupplyTable { return ts[r] }

// YearlyTotal is the cross-resource supply of one year.
type YearlyTotal struct {
	Year        int     `json:"year"`
	TotalSupply float64 `json:"totalSupply"`
}

// YearlyTotals is ordered by increasing year.
type YearlyTotals []YearlyTotal

// Lookup returns the total supply for year.
func (t YearlyTotals) Lookup(year int) (float64, bool) {
	if len(t) == 0 {
		return 0, false
	}
	// Years are contiguous when produced by AggregateYears.
	if i := year - t[0].Year; i >= 0 && i < len(t) && t[i].Year == year {
		return t[i].TotalSupply, true
	}
	for _, yt := range t {
		if yt.Year == year {
			return yt.TotalSupply, true
		}
	}
	return 0, false
}

// DiversityRow extends SupplyRow with the entropy components.
type DiversityRow struct {
	SupplyRow
	Share         float64 `json:"share"`
	LogShare      float64 `json:"logShare"`
	ShareLogShare float64 `json:"shareLogShare"`
}

// DiversityTable is a resource's final per-year table.
type DiversityTable struct {
	Resource Resource       `json:"resource"`
	Rows     []DiversityRow `json:"rows"`
}

// Tables holds the finished table of every resource, indexed by Resource.
type Tables [resourceCount]DiversityTable

// Get returns the table for r.
func (ts *Tables) Get(r Resource) DiversityTable { return ts[r] }

// ============================================================================
// GROUP — Intermediate grouping result
// ============================================================================

// Group is a set of view rows sharing one dimension value.
type Group struct {
	Key   string     `json:"key"`
	Count int        `json:"count"`
	View  RecordView `json:"-"` // Sub-view for records in this group (zero-copy)
}

// ============================================================================
// RESULT
// ============================================================================

// Result is the output of Execute.
type Result struct {
	Tables     Tables       `json:"tables"`
	Totals     YearlyTotals `json:"totals"`
	FirstYear  int          `json:"firstYear"`
	LastYear   int          `json:"lastYear"`
	Classified int          `json:"classified"` // records kept by Classify
}

// MarshalText encodes a resource by its display name.
func (r Resource) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownResource, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText accepts any form ParseResource does.
func (r *Resource) UnmarshalText(text []byte) error {
	parsed, err := ParseResource(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
