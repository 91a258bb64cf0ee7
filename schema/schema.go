package schema

import (
	"errors"
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA — Describes the shape of a monthly energy statistics export
// ============================================================================
// Auto-discovered from CSV (DiscoverFromCSV) or declared by the caller.
// helpers.ParseRecords uses the Layout to turn rows into raw records.
// The CLI prints the full Config for the `discover` command.
// ============================================================================

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrNoDataRows is returned for a CSV with a header and nothing else.
	ErrNoDataRows = errors.New("CSV has no data rows")
)

// Layout names the three columns the pipeline reads.
type Layout struct {
	Period      string `json:"period" yaml:"period" toml:"period"`
	Value       string `json:"value" yaml:"value" toml:"value"`
	Description string `json:"description" yaml:"description" toml:"description"`
}

// DefaultLayout matches the headers of EIA monthly energy review exports.
var DefaultLayout = Layout{Period: "YYYYMM", Value: "Value", Description: "Description"}

// Validate reports which layout columns are not set.
func (l Layout) Validate() error {
	var missing []string
	if strings.TrimSpace(l.Period) == "" {
		missing = append(missing, "period")
	}
	if strings.TrimSpace(l.Value) == "" {
		missing = append(missing, "value")
	}
	if strings.TrimSpace(l.Description) == "" {
		missing = append(missing, "description")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: layout has no %s column", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return nil
}

// Indices resolves the layout against a header row, case-insensitively and
// ignoring surrounding whitespace. Every column must be present.
func (l Layout) Indices(headers []string) (period, value, description int, err error) {
	find := func(name string) int {
		for i, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), strings.TrimSpace(name)) {
				return i
			}
		}
		return -1
	}

	period, value, description = find(l.Period), find(l.Value), find(l.Description)
	var missing []string
	if period < 0 {
		missing = append(missing, l.Period)
	}
	if value < 0 {
		missing = append(missing, l.Value)
	}
	if description < 0 {
		missing = append(missing, l.Description)
	}
	if len(missing) > 0 {
		return 0, 0, 0, fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
	}
	return period, value, description, nil
}

// Config describes a discovered dataset.
type Config struct {
	Name        string `json:"name" yaml:"name"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	Layout  Layout       `json:"layout" yaml:"layout"`
	Columns []ColumnMeta `json:"columns" yaml:"columns"`

	// Distinct values of the description column, sorted.
	Descriptions []string `json:"descriptions" yaml:"descriptions"`
	// Recognised series found in the data, in pipeline order.
	Series []SeriesMeta `json:"series" yaml:"series"`
	// Recognised series absent from the data.
	MissingSeries []string `json:"missingSeries,omitempty" yaml:"missingSeries,omitempty"`

	Periods PeriodSpan `json:"periods" yaml:"periods"`
	Stats   Stats      `json:"stats" yaml:"stats"`

	// Auto-discovery metadata
	DiscoveredFrom string `json:"discoveredFrom,omitempty" yaml:"discoveredFrom,omitempty"`
	DiscoveredAt   string `json:"discoveredAt,omitempty" yaml:"discoveredAt,omitempty"`

	// Columns skipped during auto-discovery
	SkippedColumns []SkippedColumn `json:"skippedColumns,omitempty" yaml:"skippedColumns,omitempty"`
}

// ColumnMeta describes one CSV column.
type ColumnMeta struct {
	Header          string   `json:"header" yaml:"header"`
	Key             string   `json:"key" yaml:"key"`
	DisplayName     string   `json:"displayName" yaml:"displayName"`
	Role            string   `json:"role" yaml:"role"` // "period", "value", "description", "skipped"
	Type            string   `json:"type" yaml:"type"` // "string", "numeric", "period"
	SampleValues    []string `json:"sampleValues" yaml:"sampleValues"`
	CardinalityHint string   `json:"cardinalityHint,omitempty" yaml:"cardinalityHint,omitempty"` // "low", "medium", "high"
}

// SeriesMeta describes a recognised series present in the data.
type SeriesMeta struct {
	Description string `json:"description" yaml:"description"`
	Resource    string `json:"resource" yaml:"resource"`
	Series      string `json:"series" yaml:"series"` // "production", "imports", "exports"
	Rows        int    `json:"rows" yaml:"rows"`
}

// PeriodSpan is the lexicographic range of period values.
type PeriodSpan struct {
	First string `json:"first,omitempty" yaml:"first,omitempty"`
	Last  string `json:"last,omitempty" yaml:"last,omitempty"`
}

// Stats counts rows of interest.
type Stats struct {
	Rows       int `json:"rows" yaml:"rows"`
	AnnualRows int `json:"annualRows" yaml:"annualRows"` // period month field is "13"
	NonNumeric int `json:"nonNumeric" yaml:"nonNumeric"` // value not parseable, e.g. "Not Available"
}

// SkippedColumn records why a column was excluded during auto-discovery.
type SkippedColumn struct {
	Column      string `json:"column" yaml:"column"`
	Reason      string `json:"reason" yaml:"reason"`
	Recoverable bool   `json:"recoverable" yaml:"recoverable"` // Can be used as a layout column if the caller overrides
}

// HasAllSeries reports whether every recognised series was found.
func (c Config) HasAllSeries() bool {
	return len(c.MissingSeries) == 0
}
