package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
)

// ============================================================================
// DISCOVERY TESTS
// ============================================================================

// Sample EIA monthly energy review export
var eiaCSV = []byte(`MSN,YYYYMM,Value,Column_Order,Description,Unit
CLPRBUS,197301,1187.1,1,Coal Production,Trillion Btu
CLPRBUS,197313,13992.07,1,Coal Production,Trillion Btu
CLPRBUS,197401,1203.5,1,Coal Production,Trillion Btu
CLPRBUS,197413,14074.32,1,Coal Production,Trillion Btu
CLIMBUS,197301,8.1,2,Coal Imports,Trillion Btu
CLIMBUS,197313,Not Available,2,Coal Imports,Trillion Btu
CLIMBUS,197401,4.8,2,Coal Imports,Trillion Btu
CLIMBUS,197413,55.69,2,Coal Imports,Trillion Btu
CLEXBUS,197301,80.2,3,Coal Exports,Trillion Btu
CLEXBUS,197313,1425.63,3,Coal Exports,Trillion Btu
CLEXBUS,197401,95.3,3,Coal Exports,Trillion Btu
CLEXBUS,197413,1619.53,3,Coal Exports,Trillion Btu
NUETBUS,197301,68.3,4,Nuclear Electric Power Production,Trillion Btu
NUETBUS,197313,910.18,4,Nuclear Electric Power Production,Trillion Btu
NUETBUS,197401,98.4,4,Nuclear Electric Power Production,Trillion Btu
NUETBUS,197413,1272.08,4,Nuclear Electric Power Production,Trillion Btu
`)

// Same content with headers no heuristic knows by name
var unnamedCSV = []byte(`code,ym,amt,label
NGPRBUS,198013,19908.13,Natural Gas (Dry) Production
NGIMBUS,198013,984.96,Natural Gas Imports
NGEXBUS,198013,49.45,Natural Gas Exports
BMPRBUS,198013,2475.5,Biomass Energy Production
`)

func TestDiscoverEIACSV(t *testing.T) {
	config, err := DiscoverFromCSV(eiaCSV)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}

	// Print for visual inspection
	pretty, _ := json.MarshalIndent(config, "", "  ")
	fmt.Printf("=== EIA SCHEMA ===\n%s\n\n", string(pretty))

	if config.Layout != DefaultLayout {
		t.Errorf("Layout = %+v, want %+v", config.Layout, DefaultLayout)
	}

	// Validate skipped columns
	skippedNames := make([]string, len(config.SkippedColumns))
	for i, s := range config.SkippedColumns {
		skippedNames[i] = s.Column
	}
	assertContains(t, skippedNames, "MSN", "MSN should be skipped")
	assertContains(t, skippedNames, "Column_Order", "Column_Order should be skipped")
	assertContains(t, skippedNames, "Unit", "Unit should be skipped")

	for _, s := range config.SkippedColumns {
		switch s.Column {
		case "MSN":
			if !s.Recoverable {
				t.Error("MSN should be recoverable — it is a series code")
			}
		case "Unit":
			if s.Recoverable {
				t.Error("Unit should NOT be recoverable — it is constant")
			}
			if s.Reason != "Single value across all rows" {
				t.Errorf("Unit reason = %q", s.Reason)
			}
		}
	}

	// Validate content statistics
	if config.Stats.Rows != 16 {
		t.Errorf("Rows = %d, want 16", config.Stats.Rows)
	}
	if config.Stats.AnnualRows != 8 {
		t.Errorf("AnnualRows = %d, want 8", config.Stats.AnnualRows)
	}
	if config.Stats.NonNumeric != 1 {
		t.Errorf("NonNumeric = %d, want 1", config.Stats.NonNumeric)
	}
	if config.Periods.First != "197301" || config.Periods.Last != "197413" {
		t.Errorf("Periods = %+v", config.Periods)
	}

	wantDescriptions := []string{"Coal Exports", "Coal Imports", "Coal Production", "Nuclear Electric Power Production"}
	if fmt.Sprint(config.Descriptions) != fmt.Sprint(wantDescriptions) {
		t.Errorf("Descriptions = %v, want %v", config.Descriptions, wantDescriptions)
	}

	// Recognised series
	if len(config.Series) != 3 {
		t.Fatalf("Series = %d, want 3", len(config.Series))
	}
	if config.Series[0].Description != "Coal Production" || config.Series[0].Series != "production" || config.Series[0].Rows != 4 {
		t.Errorf("Series[0] = %+v", config.Series[0])
	}
	if len(config.MissingSeries) != 9 {
		t.Errorf("MissingSeries = %d, want 9", len(config.MissingSeries))
	}
	if config.HasAllSeries() {
		t.Error("HasAllSeries should be false")
	}
	assertContains(t, config.MissingSeries, "Biomass Energy Production", "Biomass production should be missing")
}

func TestDiscoverByContent(t *testing.T) {
	config, err := DiscoverFromCSV(unnamedCSV)
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}

	want := Layout{Period: "ym", Value: "amt", Description: "label"}
	if config.Layout != want {
		t.Errorf("Layout = %+v, want %+v", config.Layout, want)
	}
	if config.Stats.AnnualRows != 4 {
		t.Errorf("AnnualRows = %d, want 4", config.Stats.AnnualRows)
	}
	if len(config.Series) != 4 {
		t.Errorf("Series = %d, want 4", len(config.Series))
	}

	for _, c := range config.Columns {
		if c.Key == "ym" && c.Type != "period" {
			t.Errorf("ym type = %q, want period", c.Type)
		}
		if c.Key == "code" && c.Role != "skipped" {
			t.Errorf("code role = %q, want skipped", c.Role)
		}
	}
}

func TestDiscoverWithLayout(t *testing.T) {
	layout := Layout{Period: "YM", Value: "AMT", Description: "Label"}
	config, err := DiscoverFromCSV(unnamedCSV, DiscoverOptions{Layout: &layout, Name: "gas"})
	if err != nil {
		t.Fatalf("DiscoverFromCSV failed: %v", err)
	}
	if config.Name != "gas" {
		t.Errorf("Name = %q", config.Name)
	}
	if config.Layout != layout {
		t.Errorf("Layout = %+v, want %+v", config.Layout, layout)
	}
	if len(config.Series) != 4 {
		t.Errorf("Series = %d, want 4", len(config.Series))
	}

	bad := Layout{Period: "ym", Value: "price", Description: "label"}
	if _, err := DiscoverFromCSV(unnamedCSV, DiscoverOptions{Layout: &bad}); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}
}

func TestDiscoverMissingColumns(t *testing.T) {
	_, err := DiscoverFromCSV([]byte("a,b\nx,y\nz,w\n"))
	if !errors.Is(err, ErrMissingColumn) {
		t.Errorf("err = %v, want ErrMissingColumn", err)
	}

	if _, err := DiscoverFromCSV([]byte("YYYYMM,Value,Description\n")); !errors.Is(err, ErrNoDataRows) {
		t.Errorf("err = %v, want ErrNoDataRows", err)
	}
	if _, err := DiscoverFromCSV(nil); err == nil {
		t.Error("expected error for empty input")
	}
}

func TestLayoutIndices(t *testing.T) {
	p, v, d, err := DefaultLayout.Indices([]string{"MSN", " yyyymm ", "VALUE", "Column_Order", "description"})
	if err != nil {
		t.Fatalf("Indices failed: %v", err)
	}
	if p != 1 || v != 2 || d != 4 {
		t.Errorf("Indices = %d,%d,%d, want 1,2,4", p, v, d)
	}

	if err := (Layout{Period: "YYYYMM"}).Validate(); !errors.Is(err, ErrMissingColumn) {
		t.Errorf("Validate err = %v, want ErrMissingColumn", err)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"YYYYMM", "yyyymm"},
		{"Column_Order", "column_order"},
		{"MSN", "msn"},
		{"seriesDescription", "series_description"},
		{"Series Description", "series_description"},
		{"Value", "value"},
	}

	for _, tt := range tests {
		got := toSnakeCase(tt.input)
		if got != tt.expected {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"column_order", "Column Order"},
		{"Value", "Value"},
		{"Series Description", "Series Description"},
	}

	for _, tt := range tests {
		got := toDisplayName(tt.input)
		if got != tt.expected {
			t.Errorf("toDisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		values   []string
		expected columnType
	}{
		{[]string{"197301", "197313", "202212"}, typePeriod},
		{[]string{"1187.1", "8.1", "Not Available", "4.8", "55.69"}, typeNumeric},
		{[]string{"1", "2", "3"}, typeNumeric},
		{[]string{"Coal Production", "Coal Imports"}, typeString},
		{nil, typeString},
	}

	for _, tt := range tests {
		got := detectType(tt.values)
		if got != tt.expected {
			t.Errorf("detectType(%v) = %v, want %v", tt.values, got, tt.expected)
		}
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func assertContains(t *testing.T, slice []string, item string, msg string) {
	t.Helper()
	for _, s := range slice {
		if s == item {
			return
		}
	}
	t.Errorf("%s: %q not found in %v", msg, item, slice)
}
