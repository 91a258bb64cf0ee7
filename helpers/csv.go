package helpers

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/spektr-org/doped/engine"
	"github.com/spektr-org/doped/schema"
)

// ============================================================================
// CSV HELPER — Parses CSV data into []engine.RawRecord
// ============================================================================
// Consumer reads the CSV from wherever it lives (file, S3, HTTP).
// This helper converts the raw bytes into raw records using a layout.
// ============================================================================

// ParseRecords parses CSV bytes into raw records using layout to locate the
// period, value and description columns. Values that are empty or not
// numeric ("Not Available") become NaN. Malformed rows are skipped.
func ParseRecords(data []byte, layout schema.Layout) ([]engine.RawRecord, error) {
	return parse(strings.NewReader(string(data)), layout)
}

// ParseRecordsAuto discovers the layout first, then parses.
// It returns the layout it used so callers can report it.
func ParseRecordsAuto(data []byte) ([]engine.RawRecord, schema.Layout, error) {
	config, err := schema.DiscoverFromCSV(data)
	if err != nil {
		return nil, schema.Layout{}, err
	}
	records, err := ParseRecords(data, config.Layout)
	if err != nil {
		return nil, schema.Layout{}, err
	}
	return records, config.Layout, nil
}

// ParseRecordsView parses CSV into a RecordView (convenience wrapper).
func ParseRecordsView(data []byte, layout schema.Layout) (engine.RecordView, error) {
	records, err := ParseRecords(data, layout)
	if err != nil {
		return nil, err
	}
	return engine.NewRecordView(records), nil
}

func parse(r io.Reader, layout schema.Layout) ([]engine.RawRecord, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	// Read header
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	periodIdx, valueIdx, descIdx, err := layout.Indices(headers)
	if err != nil {
		return nil, err
	}
	need := max(periodIdx, valueIdx, descIdx)

	records := make([]engine.RawRecord, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		if need >= len(row) {
			continue
		}

		records = append(records, engine.RawRecord{
			Period:      strings.TrimSpace(row[periodIdx]),
			Value:       ParseValue(row[valueIdx]),
			Description: strings.TrimSpace(row[descIdx]),
		})
	}

	return records, nil
}

// ParseValue converts a cell to a number, NaN when it is not one.
// Thousands separators are accepted.
func ParseValue(s string) float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
