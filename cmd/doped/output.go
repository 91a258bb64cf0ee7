package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/spektr-org/doped/report"
)

// ============================================================================
// OUTPUT — Renders results on stdout
// ============================================================================

func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(allowed, ", "))
}

// writeDocument writes v as compact JSON, indented JSON or YAML.
func writeDocument(w io.Writer, v any, format string) error {
	var out []byte
	var err error

	switch format {
	case "pretty":
		out, err = json.MarshalIndent(v, "", "  ")
	case "yaml":
		out, err = yaml.Marshal(v)
	default:
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	_, err = fmt.Fprintln(w, strings.TrimRight(string(out), "\n"))
	return err
}

// writeTableCSV writes a table as Sheets-ready CSV.
func writeTableCSV(w io.Writer, table *report.TableData) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(table.Headers()); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeTableText writes the summary line and an aligned table.
func writeTableText(w io.Writer, table *report.TableData, summary *report.TextData) error {
	if summary != nil {
		fmt.Fprintf(w, "DoPED %s: %s\n\n", summary.Period, summary.Value)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(table.Headers(), "\t")+"\t")
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
	}
	if table.Summary != nil {
		fmt.Fprintln(tw, strings.Join(summaryCells(table), "\t")+"\t")
	}
	return tw.Flush()
}

// writeTablesText writes titled tables one after another.
func writeTablesText(w io.Writer, tables []*report.TableData) error {
	for i, table := range tables {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "## %s\n", table.Title)
		if err := writeTableText(w, table, nil); err != nil {
			return err
		}
	}
	return nil
}

// summaryCells lays a table summary out under the table's columns. The
// label takes the first cell; values keyed by no column are appended to it.
func summaryCells(table *report.TableData) []string {
	cells := make([]string, len(table.Columns))
	used := make(map[string]bool, len(table.Summary.Values))
	for i, col := range table.Columns {
		if v, ok := table.Summary.Values[col.Key]; ok && i > 0 {
			cells[i] = v
			used[col.Key] = true
		}
	}

	label := table.Summary.Label
	var extra []string
	for key, v := range table.Summary.Values {
		if !used[key] {
			extra = append(extra, key+"="+v)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		label += " (" + strings.Join(extra, ", ") + ")"
	}
	if len(cells) > 0 {
		cells[0] = label
	}
	return cells
}

// chartsOutput groups the chart configs printed by run --print charts.
type chartsOutput struct {
	Share *report.ChartConfig `json:"share" yaml:"share"`
	Index *report.ChartConfig `json:"index" yaml:"index"`
}

// indexOutput is the JSON/YAML form of the printed index.
type indexOutput struct {
	RunID   string             `json:"runId" yaml:"runId"`
	Summary *report.TextData   `json:"summary" yaml:"summary"`
	Index   []indexPointOutput `json:"index" yaml:"index"`
	Files   []string           `json:"files,omitempty" yaml:"files,omitempty"`
}

type indexPointOutput struct {
	Year       int      `json:"year" yaml:"year"`
	DoPED      *float64 `json:"doped" yaml:"doped"`
	Normalized *float64 `json:"normalized" yaml:"normalized"`
}

func newIndexOutput(runID string, idx report.Index, files []string) indexOutput {
	out := indexOutput{RunID: runID, Summary: report.BuildSummary(idx), Files: files}
	for _, p := range idx {
		out.Index = append(out.Index, indexPointOutput{Year: p.Year, DoPED: finite(p.DoPED), Normalized: finite(p.Normalized)})
	}
	return out
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
