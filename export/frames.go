package export

import (
	"math"
	"strconv"
	"strings"

	"github.com/spektr-org/doped/engine"
	"github.com/spektr-org/doped/report"
)

// ============================================================================
// FRAMES — Column-oriented copies of the pipeline output
// ============================================================================
// Every writer consumes the same frames: four resource tables, the yearly
// totals and the index. Floats keep NaN for missing; ints use 0 for a
// missing year. Writers decide how to render a missing cell.
// ============================================================================

// Kind is the value type of a frame column.
type Kind int

const (
	KindString Kind = iota
	KindInt
	KindFloat
)

// Column is one named, typed column. Only the slice matching Kind is set.
type Column struct {
	Name    string
	Kind    Kind
	Strings []string
	Ints    []int
	Floats  []float64
}

// Missing reports whether row i holds no value.
func (c *Column) Missing(i int) bool {
	switch c.Kind {
	case KindInt:
		return c.Ints[i] == 0
	case KindFloat:
		return math.IsNaN(c.Floats[i]) || math.IsInf(c.Floats[i], 0)
	default:
		return false
	}
}

// Value returns row i as a plain Go value, nil when missing.
func (c *Column) Value(i int) any {
	if c.Missing(i) {
		return nil
	}
	switch c.Kind {
	case KindInt:
		return c.Ints[i]
	case KindFloat:
		return c.Floats[i]
	default:
		return c.Strings[i]
	}
}

// Text returns row i as text, empty when missing. Floats keep full precision.
func (c *Column) Text(i int) string {
	if c.Missing(i) {
		return ""
	}
	switch c.Kind {
	case KindInt:
		return strconv.Itoa(c.Ints[i])
	case KindFloat:
		return strconv.FormatFloat(c.Floats[i], 'g', -1, 64)
	default:
		return c.Strings[i]
	}
}

// Frame is a named table.
type Frame struct {
	Name    string // file-safe, e.g. "natural_gas"
	Title   string // display name, e.g. "Natural Gas"
	Columns []Column
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.Columns) == 0 {
		return 0
	}
	c := f.Columns[0]
	switch c.Kind {
	case KindInt:
		return len(c.Ints)
	case KindFloat:
		return len(c.Floats)
	default:
		return len(c.Strings)
	}
}

// Headers returns the column names in order.
func (f *Frame) Headers() []string {
	out := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		out[i] = c.Name
	}
	return out
}

// Frames builds the exported tables in a fixed order: one per resource,
// then totals, then the index.
func Frames(result *engine.Result, idx report.Index) []Frame {
	frames := make([]Frame, 0, len(engine.Resources)+2)
	for _, r := range engine.Resources {
		frames = append(frames, resourceFrame(result.Tables.Get(r)))
	}
	frames = append(frames, totalsFrame(result.Totals), indexFrame(idx))
	return frames
}

// FrameName converts a resource display name to a file-safe name.
func FrameName(r engine.Resource) string {
	return strings.ReplaceAll(strings.ToLower(r.String()), " ", "_")
}

func resourceFrame(t engine.DiversityTable) Frame {
	n := len(t.Rows)
	period := Column{Name: "YYYYMM", Kind: KindString, Strings: make([]string, n)}
	year := Column{Name: "Year", Kind: KindInt, Ints: make([]int, n)}
	floats := []Column{
		{Name: t.Resource.ExportsColumn()},
		{Name: t.Resource.ImportsColumn()},
		{Name: t.Resource.ProductionColumn()},
		{Name: t.Resource.NetImportColumn()},
		{Name: t.Resource.SupplyColumn()},
		{Name: "Share"},
		{Name: "LogShare"},
		{Name: "ShareLogShare"},
	}
	for i := range floats {
		floats[i].Kind = KindFloat
		floats[i].Floats = make([]float64, n)
	}

	for i, row := range t.Rows {
		period.Strings[i] = row.Period
		year.Ints[i] = row.Year
		for j, v := range []float64{
			row.Exports, row.Imports, row.Production, row.NetImport,
			row.Supply, row.Share, row.LogShare, row.ShareLogShare,
		} {
			floats[j].Floats[i] = v
		}
	}

	columns := append([]Column{period}, floats[:3]...)
	columns = append(columns, year)
	columns = append(columns, floats[3:]...)
	return Frame{Name: FrameName(t.Resource), Title: t.Resource.String(), Columns: columns}
}

func totalsFrame(totals engine.YearlyTotals) Frame {
	year := Column{Name: "Year", Kind: KindInt, Ints: make([]int, len(totals))}
	total := Column{Name: "Total Supply", Kind: KindFloat, Floats: make([]float64, len(totals))}
	for i, yt := range totals {
		year.Ints[i] = yt.Year
		total.Floats[i] = yt.TotalSupply
	}
	return Frame{Name: "totals", Title: "Totals", Columns: []Column{year, total}}
}

func indexFrame(idx report.Index) Frame {
	year := Column{Name: "Year", Kind: KindInt, Ints: make([]int, len(idx))}
	doped := Column{Name: "DoPED", Kind: KindFloat, Floats: make([]float64, len(idx))}
	norm := Column{Name: "Normalized", Kind: KindFloat, Floats: make([]float64, len(idx))}
	for i, p := range idx {
		year.Ints[i] = p.Year
		doped.Floats[i] = p.DoPED
		norm.Floats[i] = p.Normalized
	}
	return Frame{Name: "index", Title: "Index", Columns: []Column{year, doped, norm}}
}
