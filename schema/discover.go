package schema

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spektr-org/doped/engine"
)

// ============================================================================
// AUTO-DISCOVERY — Heuristic layout detection
// ============================================================================
// Inspects a monthly statistics CSV and generates a schema.Config.
//
// Classification pipeline per column:
//   1. Sample values → detect type (period, numeric, string)
//   2. Header names → claim the period, value and description roles
//   3. Type + content → fill any role the headers left open
//   4. Everything else is skipped with a reason
//
// Then a full pass over the rows collects descriptions, recognised series,
// the period span and value statistics.
// ============================================================================

// DiscoverOptions controls discovery behavior.
type DiscoverOptions struct {
	SampleSize int     // Max rows inspected for column typing (0 = all). Default: 1000
	Layout     *Layout // Force a layout instead of detecting one
	Name       string  // Dataset name override
}

// DefaultDiscoverOptions returns sensible defaults.
func DefaultDiscoverOptions() DiscoverOptions {
	return DiscoverOptions{
		SampleSize: 1000,
	}
}

// maxRows caps how many data rows discovery reads.
const maxRows = 5_000_000

// DiscoverFromCSV generates a schema.Config by inspecting CSV data.
// It returns ErrMissingColumn when no period, value or description column
// can be found.
func DiscoverFromCSV(data []byte, opts ...DiscoverOptions) (*Config, error) {
	opt := DefaultDiscoverOptions()
	if len(opts) > 0 {
		opt = opts[0]
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	// 1. Read headers
	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("CSV has no columns")
	}

	// 2. Read rows
	var rows [][]string
	for len(rows) < maxRows {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue // skip malformed rows
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, ErrNoDataRows
	}

	sample := rows
	if opt.SampleSize > 0 && len(sample) > opt.SampleSize {
		sample = sample[:opt.SampleSize]
	}

	// 3. Analyze each column
	columns := make([]columnAnalysis, len(headers))
	for i, header := range headers {
		columns[i] = analyzeColumn(header, i, sample)
	}

	// 4. Resolve the layout
	var layout Layout
	if opt.Layout != nil {
		if err := opt.Layout.Validate(); err != nil {
			return nil, err
		}
		if _, _, _, err := opt.Layout.Indices(headers); err != nil {
			return nil, err
		}
		layout = *opt.Layout
		for i := range columns {
			columns[i].role = roleForHeader(columns[i].header, layout)
		}
	} else {
		layout, err = assignRoles(columns)
		if err != nil {
			return nil, err
		}
	}

	_, _, descIdx, err := layout.Indices(headers)
	if err != nil {
		return nil, err
	}
	for i := range columns {
		if columns[i].role == roleSkipped {
			columns[i].explainSkip(sample, descIdx)
		}
	}

	config := &Config{
		Name:           opt.Name,
		Version:        "1.0",
		Layout:         layout,
		DiscoveredFrom: "CSV",
		DiscoveredAt:   time.Now().Format(time.RFC3339),
	}
	if config.Name == "" {
		config.Name = "Auto-discovered Dataset"
	}

	for _, col := range columns {
		config.Columns = append(config.Columns, col.toMeta())
		if col.role == roleSkipped {
			config.SkippedColumns = append(config.SkippedColumns, SkippedColumn{
				Column:      col.header,
				Reason:      col.skipReason,
				Recoverable: col.recoverable,
			})
		}
	}

	// 5. Collect content statistics over every row
	collectContent(config, headers, rows)
	return config, nil
}

// ============================================================================
// COLUMN ANALYSIS
// ============================================================================

type columnRole int

const (
	roleSkipped columnRole = iota
	rolePeriod
	roleValue
	roleDescription
)

func (r columnRole) String() string {
	switch r {
	case rolePeriod:
		return "period"
	case roleValue:
		return "value"
	case roleDescription:
		return "description"
	default:
		return "skipped"
	}
}

type columnType int

const (
	typeString columnType = iota
	typeNumeric
	typePeriod
)

func (t columnType) String() string {
	switch t {
	case typeNumeric:
		return "numeric"
	case typePeriod:
		return "period"
	default:
		return "string"
	}
}

type columnAnalysis struct {
	header      string
	key         string
	index       int
	colType     columnType
	role        columnRole
	skipReason  string
	recoverable bool

	// Stats
	uniqueCount     int
	nullCount       int
	sampleVals      []string
	hasDecimals     bool
	recognised      int // values that are recognised series descriptions
	cardinalityHint string
}

// analyzeColumn inspects the sampled values of a column.
func analyzeColumn(header string, index int, rows [][]string) columnAnalysis {
	col := columnAnalysis{
		header: header,
		key:    toSnakeCase(header),
		index:  index,
	}

	values := make([]string, 0, len(rows))
	uniqueSet := make(map[string]bool)
	for _, row := range rows {
		if index >= len(row) {
			col.nullCount++
			continue
		}
		val := strings.TrimSpace(row[index])
		if isNull(val) {
			col.nullCount++
			continue
		}
		values = append(values, val)
		uniqueSet[val] = true
	}

	col.uniqueCount = len(uniqueSet)
	col.sampleVals = collectSamples(uniqueSet, 10)
	col.colType = detectType(values)

	if col.colType == typeNumeric {
		for _, v := range values {
			if strings.Contains(v, ".") {
				col.hasDecimals = true
				break
			}
		}
	}
	if col.colType == typeString {
		recognised := recognisedSet()
		for v := range uniqueSet {
			if recognised[v] {
				col.recognised++
			}
		}
	}

	switch {
	case col.uniqueCount <= 10:
		col.cardinalityHint = "low"
	case col.uniqueCount <= 100:
		col.cardinalityHint = "medium"
	default:
		col.cardinalityHint = "high"
	}
	return col
}

// headerCandidates lists the header names that claim a role outright.
var headerCandidates = map[columnRole][]string{
	rolePeriod:      {"yyyymm", "period", "month"},
	roleValue:       {"value", "amount"},
	roleDescription: {"description", "series", "series_description"},
}

func roleForHeader(header string, layout Layout) columnRole {
	h := strings.TrimSpace(header)
	switch {
	case strings.EqualFold(h, strings.TrimSpace(layout.Period)):
		return rolePeriod
	case strings.EqualFold(h, strings.TrimSpace(layout.Value)):
		return roleValue
	case strings.EqualFold(h, strings.TrimSpace(layout.Description)):
		return roleDescription
	}
	return roleSkipped
}

// assignRoles picks the period, value and description columns.
func assignRoles(columns []columnAnalysis) (Layout, error) {
	claimed := make(map[columnRole]int)

	// Headers first
	for _, role := range []columnRole{rolePeriod, roleValue, roleDescription} {
		for i := range columns {
			if columns[i].role != roleSkipped {
				continue
			}
			if containsString(headerCandidates[role], columns[i].key) {
				columns[i].role = role
				claimed[role] = i
				break
			}
		}
	}

	// Then content
	if _, ok := claimed[rolePeriod]; !ok {
		for i := range columns {
			if columns[i].role == roleSkipped && columns[i].colType == typePeriod {
				columns[i].role = rolePeriod
				claimed[rolePeriod] = i
				break
			}
		}
	}
	if _, ok := claimed[roleValue]; !ok {
		best := -1
		for i := range columns {
			col := columns[i]
			if col.role != roleSkipped || col.colType != typeNumeric {
				continue
			}
			if best < 0 || (col.hasDecimals && !columns[best].hasDecimals) ||
				(col.hasDecimals == columns[best].hasDecimals && col.uniqueCount > columns[best].uniqueCount) {
				best = i
			}
		}
		if best >= 0 {
			columns[best].role = roleValue
			claimed[roleValue] = best
		}
	}
	if _, ok := claimed[roleDescription]; !ok {
		best := -1
		for i := range columns {
			col := columns[i]
			if col.role != roleSkipped || col.colType != typeString || col.recognised == 0 {
				continue
			}
			if best < 0 || col.recognised > columns[best].recognised {
				best = i
			}
		}
		if best >= 0 {
			columns[best].role = roleDescription
			claimed[roleDescription] = best
		}
	}

	var missing []string
	for _, role := range []columnRole{rolePeriod, roleValue, roleDescription} {
		if _, ok := claimed[role]; !ok {
			missing = append(missing, role.String())
		}
	}
	if len(missing) > 0 {
		return Layout{}, fmt.Errorf("%w: no %s column detected", ErrMissingColumn, strings.Join(missing, ", "))
	}

	return Layout{
		Period:      strings.TrimSpace(columns[claimed[rolePeriod]].header),
		Value:       strings.TrimSpace(columns[claimed[roleValue]].header),
		Description: strings.TrimSpace(columns[claimed[roleDescription]].header),
	}, nil
}

// explainSkip sets the reason a column is not used.
func (col *columnAnalysis) explainSkip(rows [][]string, descIdx int) {
	switch {
	case col.uniqueCount == 0:
		col.skipReason = "All values are empty/null"
		col.recoverable = false
	case col.uniqueCount == 1:
		col.skipReason = "Single value across all rows"
		col.recoverable = false
	case mirrorsColumn(rows, col.index, descIdx):
		col.skipReason = "One value per description — likely a series code"
		col.recoverable = true
	default:
		col.skipReason = "Not a period, value or description column"
		col.recoverable = true
	}
}

// mirrorsColumn reports whether every value of column a maps to exactly one
// value of column b.
func mirrorsColumn(rows [][]string, a, b int) bool {
	mapping := make(map[string]string)
	for _, row := range rows {
		if a >= len(row) || b >= len(row) {
			continue
		}
		va, vb := strings.TrimSpace(row[a]), strings.TrimSpace(row[b])
		if va == "" || vb == "" {
			continue
		}
		if existing, ok := mapping[va]; ok && existing != vb {
			return false
		}
		mapping[va] = vb
	}
	return len(mapping) > 1
}

// ============================================================================
// CONTENT STATISTICS
// ============================================================================

func collectContent(config *Config, headers []string, rows [][]string) {
	periodIdx, valueIdx, descIdx, err := config.Layout.Indices(headers)
	if err != nil {
		return
	}

	descSeen := make(map[string]bool)
	seriesRows := make(map[string]int)
	recognised := recognisedSet()

	for _, row := range rows {
		config.Stats.Rows++
		period := field(row, periodIdx)
		value := field(row, valueIdx)
		desc := field(row, descIdx)

		if period != "" {
			if config.Periods.First == "" || period < config.Periods.First {
				config.Periods.First = period
			}
			if period > config.Periods.Last {
				config.Periods.Last = period
			}
			if strings.HasSuffix(period, "13") {
				config.Stats.AnnualRows++
			}
		}
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			config.Stats.NonNumeric++
		}
		if desc != "" {
			descSeen[desc] = true
			if recognised[desc] {
				seriesRows[desc]++
			}
		}
	}

	config.Descriptions = make([]string, 0, len(descSeen))
	for d := range descSeen {
		config.Descriptions = append(config.Descriptions, d)
	}
	sort.Strings(config.Descriptions)

	for s := engine.SeriesProduction; s <= engine.SeriesExports; s++ {
		for _, r := range engine.Resources {
			desc := engine.Description(r, s)
			n, ok := seriesRows[desc]
			if !ok {
				config.MissingSeries = append(config.MissingSeries, desc)
				continue
			}
			config.Series = append(config.Series, SeriesMeta{
				Description: desc,
				Resource:    r.String(),
				Series:      s.String(),
				Rows:        n,
			})
		}
	}
}

func field(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func recognisedSet() map[string]bool {
	set := make(map[string]bool)
	for _, d := range engine.RecognizedDescriptions() {
		set[d] = true
	}
	return set
}

// ============================================================================
// TYPE DETECTION
// ============================================================================

var periodPattern = regexp.MustCompile(`^\d{6}$`)

// detectType inspects values to determine column type.
// Requires 80%+ of non-null values to match for period/numeric.
func detectType(values []string) columnType {
	if len(values) == 0 {
		return typeString
	}

	numCount := 0
	periodCount := 0
	for _, v := range values {
		if periodPattern.MatchString(v) {
			periodCount++
		}
		if isNumeric(v) {
			numCount++
		}
	}

	threshold := (len(values)*4 + 4) / 5 // ceil(0.8n)
	if periodCount >= threshold {
		return typePeriod
	}
	if numCount >= threshold {
		return typeNumeric
	}
	return typeString
}

func isNumeric(s string) bool {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "") // handle "1,234.56"
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isNull(s string) bool {
	return s == "" || s == "null" || s == "NULL" || s == "N/A" || s == "n/a"
}

// ============================================================================
// CONVERSION HELPERS
// ============================================================================

func (col *columnAnalysis) toMeta() ColumnMeta {
	return ColumnMeta{
		Header:          col.header,
		Key:             col.key,
		DisplayName:     toDisplayName(col.header),
		Role:            col.role.String(),
		Type:            col.colType.String(),
		SampleValues:    col.sampleVals,
		CardinalityHint: col.cardinalityHint,
	}
}

// ============================================================================
// STRING UTILITIES
// ============================================================================

// toSnakeCase converts "Column Name" or "columnName" → "column_name".
func toSnakeCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) && i > 0 {
			prev := rune(s[i-1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				result.WriteRune('_')
			}
		}
		result.WriteRune(r)
	}

	s = result.String()
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "__", "_")
	s = strings.Trim(s, "_")
	return s
}

// toDisplayName cleans a header for human display.
// "column_order" → "Column Order", "YYYYMM" → "Yyyymm"
func toDisplayName(s string) string {
	if strings.Contains(s, " ") {
		return strings.TrimSpace(s)
	}

	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")

	words := strings.Fields(s)
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
		}
	}
	return strings.Join(words, " ")
}

// collectSamples picks up to maxSamples representative values.
func collectSamples(uniqueSet map[string]bool, maxSamples int) []string {
	samples := make([]string, 0, len(uniqueSet))
	for v := range uniqueSet {
		samples = append(samples, v)
	}

	// Sort for deterministic output
	sort.Strings(samples)

	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return samples
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
