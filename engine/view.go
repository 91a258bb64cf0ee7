package engine

import "strconv"

// ============================================================================
// RECORD VIEW — Zero-Copy Data Access Interface
// ============================================================================
// The engine never owns caller data. It reads through this interface.
//
// Implementations:
//   DomainView[T]  — reads typed structs via accessor functions (zero-copy)
//   SubView        — filtered subset (indices into parent, zero-copy)
//   ConcatView     — virtual concatenation of two views
//
// Raw records and supply rows are exposed through package-level adapters.
// ============================================================================

// Dimension and measure keys understood by the engine's views.
const (
	KeyPeriod      = "period"
	KeyDescription = "description"
	KeyValue       = "value"
	KeyYear        = "year"
	KeySupply      = "supply"
)

// RecordView provides indexed access to a dataset.
// Stages call Dimension/Measure in tight loops — keep implementations fast.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string // available dimension keys
	MeasureKeys() []string   // available measure keys
}

var rawRecordAdapter = NewDomainAdapter[RawRecord]().
	Dimension(KeyPeriod, func(r RawRecord) string { return r.Period }).
	Dimension(KeyDescription, func(r RawRecord) string { return r.Description }).
	Measure(KeyValue, func(r RawRecord) float64 { return r.Value })

// NewRecordView exposes raw records as a RecordView with the period and
// description dimensions and the value measure.
func NewRecordView(records []RawRecord) RecordView {
	return rawRecordAdapter.Bind(records)
}

var supplyRowAdapter = NewDomainAdapter[SupplyRow]().
	Dimension(KeyPeriod, func(r SupplyRow) string { return r.Period }).
	Dimension(KeyYear, func(r SupplyRow) string {
		if r.Year == 0 {
			return ""
		}
		return strconv.Itoa(r.Year)
	}).
	Measure(KeySupply, func(r SupplyRow) float64 { return r.Supply })

// ============================================================================
// SUB VIEW — filtered subset (zero-copy)
// ============================================================================

// SubView is a filtered subset of a parent RecordView.
// Holds indices into the parent — no data copy.
type SubView struct {
	parent  RecordView
	indices []int
}

func newSubView(parent RecordView, indices []int) RecordView {
	return &SubView{parent: parent, indices: indices}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// ============================================================================
// CONCAT VIEW — virtual concatenation of two views
// ============================================================================

// ConcatView logically concatenates two RecordViews: every row of a, then
// every row of b, each in its original order.
type ConcatView struct {
	a, b RecordView
}

func newConcatView(a, b RecordView) RecordView {
	return &ConcatView{a: a, b: b}
}

func (v *ConcatView) Len() int { return v.a.Len() + v.b.Len() }

func (v *ConcatView) Dimension(i int, key string) string {
	if i < v.a.Len() {
		return v.a.Dimension(i, key)
	}
	return v.b.Dimension(i-v.a.Len(), key)
}

func (v *ConcatView) Measure(i int, key string) float64 {
	if i < v.a.Len() {
		return v.a.Measure(i, key)
	}
	return v.b.Measure(i-v.a.Len(), key)
}

func (v *ConcatView) DimensionKeys() []string { return v.a.DimensionKeys() }
func (v *ConcatView) MeasureKeys() []string   { return v.a.MeasureKeys() }

// ============================================================================
// DOMAIN ADAPTER — Zero-copy typed struct access
// ============================================================================
//
// Usage:
//
//	adapter := engine.NewDomainAdapter[Row]().
//	    Dimension("period", func(r Row) string { return r.Period }).
//	    Measure("value", func(r Row) float64 { return r.Value })
//
//	view := adapter.Bind(rows)
//
// ============================================================================

// DomainAdapter builds a RecordView from typed structs.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dimOrder []string
	mesOrder []string
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
}

// NewDomainAdapter creates a new adapter for type T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension registers a dimension accessor.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, exists := a.dims[key]; !exists {
		a.dimOrder = append(a.dimOrder, key)
	}
	a.dims[key] = fn
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, exists := a.meas[key]; !exists {
		a.mesOrder = append(a.mesOrder, key)
	}
	a.meas[key] = fn
	return a
}

// Bind creates a RecordView from a data slice. Zero-copy — holds reference.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &DomainView[T]{
		data:     data,
		dims:     a.dims,
		meas:     a.meas,
		dimKeys:  a.dimOrder,
		measKeys: a.mesOrder,
	}
}

// DomainView reads typed struct fields via registered accessor functions.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	meas     map[string]func(T) float64
	dimKeys  []string
	measKeys []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.data) {
		return ""
	}
	if fn, ok := v.dims[key]; ok {
		return fn(v.data[i])
	}
	return ""
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.data) {
		return 0
	}
	if fn, ok := v.meas[key]; ok {
		return fn(v.data[i])
	}
	return 0
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.measKeys }
