package engine

import (
	"strings"
)

// ============================================================================
// FILTERS — Dimension-Based Filtering via RecordView
// ============================================================================
// Single-pass filter: checks ALL dimension constraints per record in one loop.
// Returns a SubView (index list into parent) — zero data copy.
// ============================================================================

// Filters define which records to include.
// Keys are dimension names. Values are allowed values, matched exactly.
// OR within a dimension, AND across dimensions. Empty = all.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions"`
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	if f.Dimensions == nil {
		return true
	}
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// ApplyFilters returns a view of records matching all dimension filters.
// Matching is exact and case-sensitive.
// Empty filter = no restriction (returns original view).
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toSet(allowed)
		}
	}

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		pass := true
		for dim, set := range sets {
			if !set[view.Dimension(i, dim)] {
				pass = false
				break
			}
		}
		if pass {
			indices = append(indices, i)
		}
	}

	return newSubView(view, indices)
}

// ContainsFilter returns a view of records whose dimension contains token,
// ignoring case. An empty token keeps every record.
func ContainsFilter(view RecordView, dimension, token string) RecordView {
	if token == "" {
		return view
	}
	needle := strings.ToLower(token)

	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if strings.Contains(strings.ToLower(view.Dimension(i, dimension)), needle) {
			indices = append(indices, i)
		}
	}
	return newSubView(view, indices)
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}
