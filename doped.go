// Package doped computes the degree of primary energy diversity (DoPED)
// from monthly EIA production, import and export statistics.
//
// Usage:
//
//	import "github.com/spektr-org/doped/engine"
//
//	result, err := engine.Execute(production, imports, exports,
//	    engine.WithYearRange(1973, 2022),
//	)
//	idx := report.ComputeIndex(result)
//
// The engine classifies the raw records into coal, natural gas, crude oil
// and biomass series, reshapes them per resource, derives annual supply,
// totals it per year and computes each resource's share components.
// The engine never does I/O; loading, export and persistence live in
// helpers, export and store.
package doped
