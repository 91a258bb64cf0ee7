package engine

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ============================================================================
// ENGINE OPTIONS — Functional options for Execute() and the stages
// ============================================================================

// Default year range of the annual tables.
const (
	DefaultFirstYear = 1973
	DefaultLastYear  = 2022
)

// Pipeline stage names reported to loggers and observers.
const (
	StageClassify  = "classify"
	StageReshape   = "reshape"
	StageSupply    = "supply"
	StageAggregate = "aggregate"
	StageDiversity = "diversity"
)

// Option configures engine behavior via functional options pattern.
type Option func(*config)

// Observer receives pipeline statistics. Implementations must be cheap;
// they are called synchronously from the stages.
type Observer interface {
	ObserveClassified(source Series, kept, total int)
	ObserveRows(r Resource, stage string, rows int)
	ObserveMissing(r Resource, column string, count int)
	ObserveStage(stage string, elapsed time.Duration)
}

type config struct {
	FirstYear int
	LastYear  int
	Logger    *zap.Logger
	Observer  Observer
}

// WithYearRange restricts the annual tables to [first, last] inclusive.
func WithYearRange(first, last int) Option {
	return func(c *config) {
		c.FirstYear = first
		c.LastYear = last
	}
}

// WithLogger sets the logger used for stage diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithObserver registers an Observer for pipeline statistics.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.Observer = o
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		FirstYear: DefaultFirstYear,
		LastYear:  DefaultLastYear,
		Logger:    zap.NewNop(),
		Observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// periodBounds returns the inclusive lexicographic bounds a period string
// must fall within. The upper bound is the year after LastYear, so
// "202213" <= "2023" holds while "202313" > "2023" does not.
func (c *config) periodBounds() (lower, upper string) {
	return fmt.Sprintf("%04d", c.FirstYear), fmt.Sprintf("%04d", c.LastYear+1)
}

type nopObserver struct{}

func (nopObserver) ObserveClassified(Series, int, int)   {}
func (nopObserver) ObserveRows(Resource, string, int)    {}
func (nopObserver) ObserveMissing(Resource, string, int) {}
func (nopObserver) ObserveStage(string, time.Duration)   {}
