// Package config loads doped.toml, applies DOPED_* environment overrides
// and validates the result.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"

	"github.com/spektr-org/doped/engine"
	"github.com/spektr-org/doped/logging"
	"github.com/spektr-org/doped/schema"
)

// EnvPrefix prefixes every environment override, e.g. DOPED_RANGE_FIRST_YEAR.
const EnvPrefix = "DOPED"

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full run configuration. Environment keys follow the field
// path, e.g. DOPED_STORE_PATH or DOPED_LOG_OUTPUT_PATH.
type Config struct {
	Input   InputConfig    `toml:"input"`
	Range   RangeConfig    `toml:"range"`
	Output  OutputConfig   `toml:"output"`
	Store   StoreConfig    `toml:"store"`
	Metrics MetricsConfig  `toml:"metrics"`
	Log     logging.Config `toml:"log"`
}

// InputConfig names the three source CSV files. An empty Layout means the
// layout of each file is discovered.
type InputConfig struct {
	Production string        `toml:"production"`
	Imports    string        `toml:"imports"`
	Exports    string        `toml:"exports"`
	Layout     schema.Layout `toml:"layout"`
}

// RangeConfig is the inclusive year range of the analysis.
type RangeConfig struct {
	FirstYear int `toml:"first_year" split_words:"true" validate:"min=1000,max=9998"`
	LastYear  int `toml:"last_year" split_words:"true" validate:"min=1000,max=9998,gtefield=FirstYear"`
}

// OutputConfig controls the exporters.
type OutputConfig struct {
	Dir     string   `toml:"dir" validate:"required"`
	Formats []string `toml:"formats" validate:"dive,oneof=csv json yaml xlsx arrow"`
}

// StoreConfig enables sqlite persistence when Path is set.
type StoreConfig struct {
	Path string `toml:"path"`
}

// MetricsConfig enables the prometheus textfile when Textfile is set.
type MetricsConfig struct {
	Textfile string `toml:"textfile"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Production: "data/Primary_Energy_Production.csv",
			Imports:    "data/Primary_Energy_Import.csv",
			Exports:    "data/Primary_Energy_Export.csv",
		},
		Range: RangeConfig{
			FirstYear: engine.DefaultFirstYear,
			LastYear:  engine.DefaultLastYear,
		},
		Output: OutputConfig{
			Dir:     "out",
			Formats: []string{"csv", "json"},
		},
		Log: logging.DefaultConfig(),
	}
}

// Load builds the configuration from defaults, then the TOML file at path
// (skipped when path is empty), then DOPED_* environment variables, and
// validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes TOML into cfg, overriding only the keys present.
func Parse(data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	return nil
}

// Validate checks ranges, formats and the log settings.
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatFieldError(fe))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// Options converts the configuration into engine options.
func (c *Config) Options() []engine.Option {
	return []engine.Option{engine.WithYearRange(c.Range.FirstYear, c.Range.LastYear)}
}

// Layout returns the configured input layout, or nil when the layout
// should be discovered.
func (c *Config) Layout() *schema.Layout {
	if c.Input.Layout == (schema.Layout{}) {
		return nil
	}
	l := c.Input.Layout
	return &l
}

func newValidator() *validator.Validate {
	v := validator.New()
	// Use TOML key names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "min", "max":
		return fmt.Sprintf("%s must be %s %s (got %v)", field, map[string]string{"min": ">=", "max": "<="}[fe.Tag()], fe.Param(), fe.Value())
	case "gtefield":
		return fmt.Sprintf("%s must not be before first_year (got %v)", field, fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", field, fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s", field, fe.Tag())
	}
}
