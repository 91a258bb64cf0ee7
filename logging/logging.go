// Package logging builds the zap loggers used across doped.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration
type Config struct {
	Level       string            `json:"level" toml:"level" validate:"omitempty,oneof=debug info warn error dpanic panic fatal"`
	Format      string            `json:"format" toml:"format" validate:"omitempty,oneof=json console"`
	OutputPath  string            `json:"output_path" toml:"output_path" split_words:"true"`
	Fields      map[string]string `json:"fields" toml:"fields" ignored:"true"`
	Development bool              `json:"development" toml:"development"`
}

// DefaultConfig logs info and above to stderr in console format.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: "console",
		Fields: map[string]string{"service": "doped"},
	}
}

// New creates a structured logger from config.
// An unparseable level falls back to info.
func New(config Config) (*zap.Logger, error) {
	var zapConfig zap.Config

	if config.Development {
		zapConfig = zap.NewDevelopmentConfig()
	} else {
		zapConfig = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(config.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	zapConfig.Level = level

	if config.Format == "console" {
		zapConfig.Encoding = "console"
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	} else {
		zapConfig.Encoding = "json"
	}

	zapConfig.OutputPaths = []string{"stderr"}
	if config.OutputPath != "" {
		zapConfig.OutputPaths = []string{config.OutputPath}
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	fields := make([]zap.Field, 0, len(config.Fields))
	for k, v := range config.Fields {
		fields = append(fields, zap.String(k, v))
	}
	return logger.With(fields...), nil
}

// Stage scopes a logger to one pipeline stage.
func Stage(logger *zap.Logger, stage string, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger.With(append([]zap.Field{zap.String("stage", stage)}, fields...)...)
}

// DataQuality logs a data quality issue at warn level.
func DataQuality(logger *zap.Logger, entity, issue string, fields ...zap.Field) {
	logger.Warn("data quality issue", append([]zap.Field{
		zap.String("entity", entity),
		zap.String("issue", issue),
		zap.String("type", "data_quality"),
	}, fields...)...)
}
