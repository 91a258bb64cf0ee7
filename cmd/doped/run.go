package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/doped/config"
	"github.com/spektr-org/doped/engine"
	"github.com/spektr-org/doped/export"
	"github.com/spektr-org/doped/helpers"
	"github.com/spektr-org/doped/logging"
	"github.com/spektr-org/doped/metrics"
	"github.com/spektr-org/doped/report"
	"github.com/spektr-org/doped/store"
)

// printFormats are the stdout renderings of a run.
var printFormats = []string{"text", "tables", "charts", "csv", "json", "pretty", "yaml", "none"}

// runFlags holds the command-line overrides of the run command.
type runFlags struct {
	configPath string
	production string
	imports    string
	exports    string
	outDir     string
	formats    string
	firstYear  int
	lastYear   int
	storePath  string
	textfile   string
	logLevel   string
	print      string
}

func newRunCmd() *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compute the diversity index from production, import and export CSVs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(f.print, printFormats...); err != nil {
				return err
			}

			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			return runPipeline(cmd, cfg, logger, f.print)
		},
	}

	// ── Flags ──
	fl := cmd.Flags()
	fl.StringVar(&f.configPath, "config", "", "Path to doped.toml")
	fl.StringVar(&f.production, "production", "", "Production CSV")
	fl.StringVar(&f.imports, "imports", "", "Imports CSV")
	fl.StringVar(&f.exports, "exports", "", "Exports CSV")
	fl.StringVar(&f.outDir, "out", "", "Output directory")
	fl.StringVar(&f.formats, "format", "", "Comma-separated export formats: "+strings.Join(export.Formats(), ", "))
	fl.IntVar(&f.firstYear, "first-year", 0, "First year of the analysis")
	fl.IntVar(&f.lastYear, "last-year", 0, "Last year of the analysis")
	fl.StringVar(&f.storePath, "store", "", "sqlite database that records the run")
	fl.StringVar(&f.textfile, "metrics-textfile", "", "Write prometheus metrics to this file")
	fl.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	fl.StringVar(&f.print, "print", "text", "Stdout output: "+strings.Join(printFormats, ", "))
	return cmd
}

// loadConfig loads defaults, file and environment, then applies every flag
// the user set and validates again.
func loadConfig(cmd *cobra.Command, f *runFlags) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	fl := cmd.Flags()
	if fl.Changed("production") {
		cfg.Input.Production = f.production
	}
	if fl.Changed("imports") {
		cfg.Input.Imports = f.imports
	}
	if fl.Changed("exports") {
		cfg.Input.Exports = f.exports
	}
	if fl.Changed("out") {
		cfg.Output.Dir = f.outDir
	}
	if fl.Changed("format") {
		cfg.Output.Formats = splitList(f.formats)
	}
	if fl.Changed("first-year") {
		cfg.Range.FirstYear = f.firstYear
	}
	if fl.Changed("last-year") {
		cfg.Range.LastYear = f.lastYear
	}
	if fl.Changed("store") {
		cfg.Store.Path = f.storePath
	}
	if fl.Changed("metrics-textfile") {
		cfg.Metrics.Textfile = f.textfile
	}
	if fl.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// ============================================================================
// PIPELINE
// ============================================================================

func runPipeline(cmd *cobra.Command, cfg *config.Config, logger *zap.Logger, printFormat string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	// ── Load ──
	prod, imp, exp, err := loadInputs(ctx, cfg, logger)
	if err != nil {
		return err
	}

	// ── Execute ──
	recorder := metrics.NewRecorder()
	opts := append(cfg.Options(), engine.WithLogger(logger), engine.WithObserver(recorder))
	result, err := engine.Execute(prod, imp, exp, opts...)
	if err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}
	idx := report.ComputeIndex(result)
	runID := store.NewRunID()

	// ── Export ──
	var files []string
	if len(cfg.Output.Formats) > 0 {
		files, err = export.Write(ctx, cfg.Output.Dir, cfg.Output.Formats, result, idx, export.WithRunID(runID))
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		logger.Info("results exported", zap.String("run_id", runID), zap.Int("files", len(files)))
	}

	// ── Persist ──
	if cfg.Store.Path != "" {
		if err := saveRun(ctx, cfg.Store.Path, runID, result, idx, logger); err != nil {
			return err
		}
	}

	if cfg.Metrics.Textfile != "" {
		if err := recorder.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	// ── Print ──
	out := cmd.OutOrStdout()
	switch printFormat {
	case "none":
		return nil
	case "csv":
		return writeTableCSV(out, report.BuildIndexTable(idx))
	case "tables":
		tables := make([]*report.TableData, 0, len(engine.Resources)+2)
		for _, r := range engine.Resources {
			tables = append(tables, report.BuildResourceTable(result.Tables.Get(r)))
		}
		tables = append(tables, report.BuildTotalsTable(result.Totals), report.BuildIndexTable(idx))
		return writeTablesText(out, tables)
	case "charts":
		return writeDocument(out, chartsOutput{Share: report.BuildShareChart(result), Index: report.BuildIndexChart(idx)}, "pretty")
	case "json", "pretty", "yaml":
		return writeDocument(out, newIndexOutput(runID, idx, files), printFormat)
	default:
		return writeTableText(out, report.BuildIndexTable(idx), report.BuildSummary(idx))
	}
}

// loadInputs reads and parses the three source files concurrently.
func loadInputs(ctx context.Context, cfg *config.Config, logger *zap.Logger) (prod, imp, exp []engine.RawRecord, err error) {
	paths := [3]string{cfg.Input.Production, cfg.Input.Imports, cfg.Input.Exports}
	var records [3][]engine.RawRecord

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			recs, err := readRecords(path, cfg)
			if err != nil {
				return err
			}
			logger.Debug("input loaded", zap.String("path", path), zap.Int("records", len(recs)))
			records[i] = recs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return records[0], records[1], records[2], nil
}

func readRecords(path string, cfg *config.Config) ([]engine.RawRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	if layout := cfg.Layout(); layout != nil {
		recs, err := helpers.ParseRecords(data, *layout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return recs, nil
	}

	recs, _, err := helpers.ParseRecordsAuto(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}

func saveRun(ctx context.Context, path, runID string, result *engine.Result, idx report.Index, logger *zap.Logger) error {
	st, err := store.Open(ctx, path, store.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	if _, err := st.SaveRun(ctx, runID, result, idx); err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}
