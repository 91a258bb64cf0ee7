// Package export writes pipeline results to files in several formats.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/doped/engine"
	"github.com/spektr-org/doped/report"
)

// ErrUnknownFormat is returned for a format name no writer handles.
var ErrUnknownFormat = errors.New("unknown export format")

// Format names.
const (
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatXLSX  = "xlsx"
	FormatArrow = "arrow"
)

// writer writes frames under dir and returns the paths it created.
type writer func(dir string, frames []Frame, meta Meta) ([]string, error)

var writers = map[string]writer{
	FormatCSV:   writeCSV,
	FormatJSON:  writeJSON,
	FormatYAML:  writeYAML,
	FormatXLSX:  writeXLSX,
	FormatArrow: writeArrow,
}

// Formats returns the supported format names, sorted.
func Formats() []string {
	out := make([]string, 0, len(writers))
	for name := range writers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Meta describes the run that produced the frames.
type Meta struct {
	RunID     string `json:"runId,omitempty" yaml:"runId,omitempty"`
	FirstYear int    `json:"firstYear" yaml:"firstYear"`
	LastYear  int    `json:"lastYear" yaml:"lastYear"`
}

// Write exports result and idx to dir in every requested format. Formats
// are case-insensitive; duplicates are written once. All names are checked
// before anything is written. It returns the created paths, sorted.
func Write(ctx context.Context, dir string, formats []string, result *engine.Result, idx report.Index, opts ...Option) ([]string, error) {
	if result == nil {
		return nil, fmt.Errorf("export: nil result")
	}
	cfg := applyOptions(opts)

	selected := make([]string, 0, len(formats))
	seen := make(map[string]bool)
	for _, f := range formats {
		name := strings.ToLower(strings.TrimSpace(f))
		if _, ok := writers[name]; !ok {
			return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownFormat, f, strings.Join(Formats(), ", "))
		}
		if !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	frames := Frames(result, idx)
	meta := Meta{RunID: cfg.runID, FirstYear: result.FirstYear, LastYear: result.LastYear}

	var (
		mu    sync.Mutex
		paths []string
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, name := range selected {
		name := name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			written, err := writers[name](dir, frames, meta)
			if err != nil {
				return fmt.Errorf("export %s: %w", name, err)
			}
			mu.Lock()
			paths = append(paths, written...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(paths)
	return paths, nil
}

// Option configures Write.
type Option func(*config)

type config struct {
	runID string
}

// WithRunID stamps documents that carry metadata with a run ID.
func WithRunID(id string) Option {
	return func(c *config) { c.runID = id }
}

func applyOptions(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func framePath(dir string, f Frame, ext string) string {
	return filepath.Join(dir, f.Name+"."+ext)
}
