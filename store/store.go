// Package store persists pipeline runs in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/spektr-org/doped/engine"
	"github.com/spektr-org/doped/report"
)

// ErrRunNotFound is returned when a run ID has no stored run.
var ErrRunNotFound = errors.New("run not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	created_at  TEXT NOT NULL,
	first_year  INTEGER NOT NULL,
	last_year   INTEGER NOT NULL,
	classified  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS components (
	run_id          TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	resource        TEXT NOT NULL,
	period          TEXT NOT NULL,
	year            INTEGER,
	supply          REAL,
	share           REAL,
	log_share       REAL,
	share_log_share REAL,
	PRIMARY KEY (run_id, resource, period)
);
CREATE TABLE IF NOT EXISTS totals (
	run_id       TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	year         INTEGER NOT NULL,
	total_supply REAL,
	PRIMARY KEY (run_id, year)
);
CREATE TABLE IF NOT EXISTS indices (
	run_id     TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	year       INTEGER NOT NULL,
	doped      REAL,
	normalized REAL,
	PRIMARY KEY (run_id, year)
);
`

// Store is a SQLite-backed run store. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Run is the stored summary of one pipeline run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	CreatedAt  time.Time `json:"createdAt" yaml:"createdAt"`
	FirstYear  int       `json:"firstYear" yaml:"firstYear"`
	LastYear   int       `json:"lastYear" yaml:"lastYear"`
	Classified int       `json:"classified" yaml:"classified"`
}

// Option configures Open.
type Option func(*Store)

// WithLogger sets the store's logger. Default: no-op.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRunID returns a fresh random run ID.
func NewRunID() string {
	return uuid.NewString()
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	s := &Store{path: path, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	for _, pragma := range []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			s.logger.Debug("pragma failed", zap.String("pragma", pragma), zap.Error(err))
		}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.db = db
	s.logger.Debug("store opened", zap.String("path", path))
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores result and idx under runID in one transaction. An empty
// runID gets a fresh one. The stored ID is returned.
func (s *Store) SaveRun(ctx context.Context, runID string, result *engine.Result, idx report.Index) (string, error) {
	if result == nil {
		return "", fmt.Errorf("store: nil result")
	}
	if runID == "" {
		runID = NewRunID()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, first_year, last_year, classified) VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now().UTC().Format(time.RFC3339Nano), result.FirstYear, result.LastYear, result.Classified,
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	components, err := tx.PrepareContext(ctx,
		`INSERT INTO components (run_id, resource, period, year, supply, share, log_share, share_log_share)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer components.Close()
	for _, r := range engine.Resources {
		for _, row := range result.Tables.Get(r).Rows {
			if _, err := components.ExecContext(ctx, runID, r.String(), row.Period, nullYear(row.Year),
				nullFloat(row.Supply), nullFloat(row.Share), nullFloat(row.LogShare), nullFloat(row.ShareLogShare),
			); err != nil {
				return "", fmt.Errorf("failed to insert %s component: %w", r, err)
			}
		}
	}

	totals, err := tx.PrepareContext(ctx, `INSERT INTO totals (run_id, year, total_supply) VALUES (?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer totals.Close()
	for _, yt := range result.Totals {
		if _, err := totals.ExecContext(ctx, runID, yt.Year, nullFloat(yt.TotalSupply)); err != nil {
			return "", fmt.Errorf("failed to insert total: %w", err)
		}
	}

	indices, err := tx.PrepareContext(ctx, `INSERT INTO indices (run_id, year, doped, normalized) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer indices.Close()
	for _, p := range idx {
		if _, err := indices.ExecContext(ctx, runID, p.Year, nullFloat(p.DoPED), nullFloat(p.Normalized)); err != nil {
			return "", fmt.Errorf("failed to insert index: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit run: %w", err)
	}
	s.logger.Info("run stored", zap.String("run_id", runID), zap.Int("years", len(result.Totals)))
	return runID, nil
}

// LoadTotals returns the yearly totals of a run, by increasing year.
// Stored NULLs come back as NaN.
func (s *Store) LoadTotals(ctx context.Context, runID string) (engine.YearlyTotals, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT year, total_supply FROM totals WHERE run_id = ? ORDER BY year`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(engine.YearlyTotals, 0)
	for rows.Next() {
		var yt engine.YearlyTotal
		var total sql.NullFloat64
		if err := rows.Scan(&yt.Year, &total); err != nil {
			return nil, err
		}
		yt.TotalSupply = fromNull(total)
		out = append(out, yt)
	}
	return out, rows.Err()
}

// LoadIndex returns the index of a run, by increasing year.
func (s *Store) LoadIndex(ctx context.Context, runID string) (report.Index, error) {
	if err := s.requireRun(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT year, doped, normalized FROM indices WHERE run_id = ? ORDER BY year`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(report.Index, 0)
	for rows.Next() {
		var p report.IndexPoint
		var doped, norm sql.NullFloat64
		if err := rows.Scan(&p.Year, &doped, &norm); err != nil {
			return nil, err
		}
		p.DoPED, p.Normalized = fromNull(doped), fromNull(norm)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, created_at, first_year, last_year, classified FROM runs ORDER BY rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var created string
		if err := rows.Scan(&r.ID, &created, &r.FirstYear, &r.LastYear, &r.Classified); err != nil {
			return nil, err
		}
		if r.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, fmt.Errorf("run %s: bad created_at: %w", r.ID, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DeleteRun removes a run and everything stored under it.
func (s *Store) DeleteRun(ctx context.Context, runID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func (s *Store) requireRun(ctx context.Context, runID string) error {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM runs WHERE id = ?`, runID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return err
}

func nullFloat(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func nullYear(year int) sql.NullInt64 {
	if year == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(year), Valid: true}
}

func fromNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
