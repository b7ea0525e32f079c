package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cleared-dev/books/internal/accounts"
	"github.com/cleared-dev/books/internal/audit"
	"github.com/cleared-dev/books/internal/config"
	"github.com/cleared-dev/books/internal/journal"
	"github.com/cleared-dev/books/internal/logging"
	"github.com/cleared-dev/books/internal/metrics"
	"github.com/cleared-dev/books/internal/reconcile"
	"github.com/cleared-dev/books/internal/reconciliation"
	"github.com/cleared-dev/books/internal/store"
)

// rootOptions are the persistent flags shared by every subcommand.
type rootOptions struct {
	repoDir     string
	metricsFile string
}

// app is the wiring behind one command invocation.
type app struct {
	dir      string
	cfg      *config.Config
	store    *store.Store
	chart    *accounts.Service
	logger   *slog.Logger
	metrics  *metrics.Metrics
	journal  *journal.Service
	recon    *reconciliation.Service
	format   formatter
	metricsF string
}

// openApp loads books.yaml from the repo directory, applies .env and
// environment overrides, and opens the database.
func openApp(ctx context.Context, opts *rootOptions, stderr io.Writer) (*app, error) {
	dir, err := filepath.Abs(opts.repoDir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if err := config.LoadDotEnv(filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run 'books init' first)", err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	lc := cfg.LoggerConfig()
	lc.Output = stderr
	logger, err := logging.New(lc)
	if err != nil {
		return nil, err
	}

	matcher, err := reconcile.NewMatcher(cfg.MatcherConfig())
	if err != nil {
		return nil, err
	}

	dbPath := cfg.Database.Path
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(dir, dbPath)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}

	a := &app{dir: dir, cfg: cfg, store: st, logger: logger, metricsF: opts.metricsFile}
	if err := a.loadChart(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	a.metrics = metrics.New(metrics.DefaultConfig())
	a.format = newFormatter(cfg.Business.Currency)
	a.journal = journal.NewService(st, a.chart, logger, a.metrics)
	a.recon = reconciliation.NewService(st, st, a.chart,
		reconciliation.WithMatcher(matcher),
		reconciliation.WithLogger(logger),
		reconciliation.WithMetrics(a.metrics),
	)
	return a, nil
}

func (a *app) loadChart(ctx context.Context) error {
	accts, err := a.store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	chart := accounts.NewService(accts)
	if err := chart.Validate(); err != nil {
		return fmt.Errorf("chart of accounts: %w", err)
	}
	a.chart = chart
	return nil
}

// record appends to the audit log. The change is already stored, so a
// failed write is logged rather than returned.
func (a *app) record(action audit.Action, resourceID, details string) {
	err := audit.Append(a.dir, audit.Record{
		Timestamp:  time.Now(),
		Actor:      config.Actor(),
		Action:     action,
		ResourceID: resourceID,
		Details:    details,
	})
	if err != nil {
		a.logger.Warn("audit log write failed", "action", action, "resource_id", resourceID, "error", err)
	}
}

// Close writes the metrics textfile when requested and closes the database.
func (a *app) Close() error {
	var firstErr error
	if a.metricsF != "" {
		if err := prometheus.WriteToTextfile(a.metricsF, a.metrics.Registry()); err != nil {
			firstErr = fmt.Errorf("writing metrics: %w", err)
		}
	}
	if err := a.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
