package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds ledger and reconciliation counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	EntriesCreated  prometheus.Counter
	EntriesRejected *prometheus.CounterVec
	MatchRuns       prometheus.Counter
	Matches         *prometheus.CounterVec
	RejectedLines   prometheus.Counter
	Locks           prometheus.Counter
	Conflicts       *prometheus.CounterVec
	MatchCandidates prometheus.Histogram
}

// Config holds metrics configuration.
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig returns default metrics configuration.
func DefaultConfig() *Config {
	return &Config{Namespace: "books", Subsystem: "ledger"}
}

// New creates a Metrics instance on its own registry.
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		EntriesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "journal_entries_created_total",
			Help:      "Journal entries accepted and stored",
		}),
		EntriesRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "journal_entries_rejected_total",
			Help:      "Journal entries rejected before storage",
		}, []string{"kind"}),
		MatchRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "reconciliation_runs_total",
			Help:      "Matching runs stored against a reconciliation",
		}),
		Matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "reconciliation_matches_total",
			Help:      "Statement lines processed by match type",
		}, []string{"match_type"}),
		RejectedLines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "reconciliation_rejected_lines_total",
			Help:      "Malformed statement lines rejected by the matcher",
		}),
		Locks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "reconciliation_locks_total",
			Help:      "Reconciliations transitioned to locked",
		}),
		Conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "reconciliation_conflicts_total",
			Help:      "Operations rejected because the reconciliation was locked",
		}, []string{"operation"}),
		MatchCandidates: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "reconciliation_candidates",
			Help:      "Candidate ledger lines considered per matching run",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	registry.MustRegister(
		m.EntriesCreated,
		m.EntriesRejected,
		m.MatchRuns,
		m.Matches,
		m.RejectedLines,
		m.Locks,
		m.Conflicts,
		m.MatchCandidates,
	)

	return m
}

// Registry returns the registry holding all metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordEntryCreated counts a stored journal entry.
func (m *Metrics) RecordEntryCreated() {
	if m == nil {
		return
	}
	m.EntriesCreated.Inc()
}

// RecordEntryRejected counts a rejected journal entry by error kind.
func (m *Metrics) RecordEntryRejected(kind string) {
	if m == nil {
		return
	}
	m.EntriesRejected.WithLabelValues(kind).Inc()
}

// RecordMatchRun counts one stored matching run and its outcome mix.
func (m *Metrics) RecordMatchRun(candidates, exact, fuzzy, none, rejected int) {
	if m == nil {
		return
	}
	m.MatchRuns.Inc()
	m.MatchCandidates.Observe(float64(candidates))
	m.Matches.WithLabelValues("exact").Add(float64(exact))
	m.Matches.WithLabelValues("fuzzy").Add(float64(fuzzy))
	m.Matches.WithLabelValues("none").Add(float64(none))
	m.RejectedLines.Add(float64(rejected))
}

// RecordLock counts a successful lock transition.
func (m *Metrics) RecordLock() {
	if m == nil {
		return
	}
	m.Locks.Inc()
}

// RecordConflict counts an operation that lost to a locked reconciliation.
func (m *Metrics) RecordConflict(operation string) {
	if m == nil {
		return
	}
	m.Conflicts.WithLabelValues(operation).Inc()
}
