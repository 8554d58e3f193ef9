// Package metrics provides Prometheus metrics for the pregame dataset builder.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Source kinds used as label values.
const (
	KindTeam     = "team"
	KindPitching = "pitching"
)

// Stage names used as label values.
const (
	StageLoad     = "load"
	StageStarter  = "starter"
	StageTeamForm = "team_form"
	StageMerge    = "merge"
	StagePivot    = "pivot"
	StageWrite    = "write"
)

// Manager manages all Prometheus metrics for a pipeline run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	registry         prometheus.Registerer
	gatherer         prometheus.Gatherer

	// Source Metrics - what was read
	filesLoaded  *prometheus.CounterVec
	filesSkipped *prometheus.CounterVec
	rowsLoaded   *prometheus.CounterVec

	// Aggregation Metrics - what was derived
	startersAggregated prometheus.Counter
	duplicateStarters  prometheus.Counter
	missingStarters    prometheus.Counter
	teamGamesRolled    prometheus.Counter

	// Output Metrics
	unmatchedGames  prometheus.Counter
	matchupsWritten prometheus.Gauge

	// Run Metrics
	stageDuration  *prometheus.HistogramVec
	runFailures    *prometheus.CounterVec
	lastSuccessUTC prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pregame",
		subsystem:        "dataset",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
		gatherer:         prometheus.DefaultGatherer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// Default returns the process-wide manager backed by the custom registry.
func Default() *Manager { return globalManager }

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	if !m.enabled {
		// Unregistered collectors still count; nothing is exported.
		auto = promauto.With(nil)
	}
	labels := prometheus.Labels(m.customLabels)

	m.filesLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_loaded_total",
		Help:        "Source files read, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.filesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "files_skipped_total",
		Help:        "Season files that were absent and skipped, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.rowsLoaded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rows_loaded_total",
		Help:        "Source rows read, by kind",
		ConstLabels: labels,
	}, []string{"kind"})

	m.startersAggregated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "starters_aggregated_total",
		Help:        "Starting pitcher appearances with pre-game rates",
		ConstLabels: labels,
	})

	m.duplicateStarters = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "duplicate_starters_total",
		Help:        "Extra starter records for a game and team that were ignored",
		ConstLabels: labels,
	})

	m.missingStarters = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "missing_starters_total",
		Help:        "Team-games without a starter record that received default rates",
		ConstLabels: labels,
	})

	m.teamGamesRolled = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_games_rolled_total",
		Help:        "Team-games with rolling form computed",
		ConstLabels: labels,
	})

	m.unmatchedGames = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "unmatched_games_total",
		Help:        "Game ids present on only one side of the home/visitor pivot",
		ConstLabels: labels,
	})

	m.matchupsWritten = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "matchups_written",
		Help:        "Rows in the last written matchup table",
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Pipeline stage duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.runFailures = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "run_failures_total",
		Help:        "Pipeline runs that aborted, by stage",
		ConstLabels: labels,
	}, []string{"stage"})

	m.lastSuccessUTC = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_success_unix",
		Help:        "Unix timestamp of the last successful run",
		ConstLabels: labels,
	})
}

// RecordFileLoaded counts a source file read.
func (m *Manager) RecordFileLoaded(kind string) { m.filesLoaded.WithLabelValues(kind).Inc() }

// RecordFileSkipped counts a missing season file.
func (m *Manager) RecordFileSkipped(kind string) { m.filesSkipped.WithLabelValues(kind).Inc() }

// AddRowsLoaded adds source rows of a kind.
func (m *Manager) AddRowsLoaded(kind string, n int) {
	m.rowsLoaded.WithLabelValues(kind).Add(float64(n))
}

// AddStartersAggregated adds aggregated starter appearances.
func (m *Manager) AddStartersAggregated(n int) { m.startersAggregated.Add(float64(n)) }

// AddDuplicateStarters adds ignored duplicate starter records.
func (m *Manager) AddDuplicateStarters(n int) { m.duplicateStarters.Add(float64(n)) }

// AddMissingStarters adds team-games that fell back to default starter rates.
func (m *Manager) AddMissingStarters(n int) { m.missingStarters.Add(float64(n)) }

// AddTeamGamesRolled adds team-games with computed form.
func (m *Manager) AddTeamGamesRolled(n int) { m.teamGamesRolled.Add(float64(n)) }

// AddUnmatchedGames adds game ids dropped by the pivot.
func (m *Manager) AddUnmatchedGames(n int) { m.unmatchedGames.Add(float64(n)) }

// SetMatchupsWritten records the size of the written table.
func (m *Manager) SetMatchupsWritten(n int) { m.matchupsWritten.Set(float64(n)) }

// ObserveStage records how long a stage took.
func (m *Manager) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(float64(d) / float64(time.Millisecond))
}

// RecordRunFailure counts an aborted run at the given stage.
func (m *Manager) RecordRunFailure(stage string) { m.runFailures.WithLabelValues(stage).Inc() }

// MarkSuccess stamps the last successful run time.
func (m *Manager) MarkSuccess(at time.Time) { m.lastSuccessUTC.Set(float64(at.Unix())) }

// WriteTextfile dumps the gathered metrics in text exposition format, for the
// node exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("%w: no gatherer configured", ErrObserveFailed)
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("%w: %w", ErrObserveFailed, err)
	}
	return nil
}

// GetRegistry returns the custom registry used by the default manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
