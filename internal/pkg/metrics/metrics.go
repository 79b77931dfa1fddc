package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "cbam_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	calculationSaves *prometheus.CounterVec
	resolutions      *prometheus.CounterVec
	scopeFallbacks   prometheus.Counter
	sessionsOpened   prometheus.Counter

	ingestRows    *prometheus.CounterVec
	ingestBatches *prometheus.CounterVec
	ingestLatency *prometheus.HistogramVec
)

// Init registers the engine metrics on the given registerer (the default
// registry when nil). Safe to call more than once.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}

		calculationSaves = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "calculation_saves_total",
				Help: "Calculation entry save attempts by kind and result",
			},
			[]string{"kind", "result"},
		)
		resolutions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "name_resolutions_total",
				Help: "Name resolution attempts by kind and outcome",
			},
			[]string{"kind", "outcome"},
		)
		scopeFallbacks = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "scope_filter_fallbacks_total",
				Help: "Scope filter runs that fell back to the unfiltered row set",
			},
		)
		sessionsOpened = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "input_sessions_opened_total",
				Help: "Input dialog sessions opened",
			},
		)
		ingestRows = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_rows_total",
				Help: "Raw input rows seen at the ingestion boundary by outcome",
			},
			[]string{"outcome"},
		)
		ingestBatches = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_batches_total",
				Help: "Ingestion batches by result",
			},
			[]string{"result"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingestion batch latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reg.MustRegister(
			calculationSaves,
			resolutions,
			scopeFallbacks,
			sessionsOpened,
			ingestRows,
			ingestBatches,
			ingestLatency,
		)
	})
}

// IncCalculationSave counts a save attempt.
func IncCalculationSave(kind, result string) {
	if kind == "" {
		kind = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if calculationSaves != nil {
		calculationSaves.WithLabelValues(kind, result).Inc()
	}
}

// IncResolution counts a name resolution.
func IncResolution(kind string, matched bool) {
	outcome := "matched"
	if !matched {
		outcome = "unmatched"
	}
	if resolutions != nil {
		resolutions.WithLabelValues(kind, outcome).Inc()
	}
}

// IncScopeFallback counts a scope filter fallback.
func IncScopeFallback() {
	if scopeFallbacks != nil {
		scopeFallbacks.Inc()
	}
}

// IncSessionOpened counts an opened input dialog session.
func IncSessionOpened() {
	if sessionsOpened != nil {
		sessionsOpened.Inc()
	}
}

// AddIngestRows counts accepted and rejected rows of one batch.
func AddIngestRows(accepted, rejected int) {
	if ingestRows == nil {
		return
	}
	if accepted > 0 {
		ingestRows.WithLabelValues("accepted").Add(float64(accepted))
	}
	if rejected > 0 {
		ingestRows.WithLabelValues("rejected").Add(float64(rejected))
	}
}

// ObserveIngestBatch records batch latency and result.
func ObserveIngestBatch(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestBatches != nil {
		ingestBatches.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// Exported constants for callers.
const (
	ResultSuccess   = resultSuccess
	ResultError     = resultError
	ResultRejected  = "rejected"
	ResultUnmatched = "unmatched"
)
