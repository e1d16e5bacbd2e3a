package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "cropverse_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	ingestRequests *prometheus.CounterVec
	ingestRejected *prometheus.CounterVec
	ingestLatency  *prometheus.HistogramVec

	alertsRaised   *prometheus.CounterVec
	alertsResolved *prometheus.CounterVec

	notifyFailures prometheus.Counter

	summaryRuns    *prometheus.CounterVec
	summaryLatency *prometheus.HistogramVec

	reportExports *prometheus.CounterVec
)

// Init registers monitoring metrics. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		ingestRequests = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_requests_total",
				Help: "Total ingest requests by result",
			},
			[]string{"result"},
		)
		ingestRejected = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "ingest_rejected_total",
				Help: "Total rejected readings by field",
			},
			[]string{"field"},
		)
		ingestLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "ingest_latency_seconds",
				Help:    "Ingest latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		alertsRaised = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_raised_total",
				Help: "Total alerts raised by severity and sensor",
			},
			[]string{"severity", "sensor"},
		)
		alertsResolved = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "alerts_resolved_total",
				Help: "Total alerts resolved by mode",
			},
			[]string{"mode"},
		)

		notifyFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "notify_failures_total",
				Help: "Total notification delivery failures",
			},
		)

		summaryRuns = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "summary_runs_total",
				Help: "Total daily summary computations by result",
			},
			[]string{"result"},
		)
		summaryLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "summary_latency_seconds",
				Help:    "Daily summary computation latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)

		reportExports = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "report_exports_total",
				Help: "Total report exports by format and result",
			},
			[]string{"format", "result"},
		)

		prometheus.MustRegister(
			ingestRequests,
			ingestRejected,
			ingestLatency,
			alertsRaised,
			alertsResolved,
			notifyFailures,
			summaryRuns,
			summaryLatency,
			reportExports,
		)
	})
}

// ObserveIngest records ingest request duration and result.
func ObserveIngest(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if ingestRequests != nil {
		ingestRequests.WithLabelValues(result).Inc()
	}
	if ingestLatency != nil {
		ingestLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReadingRejected increments the rejected reading counter.
func IncReadingRejected(field string) {
	if field == "" {
		field = "unknown"
	}
	if ingestRejected != nil {
		ingestRejected.WithLabelValues(field).Inc()
	}
}

// IncAlertRaised increments the raised alert counter.
func IncAlertRaised(severity, sensor string) {
	if severity == "" {
		severity = "unknown"
	}
	if sensor == "" {
		sensor = "unknown"
	}
	if alertsRaised != nil {
		alertsRaised.WithLabelValues(severity, sensor).Inc()
	}
}

// IncAlertResolved increments the resolved alert counter. Mode is
// "manual" or "auto".
func IncAlertResolved(mode string) {
	if mode == "" {
		mode = "manual"
	}
	if alertsResolved != nil {
		alertsResolved.WithLabelValues(mode).Inc()
	}
}

// IncNotifyFailure increments the notification failure counter.
func IncNotifyFailure() {
	if notifyFailures != nil {
		notifyFailures.Inc()
	}
}

// ObserveSummary records summary computation latency and result.
func ObserveSummary(result string, duration time.Duration) {
	if result == "" {
		result = resultSuccess
	}
	if summaryRuns != nil {
		summaryRuns.WithLabelValues(result).Inc()
	}
	if summaryLatency != nil {
		summaryLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// IncReportExport increments the export counter.
func IncReportExport(format, result string) {
	if format == "" {
		format = "unknown"
	}
	if result == "" {
		result = resultSuccess
	}
	if reportExports != nil {
		reportExports.WithLabelValues(format, result).Inc()
	}
}

// Exported constants for callers.
const (
	ResultSuccess = resultSuccess
	ResultError   = resultError

	ResolveModeManual = "manual"
	ResolveModeAuto   = "auto"
)
