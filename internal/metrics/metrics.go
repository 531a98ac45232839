package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Screening pipeline counters and histograms. Chain/kind labels use the
// lowercase wire names from domain/model.

var (
	// Detection
	DetectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "detect",
		Name:      "detections_total",
		Help:      "Total detector invocations by resolved chain and kind",
	}, []string{"chain", "kind"})

	// Screening
	ChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "screening",
		Name:      "checks_total",
		Help:      "Total contamination checks by status",
	}, []string{"status"})

	FlaggedHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "screening",
		Name:      "flagged_hits_total",
		Help:      "Total flagged-entry matches by chain and dataset source",
	}, []string{"chain", "source"})

	CheckLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "txwhisperer",
		Subsystem: "screening",
		Name:      "check_duration_seconds",
		Help:      "Contamination check duration including cache and history",
		Buckets:   []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1},
	})

	// Dataset
	DatasetEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "txwhisperer",
		Subsystem: "dataset",
		Name:      "entries",
		Help:      "Number of flagged entries in the active dataset snapshot",
	})

	DatasetReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "dataset",
		Name:      "reloads_total",
		Help:      "Total dataset reload attempts by result",
	}, []string{"result"})

	DatasetLastReloadUnix = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "txwhisperer",
		Subsystem: "dataset",
		Name:      "last_reload_timestamp_seconds",
		Help:      "Unix timestamp of the last successful dataset load",
	})

	// History
	HistorySize = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "txwhisperer",
		Subsystem: "history",
		Name:      "size",
		Help:      "Number of entries currently held in the in-memory history",
	})

	HistoryWriteErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "history",
		Name:      "write_errors_total",
		Help:      "Total failed durable history writes by backend",
	}, []string{"backend"})

	// Result cache
	ResultCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "cache",
		Name:      "result_requests_total",
		Help:      "Result cache outcomes per check (hit, miss, bypass, error)",
	}, []string{"outcome"})

	// HTTP API
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total API requests by method, route and status code",
	}, []string{"method", "route", "code"})

	HTTPRequestLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "txwhisperer",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "API request duration by route",
		Buckets:   []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"route"})

	RateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "http",
		Name:      "rate_limited_total",
		Help:      "Total requests rejected by the rate limiter",
	}, []string{"route"})

	// Alerts
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "alert",
		Name:      "sent_total",
		Help:      "Total alerts sent",
	}, []string{"channel", "alert_type"})

	AlertsCooldownSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "txwhisperer",
		Subsystem: "alert",
		Name:      "cooldown_skipped_total",
		Help:      "Total alerts skipped due to cooldown",
	}, []string{"channel", "alert_type"})
)
