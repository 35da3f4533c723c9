package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analysis Metrics
var (
	// AnalysesTotal counts accepted analyses by whole-text sentiment label
	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_analyses_total",
			Help: "Accepted analyses by sentiment label",
		},
		[]string{"label"},
	)

	// AnalysesRejected counts submissions rejected before reaching the history
	AnalysesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiboard_analyses_rejected_total",
			Help: "Submissions rejected because the text was blank",
		},
	)

	// AnalysisDuration tracks segment + score + append latency in seconds
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiboard_analysis_duration_seconds",
			Help:    "Time spent analyzing one submission",
			Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5},
		},
	)

	// HistoryRecords tracks the current number of records in the history
	HistoryRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiboard_history_records",
			Help: "Number of records in the session history",
		},
	)
)

// Ingest and Export Metrics
var (
	// IngestMessagesTotal counts Kafka analysis requests by outcome
	IngestMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_ingest_messages_total",
			Help: "Kafka analysis requests by status (analyzed/duplicate/invalid/failed)",
		},
		[]string{"status"},
	)

	// ExportRowsTotal counts history rows written by sink (csv/dynamodb)
	ExportRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiboard_export_rows_total",
			Help: "History rows exported by sink",
		},
		[]string{"sink"},
	)
)
