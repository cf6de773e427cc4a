package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ingestLines = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotionmap_ingest_lines_total",
			Help: "Total number of log lines read, by source.",
		},
		[]string{"source"},
	)
	ingestLinesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotionmap_ingest_lines_skipped_total",
			Help: "Total number of log lines that did not match the sample format.",
		},
		[]string{"source"},
	)
	ingestSamples = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotionmap_ingest_samples_total",
			Help: "Total number of samples accepted into seat series.",
		},
		[]string{"source"},
	)
	ingestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "emotionmap_ingest_duration_seconds",
			Help:    "Time spent reading, grouping and aggregating the log.",
			Buckets: prometheus.DefBuckets,
		},
	)
	seatCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotionmap_seats",
			Help: "Number of distinct seats in the dataset.",
		},
	)
	maxSeatID = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotionmap_max_seat_id",
			Help: "Highest numeric seat id seen in the dataset.",
		},
	)
	windowCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotionmap_windows",
			Help: "Number of windows in the aggregation grid.",
		},
	)
	globalWindowCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "emotionmap_global_windows",
			Help: "Number of windows with at least one contributing seat.",
		},
	)
	thresholdViolations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotionmap_bpm_threshold_violations_total",
			Help: "Windowed seat means outside the configured bpm range.",
		},
		[]string{"seat_id", "comparison"}, // comparison: "<" or ">"
	)
)
