package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	linesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refextract_lines_total",
			Help: "Reference lines parsed",
		},
	)

	citationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "refextract_citations_total",
			Help: "Citations produced by splitting reference lines",
		},
	)

	// elements recognised, by kind: misc, title, reportnum, url, doi, auth_group
	recognisedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refextract_recognised_total",
			Help: "Elements recognised while parsing reference lines",
		},
		[]string{"kind"},
	)

	parseDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "refextract_parse_duration_seconds",
			Help:    "Time spent parsing one batch of reference lines",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
	)
)
