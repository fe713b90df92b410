package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "refextract_http_requests_total",
			Help: "HTTP requests served, by route and status",
		},
		[]string{"path", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "refextract_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)
