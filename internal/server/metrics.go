package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeInvalid  = "invalid_request"
)

var (
	// ExpansionsTotal counts expansion requests by outcome.
	ExpansionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qexpand_expansions_total",
			Help: "Total number of query expansions",
		},
		[]string{"outcome"},
	)
	// ExpansionDuration is the time spent expanding one query.
	ExpansionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "qexpand_expansion_duration_seconds",
			Help:    "Query expansion latency in seconds",
			Buckets: []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05},
		},
	)
)
