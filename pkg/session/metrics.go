package session

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lookups tracks snapshot lookups by backend and result
	Lookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artable_session_lookups_total",
			Help: "Total number of session snapshot lookups",
		},
		[]string{"backend", "result"}, // "memory"|"redis", "hit"|"miss"
	)

	// Errors tracks store operation errors
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artable_session_errors_total",
			Help: "Total number of session store operation errors",
		},
		[]string{"backend", "operation"}, // "get", "set", "delete"
	)
)
