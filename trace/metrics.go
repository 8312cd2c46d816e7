package trace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsSubmitted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "apm",
		Subsystem: "trace_client",
		Name:      "records_submitted_total",
		Help:      "Span records accepted by a trace client for sending.",
	})

	recordsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apm",
		Subsystem: "trace_client",
		Name:      "records_dropped_total",
		Help:      "Span records discarded before reaching a backend.",
	}, []string{"reason"})

	sendErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apm",
		Subsystem: "trace_client",
		Name:      "backend_errors_total",
		Help:      "Errors returned by trace client backends.",
	}, []string{"op"})
)
