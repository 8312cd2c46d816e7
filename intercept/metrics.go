package intercept

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var calls = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "apm",
	Subsystem: "intercept",
	Name:      "calls_total",
	Help:      "Calls through instrumented operations, by outcome.",
}, []string{"integration", "outcome"})
