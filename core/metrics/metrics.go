// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RemoteFallbacks counts remote reads & writes that failed and were served from fixtures or local state.
	RemoteFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assignflow",
		Name:      "remote_fallbacks_total",
		Help:      "Remote backend operations that failed and fell back to local data.",
	}, []string{"operation"})

	SignIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "assignflow",
		Name:      "sign_ins_total",
		Help:      "Sign-in attempts by outcome (remote, roster, failed).",
	}, []string{"source"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "assignflow",
		Name:      "active_sessions",
		Help:      "Browser sessions currently held in memory.",
	})
)
