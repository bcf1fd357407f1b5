// Package metrics exposes pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "videonft"

var (
	sessionTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_transitions_total",
			Help:      "Session state transitions, by target state",
		},
		[]string{"state"},
	)

	assetUpdates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_updates_total",
			Help:      "IPFS storage requests sent to the video platform, by result",
		},
		[]string{"result"},
	)

	mintSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mint_submissions_total",
			Help:      "Mint transactions attempted, by result",
		},
		[]string{"result"},
	)

	pollErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "asset_poll_errors_total",
			Help:      "Transient errors while polling asset status",
		},
	)

	sweptSessions = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "swept_sessions_total",
			Help:      "Stale sessions deleted by the sweeper",
		},
	)
)

func RecordTransition(state string) {
	sessionTransitions.WithLabelValues(state).Inc()
}

func RecordAssetUpdate(ok bool) {
	assetUpdates.WithLabelValues(result(ok)).Inc()
}

func RecordMint(ok bool) {
	mintSubmissions.WithLabelValues(result(ok)).Inc()
}

func RecordPollError() {
	pollErrors.Inc()
}

func RecordSwept(n int) {
	sweptSessions.Add(float64(n))
}

func result(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
