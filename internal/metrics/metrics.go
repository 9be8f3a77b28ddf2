// Package metrics provides Prometheus instrumentation for the matchmaking
// service. It exposes gauges for queue occupancy and active sessions,
// and counters for match, relay, report, and verification throughput.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// QueueSize tracks the current number of users waiting per matching mode.
	QueueSize = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "kampus_queue_size",
		Help: "Current number of users waiting in the match queue",
	}, []string{"mode"}) // mode = "open", "constrained"

	// ActiveSessions tracks the current number of active pairings.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kampus_active_sessions",
		Help: "Current number of active anonymous chat sessions",
	})

	// VerifiedUsers tracks the number of verified, unbanned users.
	VerifiedUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "kampus_verified_users",
		Help: "Current number of verified, unbanned users",
	})

	// MatchesTotal counts completed pairings, labeled by matching mode.
	MatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kampus_matches_total",
		Help: "Total number of completed pairings",
	}, []string{"mode"})

	// RelayedMessagesTotal counts messages forwarded between partners.
	RelayedMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kampus_relayed_messages_total",
		Help: "Total number of messages relayed between partners",
	})

	// ReportsTotal counts abuse tickets filed.
	ReportsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "kampus_reports_total",
		Help: "Total number of abuse report tickets filed",
	})

	// VerificationsTotal counts moderator verdicts, labeled by outcome.
	VerificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "kampus_verifications_total",
		Help: "Total number of moderator verification verdicts",
	}, []string{"outcome"}) // outcome = "approved", "rejected"
)

func init() {
	prometheus.MustRegister(
		QueueSize,
		ActiveSessions,
		VerifiedUsers,
		MatchesTotal,
		RelayedMessagesTotal,
		ReportsTotal,
		VerificationsTotal,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
