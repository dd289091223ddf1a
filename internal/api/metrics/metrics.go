// Package metrics defines and registers all custom Prometheus metrics for
// the lending API. It is the single source of truth for metric names,
// labels, and help strings.
//
// Metrics register with the default Prometheus registry at package init;
// the router exposes them on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lending"

// RegistrationsTotal counts underwriting decisions at registration time.
// Label:
//   - status: "Approved" or "Rejected"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of underwritten registrations, by decision.",
	},
	[]string{"status"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: "ok", "invalid_credentials", "not_found", or "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenRefreshTotal counts refresh-token rotations.
// Label:
//   - result: "ok" or "rejected" (stale, reused, or invalid token)
var TokenRefreshTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_refresh_total",
		Help:      "Total number of refresh token rotations, by result.",
	},
	[]string{"result"},
)

// LoansBorrowedTotal counts successful borrow operations.
var LoansBorrowedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "loans_borrowed_total",
		Help:      "Total number of successful borrow operations.",
	},
)

// BorrowedAmount observes the principal of each successful borrow.
var BorrowedAmount = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "borrowed_amount",
		Help:      "Distribution of borrowed principal amounts.",
		Buckets:   prometheus.ExponentialBuckets(1000, 2, 10), // 1k .. ~512k
	},
)

// RecommendationsTotal counts borrowing-limit recommendations served.
var RecommendationsTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendations_total",
		Help:      "Total number of borrowing-limit recommendations served.",
	},
)
