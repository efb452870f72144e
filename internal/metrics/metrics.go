// Package metrics exposes Prometheus instrumentation for the gateway. Trimmed
// from ws/internal/single/monitoring/metrics.go's connection/message/error metric
// families down to this gateway's own concerns: sessions, upstream subscriptions
// and the trades the decoder produces.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SessionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soltrace_sessions_total",
		Help: "Total number of sessions created via Init",
	})

	SubscriptionsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "soltrace_subscriptions_active",
		Help: "Current number of sessions with a live upstream subscription",
	})

	SubscribeErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soltrace_subscribe_errors_total",
		Help: "Total Subscribe RPC failures by reason",
	}, []string{"reason"})

	NotificationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soltrace_upstream_notifications_total",
		Help: "Total logsNotification frames received from the upstream websocket",
	})

	TradesDecodedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soltrace_trades_decoded_total",
		Help: "Total Trade events produced by the decoder",
	})

	DownstreamDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "soltrace_downstream_dropped_total",
		Help: "Total stream messages dropped because a session's downstream channel was full",
	})

	OnChainRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soltrace_onchain_requests_total",
		Help: "Total on-chain JSON-RPC requests by method and outcome",
	}, []string{"method", "outcome"})

	OffChainRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "soltrace_offchain_requests_total",
		Help: "Total off-chain metadata/price requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})
)

func init() {
	prometheus.MustRegister(
		SessionsTotal,
		SubscriptionsActive,
		SubscribeErrorsTotal,
		NotificationsTotal,
		TradesDecodedTotal,
		DownstreamDroppedTotal,
		OnChainRequestsTotal,
		OffChainRequestsTotal,
	)
}

// Handler serves the Prometheus exposition format at /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
