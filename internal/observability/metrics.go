package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bidngo_client", Name: "requests_total", Help: "Total API requests issued"},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bidngo_client",
			Name:      "request_duration_seconds",
			Help:      "API request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	WSConnectsTotal   = promauto.NewCounter(prometheus.CounterOpts{Namespace: "bidngo_client", Name: "ws_connects_total", Help: "Successful event channel connections"})
	WSReconnectsTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "bidngo_client", Name: "ws_reconnects_total", Help: "Reconnect attempts scheduled"})
	WSEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "bidngo_client", Name: "ws_events_total", Help: "Events delivered to listeners"},
		[]string{"type"},
	)

	PollCyclesTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "bidngo_client", Name: "poll_cycles_total", Help: "REST backstop poll cycles completed"})
)
