package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersSubmittedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reseller_orders_submitted_total",
		Help: "Total number of product orders submitted",
	})

	OrdersApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reseller_orders_approved_total",
		Help: "Total number of product orders approved and provisioned",
	})

	OrdersRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reseller_orders_rejected_total",
		Help: "Total number of product orders rejected",
	})

	OrderTransitionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reseller_order_transition_failures_total",
		Help: "Failed order transitions by transition and error code",
	}, []string{"transition", "code"})

	PendingOrdersStale = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "reseller_pending_orders_stale",
		Help: "Pending orders older than the stale threshold",
	})

	ExternalAPILatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "broadband_api_request_duration_seconds",
		Help:    "Latency of Broadband.is API calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"category", "status"})

	QuoteCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reseller_quote_cache_lookups_total",
		Help: "Pro-rata quote cache lookups by result",
	}, []string{"result"})

	EventsPublishFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reseller_event_publish_failures_total",
		Help: "Order events that could not be published",
	}, []string{"sink"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
)
