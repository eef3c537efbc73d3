package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics for monitoring
var (
	OrdersFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentscope_orders_fetched_total",
		Help: "The total number of raw orders returned by the order book",
	}, []string{"chain_id", "order_type"})

	IntentsReturned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentscope_intents_returned_total",
		Help: "The total number of normalized intents returned",
	}, []string{"chain_id", "order_type", "order_status"})

	// IntentsDropped counts V1 orders removed by the denylist
	IntentsDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentscope_intents_dropped_total",
		Help: "The total number of intents dropped by the denylist",
	}, []string{"chain_id"})

	PipelineErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentscope_pipeline_errors_total",
		Help: "Total number of failed pipeline calls by error type",
	}, []string{"chain_id", "error_type"})

	OrderBookLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intentscope_orderbook_request_seconds",
		Help:    "Time taken by order book requests",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // Start at 50ms with 10 buckets doubling in size
	}, []string{"status"})

	FillLookupLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "intentscope_fill_lookup_seconds",
		Help:    "Time taken to look up fill events on chain",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	}, []string{"chain_id"})

	FillCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentscope_fill_cache_hits_total",
		Help: "The total number of fill lookups served from cache",
	}, []string{"chain_id"})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "intentscope_http_requests_total",
		Help: "The total number of API requests by path and status code",
	}, []string{"path", "code"})

	FillCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "intentscope_fill_cache_entries",
		Help: "The number of transactions held in the fill event cache",
	})

	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "intentscope_circuit_breaker_state",
		Help: "Circuit breaker state: closed (0), open (1) or half-open (2)",
	}, []string{"name"})
)
