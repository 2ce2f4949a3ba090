package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OrdersTotal counts order placement attempts by outcome.
	OrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orders_total",
			Help: "Total number of order placement attempts",
		},
		[]string{"status"},
	)

	OrderAmount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "order_amount_dollars",
			Help:    "Order totals in dollars",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000},
		},
	)

	// CircuitBreakerState is 0 when closed, 1 when open and 2 when half-open.
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"circuit_name"},
	)

	CircuitBreakerFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of calls rejected or failed through a circuit breaker",
		},
		[]string{"circuit_name"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of events written to the broker",
		},
		[]string{"event_type", "status"},
	)

	StoreSubscribers = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "live_store_subscribers",
			Help: "Number of open streaming subscriptions",
		},
		[]string{"store"},
	)
)
