// Package metrics holds the counter's Prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	OrdersFinalized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "counter",
		Name:      "orders_finalized_total",
		Help:      "Orders created from a cart, by payment state at creation.",
	}, []string{"paid"})

	OrderValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "counter",
		Name:      "order_value",
		Help:      "Total of each finalized order.",
		Buckets:   []float64{5, 10, 20, 50, 100, 200},
	})

	PaymentUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "counter",
		Name:      "order_payment_updates_total",
		Help:      "Orders marked paid or unpaid after creation.",
	}, []string{"status"})

	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "counter",
		Name:      "orders_cancelled_total",
		Help:      "Unpaid orders removed from the ledger.",
	})

	LoginFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "counter",
		Name:      "login_failures_total",
		Help:      "Rejected login attempts.",
	})
)
