package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trxflow_http_requests_total",
		Help: "Total HTTP requests processed, labeled by status code",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trxflow_http_request_duration_seconds",
		Help:    "Latency distribution of HTTP requests",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"method", "route"})

	TransactionsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trxflow_transactions_created_total",
		Help: "Transactions created in DRAFT",
	})

	TransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trxflow_transaction_transitions_total",
		Help: "Successful status transitions",
	}, []string{"from", "to"})

	RejectedOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trxflow_rejected_operations_total",
		Help: "Operations refused by the authorization service, labeled by failure kind",
	}, []string{"operation", "kind"})
)
