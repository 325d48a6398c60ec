package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuelcards_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fuelcards_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	OperationsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuelcards_operations_created_total",
			Help: "Total number of ledger operations created",
		},
		[]string{"type"},
	)

	TransfersTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fuelcards_transfers_total",
			Help: "Total number of inter-card transfers",
		},
	)

	ReconciliationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuelcards_reconciliations_total",
			Help: "Total number of balance reconciliations",
		},
		[]string{"outcome"},
	)

	UnknownOperationTypesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuelcards_unknown_operation_types_total",
			Help: "Operations with an unrecognized type encountered while summing balances",
		},
		[]string{"type"},
	)

	CardBalanceLiters = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "fuelcards_card_balance_liters",
			Help: "Last known card balance in liters",
		},
		[]string{"card_code"},
	)

	StoreRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fuelcards_store_requests_total",
			Help: "Requests issued to the record store",
		},
		[]string{"method", "path", "status"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordOperationCreated(opType string) {
	OperationsCreatedTotal.WithLabelValues(opType).Inc()
}

func RecordTransfer() {
	TransfersTotal.Inc()
}

func RecordReconciliation(saved bool) {
	outcome := "saved"
	if !saved {
		outcome = "unsaved"
	}
	ReconciliationsTotal.WithLabelValues(outcome).Inc()
}

func RecordUnknownOperationType(opType string) {
	UnknownOperationTypesTotal.WithLabelValues(opType).Inc()
}

func SetCardBalance(cardCode string, liters float64) {
	CardBalanceLiters.WithLabelValues(cardCode).Set(liters)
}

func RecordStoreRequest(method, path, status string) {
	StoreRequestsTotal.WithLabelValues(method, path, status).Inc()
}
