package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Сбрасываем метрики перед тестом
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("GET", "/cards", "200", 0.5)
	RecordHTTPRequest("GET", "/cards", "200", 0.1)
	RecordHTTPRequest("GET", "/cards", "500", 0.05)

	successCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/cards", "200"))
	failCount := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/cards", "500"))

	assert.Equal(t, float64(2), successCount)
	assert.Equal(t, float64(1), failCount)
}

func TestRecordOperationCreated(t *testing.T) {
	OperationsCreatedTotal.Reset()

	RecordOperationCreated("topup")
	RecordOperationCreated("topup")
	RecordOperationCreated("fill")

	topups := testutil.ToFloat64(OperationsCreatedTotal.WithLabelValues("topup"))
	fills := testutil.ToFloat64(OperationsCreatedTotal.WithLabelValues("fill"))

	assert.Equal(t, float64(2), topups)
	assert.Equal(t, float64(1), fills)
}

func TestRecordReconciliation(t *testing.T) {
	ReconciliationsTotal.Reset()

	RecordReconciliation(true)
	RecordReconciliation(true)
	RecordReconciliation(false)

	saved := testutil.ToFloat64(ReconciliationsTotal.WithLabelValues("saved"))
	unsaved := testutil.ToFloat64(ReconciliationsTotal.WithLabelValues("unsaved"))

	assert.Equal(t, float64(2), saved)
	assert.Equal(t, float64(1), unsaved)
}

func TestRecordUnknownOperationType(t *testing.T) {
	UnknownOperationTypesTotal.Reset()

	RecordUnknownOperationType("cashback")

	count := testutil.ToFloat64(UnknownOperationTypesTotal.WithLabelValues("cashback"))
	assert.Equal(t, float64(1), count)
}

func TestSetCardBalance(t *testing.T) {
	CardBalanceLiters.Reset()

	SetCardBalance("FC-001", 500)
	balance := testutil.ToFloat64(CardBalanceLiters.WithLabelValues("FC-001"))
	assert.Equal(t, float64(500), balance)

	SetCardBalance("FC-001", 460)
	balance = testutil.ToFloat64(CardBalanceLiters.WithLabelValues("FC-001"))
	assert.Equal(t, float64(460), balance)
}

func TestRecordStoreRequest(t *testing.T) {
	StoreRequestsTotal.Reset()

	RecordStoreRequest("POST", "/operations", "201")
	RecordStoreRequest("POST", "/operations", "201")
	RecordStoreRequest("GET", "/operations", "error")

	created := testutil.ToFloat64(StoreRequestsTotal.WithLabelValues("POST", "/operations", "201"))
	failed := testutil.ToFloat64(StoreRequestsTotal.WithLabelValues("GET", "/operations", "error"))

	assert.Equal(t, float64(2), created)
	assert.Equal(t, float64(1), failed)
}
