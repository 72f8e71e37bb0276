package services

import (
	"sync"

	"github.com/yeremiapane/menux-backend/models"
)

// PaymentMetrics are process-local payment counters.
type PaymentMetrics struct {
	TotalTransactions  int64 `json:"total_transactions"`
	SuccessfulPayments int64 `json:"successful_payments"`
	FailedPayments     int64 `json:"failed_payments"`
	RejectedAttempts   int64 `json:"rejected_attempts"`
}

// PaymentMonitor counts payment outcomes. Rejected attempts are the ones
// refused before any record was written (already paid, wrong state, wrong source).
type PaymentMonitor struct {
	metrics PaymentMetrics
	mutex   sync.Mutex
}

func NewPaymentMonitor() *PaymentMonitor {
	return &PaymentMonitor{}
}

func (pm *PaymentMonitor) Recorded(status models.PaymentRecordStatus) {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	pm.metrics.TotalTransactions++
	switch status {
	case models.PaymentRecordSuccess:
		pm.metrics.SuccessfulPayments++
	case models.PaymentRecordFailed:
		pm.metrics.FailedPayments++
	}
}

func (pm *PaymentMonitor) Rejected() {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	pm.metrics.RejectedAttempts++
}

// GetMetrics returns a snapshot of the counters.
func (pm *PaymentMonitor) GetMetrics() PaymentMetrics {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()
	return pm.metrics
}
