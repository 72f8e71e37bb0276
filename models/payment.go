package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderPayment records one payment attempt. Records are append-only.
type OrderPayment struct {
	ID            uuid.UUID           `json:"id" gorm:"type:char(36);primaryKey"`
	OrderID       uuid.UUID           `json:"order_id" gorm:"type:char(36);not null;index:idx_order_payments_order"`
	Gateway       PaymentGateway      `json:"gateway" gorm:"type:varchar(20);not null"`
	Status        PaymentRecordStatus `json:"status" gorm:"type:varchar(20);not null"`
	TransactionID string              `json:"transaction_id" gorm:"type:varchar(120)"`
	CreatedAt     time.Time           `json:"created_at"`
}
