package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem is one priced line of an order. Price is the unit price snapshot
// taken when the order was placed.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID     uuid.UUID       `gorm:"type:char(36);not null;index:idx_order_items_order" json:"order_id"`
	MenuItemID  uuid.UUID       `gorm:"type:char(36);not null;index:idx_order_items_menu_item" json:"menu_item_id"`
	VariantID   *uuid.UUID      `gorm:"type:char(36)" json:"variant_id,omitempty"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	Price       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Instruction string          `gorm:"type:varchar(500)" json:"instruction,omitempty"`
}

// LineTotal is Price * Quantity.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
