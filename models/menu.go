package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type MenuItem struct {
	ID           uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	RestaurantID uuid.UUID       `gorm:"type:char(36);not null;index:idx_menu_items_restaurant" json:"restaurant_id"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Available    bool            `gorm:"not null;default:true" json:"available"`
	CreatedAt    time.Time       `json:"created_at"`
}

type MenuVariant struct {
	ID              uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	MenuItemID      uuid.UUID        `gorm:"type:char(36);not null;index:idx_menu_variants_item" json:"menu_item_id"`
	Name            string           `gorm:"type:varchar(255);not null" json:"name"`
	PriceDifference *decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_difference,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Delta is the price difference, zero when unset.
func (v *MenuVariant) Delta() decimal.Decimal {
	if v.PriceDifference == nil {
		return decimal.Zero
	}
	return *v.PriceDifference
}
