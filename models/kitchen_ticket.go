package models

import (
	"time"

	"github.com/google/uuid"
)

// KitchenTicket is the kitchen's view of one order.
type KitchenTicket struct {
	ID           uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	OrderID      uuid.UUID     `gorm:"type:char(36);uniqueIndex;not null" json:"order_id"`
	RestaurantID uuid.UUID     `gorm:"type:char(36);not null;index:idx_kitchen_tickets_restaurant" json:"restaurant_id"`
	Status       KitchenStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// OrderStatusHistory is an append-only audit row. The auto-increment id keeps
// insertion order for rows sharing a timestamp.
type OrderStatusHistory struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uuid.UUID   `gorm:"type:char(36);not null;index:idx_order_status_histories_order" json:"order_id"`
	Status    OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	CreatedAt time.Time   `gorm:"not null" json:"created_at"`
}
