package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is one customer purchase attempt. Status and PaymentStatus only change
// through the lifecycle engine and payment reconciliation; orders are never deleted.
type Order struct {
	ID            uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	RestaurantID  uuid.UUID       `gorm:"type:char(36);not null;index:idx_orders_restaurant_created,priority:1" json:"restaurant_id"`
	TableID       *uuid.UUID      `gorm:"type:char(36);index" json:"table_id,omitempty"`
	RoomID        *uuid.UUID      `gorm:"type:char(36);index" json:"room_id,omitempty"`
	OrderType     OrderType       `gorm:"type:varchar(20);not null" json:"order_type"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index:idx_orders_sweep,priority:1" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(20);not null;index:idx_orders_sweep,priority:2" json:"payment_status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	CreatedAt     time.Time       `gorm:"not null;index:idx_orders_restaurant_created,priority:2;index:idx_orders_sweep,priority:3" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null" json:"updated_at"`
}

// OrderSource identifies where an order was placed: a table, a room, or
// neither for takeaway.
type OrderSource struct {
	TableID *uuid.UUID
	RoomID  *uuid.UUID
}

func (s OrderSource) Type() OrderType {
	switch {
	case s.TableID != nil:
		return OrderTypeDineIn
	case s.RoomID != nil:
		return OrderTypeRoomService
	default:
		return OrderTypeTakeaway
	}
}

func (o *Order) Source() OrderSource {
	return OrderSource{TableID: o.TableID, RoomID: o.RoomID}
}

// PlacedFrom reports whether the order was placed from exactly this source.
func (o *Order) PlacedFrom(s OrderSource) bool {
	return sameID(o.TableID, s.TableID) && sameID(o.RoomID, s.RoomID)
}

func sameID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
