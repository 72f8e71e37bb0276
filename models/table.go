package models

import (
	"time"

	"github.com/google/uuid"
)

type RestaurantTable struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	RestaurantID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uq_restaurant_tables_number" json:"restaurant_id"`
	TableNumber  string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_restaurant_tables_number" json:"table_number"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

type Room struct {
	ID           uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	RestaurantID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:uq_rooms_number" json:"restaurant_id"`
	RoomNumber   string    `gorm:"type:varchar(50);not null;uniqueIndex:uq_rooms_number" json:"room_number"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}
