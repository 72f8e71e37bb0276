package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/menux-backend/models"
	"gorm.io/gorm"
)

// SourceRepository reads the tables and rooms orders can be placed from.
type SourceRepository struct {
	db *gorm.DB
}

func NewSourceRepository(db *gorm.DB) *SourceRepository {
	return &SourceRepository{db: db}
}

// FindTable returns the table when it belongs to the restaurant. Tables of
// other restaurants are reported as not found.
func (r *SourceRepository) FindTable(ctx context.Context, restaurantID, tableID uuid.UUID) (*models.RestaurantTable, error) {
	var table models.RestaurantTable
	err := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", tableID, restaurantID).
		First(&table).Error
	if err != nil {
		return nil, translate(err, "Table not found", "find table")
	}
	return &table, nil
}

func (r *SourceRepository) FindRoom(ctx context.Context, restaurantID, roomID uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", roomID, restaurantID).
		First(&room).Error
	if err != nil {
		return nil, translate(err, "Room not found", "find room")
	}
	return &room, nil
}

// TablesByIDs and RoomsByIDs resolve display numbers for order views.
func (r *SourceRepository) TablesByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.RestaurantTable, error) {
	out := make(map[uuid.UUID]models.RestaurantTable, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var tables []models.RestaurantTable
	if err := r.db.WithContext(ctx).Where("restaurant_id = ? AND id IN ?", restaurantID, ids).Find(&tables).Error; err != nil {
		return nil, fmt.Errorf("load tables: %w", err)
	}
	for _, t := range tables {
		out[t.ID] = t
	}
	return out, nil
}

func (r *SourceRepository) RoomsByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.Room, error) {
	out := make(map[uuid.UUID]models.Room, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rooms []models.Room
	if err := r.db.WithContext(ctx).Where("restaurant_id = ? AND id IN ?", restaurantID, ids).Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}
	for _, rm := range rooms {
		out[rm.ID] = rm
	}
	return out, nil
}
