package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/menux-backend/models"
	"gorm.io/gorm"
)

type MenuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) *MenuRepository {
	return &MenuRepository{db: db}
}

// ItemsByIDs loads the requested menu items of one restaurant keyed by id.
// Ids that are unknown or belong to another restaurant are simply absent.
func (r *MenuRepository) ItemsByIDs(ctx context.Context, restaurantID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]models.MenuItem, error) {
	out := make(map[uuid.UUID]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.MenuItem
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ? AND id IN ?", restaurantID, ids).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func (r *MenuRepository) VariantsByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.MenuVariant, error) {
	out := make(map[uuid.UUID]models.MenuVariant, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var variants []models.MenuVariant
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&variants).Error; err != nil {
		return nil, fmt.Errorf("load menu variants: %w", err)
	}
	for _, v := range variants {
		out[v.ID] = v
	}
	return out, nil
}
