package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
	"gorm.io/gorm"
)

// RestaurantRepository reads tenants and their staff.
type RestaurantRepository struct {
	db *gorm.DB
}

func NewRestaurantRepository(db *gorm.DB) *RestaurantRepository {
	return &RestaurantRepository{db: db}
}

// FindActiveBySlug resolves a tenant by slug, case-insensitively. Inactive
// restaurants are reported as not found.
func (r *RestaurantRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.Restaurant, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, utils.NotFound("Restaurant not found")
	}

	var restaurant models.Restaurant
	err := r.db.WithContext(ctx).
		Preload("Subscription").
		Where("LOWER(slug) = LOWER(?)", slug).
		First(&restaurant).Error
	if err != nil {
		return nil, translate(err, "Restaurant not found", "find restaurant")
	}
	if !restaurant.Active {
		return nil, utils.NotFound("Restaurant not found")
	}
	return &restaurant, nil
}

// FindUserByAuthID loads the restaurant membership of an identity-provider
// user together with its restaurant.
func (r *RestaurantRepository) FindUserByAuthID(ctx context.Context, authUserID uuid.UUID) (*models.RestaurantUser, error) {
	var user models.RestaurantUser
	err := r.db.WithContext(ctx).
		Preload("Restaurant").
		Where("auth_user_id = ?", authUserID).
		First(&user).Error
	if err != nil {
		return nil, translate(err, "Restaurant user not found", "find restaurant user")
	}
	return &user, nil
}
