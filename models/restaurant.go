package models

import (
	"time"

	"github.com/google/uuid"
)

// Subscription holds the plan capabilities of a restaurant.
type Subscription struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"type:varchar(100);not null" json:"name"`
	AllowOnlineOrders *bool     `json:"allow_online_orders"`
	Active            bool      `gorm:"not null;default:true" json:"active"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Restaurant is the tenant.
type Restaurant struct {
	ID             uuid.UUID     `gorm:"type:char(36);primaryKey" json:"id"`
	Name           string        `gorm:"type:varchar(255);not null" json:"name"`
	Slug           string        `gorm:"type:varchar(120);uniqueIndex;not null" json:"slug"`
	Active         bool          `gorm:"not null;default:true" json:"active"`
	SubscriptionID *uint         `json:"subscription_id,omitempty"`
	Subscription   *Subscription `gorm:"foreignKey:SubscriptionID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL" json:"subscription,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// OnlineOrderingAllowed is true only when the subscription explicitly enables it.
func (r *Restaurant) OnlineOrderingAllowed() bool {
	return r.Subscription != nil && r.Subscription.AllowOnlineOrders != nil && *r.Subscription.AllowOnlineOrders
}

type RestaurantRole string

const (
	RoleOwner   RestaurantRole = "OWNER"
	RoleManager RestaurantRole = "MANAGER"
	RoleStaff   RestaurantRole = "STAFF"
)

// RestaurantUser links an identity-provider user to a restaurant.
type RestaurantUser struct {
	ID           uuid.UUID      `gorm:"type:char(36);primaryKey" json:"id"`
	AuthUserID   uuid.UUID      `gorm:"type:char(36);uniqueIndex;not null" json:"auth_user_id"`
	RestaurantID uuid.UUID      `gorm:"type:char(36);not null;index" json:"restaurant_id"`
	Restaurant   Restaurant     `gorm:"foreignKey:RestaurantID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Email        string         `gorm:"type:varchar(255)" json:"email"`
	Role         RestaurantRole `gorm:"type:varchar(20);not null" json:"role"`
	Active       bool           `gorm:"not null;default:true" json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
