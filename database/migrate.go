package database

import (
	"fmt"

	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&models.Subscription{},
		&models.Restaurant{},
		&models.RestaurantUser{},
		&models.RestaurantTable{},
		&models.Room{},
		&models.MenuItem{},
		&models.MenuVariant{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusHistory{},
		&models.OrderPayment{},
		&models.KitchenTicket{},
	}
}

// Migrate creates or updates the schema and verifies every table exists afterwards.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			return fmt.Errorf("table for %T missing after migration", m)
		}
	}
	utils.InfoLogger.Infof("Database schema verified (%d tables)", len(Models()))
	return nil
}
