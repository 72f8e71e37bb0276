// Package testutil provides an in-memory database and seed data for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/menux-backend/database"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory SQLite database with the full schema.
// The pool is capped at one connection so every query of a transaction stays
// on the same database; concurrent callers queue on it.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	if utils.InfoLogger == nil {
		utils.InitLogger()
	}

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_busy_timeout=5000", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Fixture is one seeded restaurant with everything needed to place orders.
type Fixture struct {
	Restaurant   models.Restaurant
	Subscription models.Subscription
	Table        models.RestaurantTable
	Room         models.Room
	Burger       models.MenuItem
	Fries        models.MenuItem
	Water        models.MenuItem
	SoldOut      models.MenuItem
	Large        models.MenuVariant
	Cheesy       models.MenuVariant
	Discount     models.MenuVariant
	Owner        models.RestaurantUser
	Staff        models.RestaurantUser
}

// Price returns a decimal from its string form and fails the test on bad input.
func Price(t testing.TB, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// Seed creates an active restaurant whose subscription allows online orders.
// Burger costs 100.00 with a Large variant of +20.00. Fries cost 50.00 with
// a Cheesy variant of +10.00 and a Discount variant of -80.00. Water is free
// and SoldOut is unavailable.
func Seed(t testing.TB, db *gorm.DB, slug string) *Fixture {
	t.Helper()
	allow := true
	f := &Fixture{}

	f.Subscription = models.Subscription{Name: "pro", AllowOnlineOrders: &allow, Active: true}
	require.NoError(t, db.Create(&f.Subscription).Error)

	f.Restaurant = models.Restaurant{
		Name:           "Restaurant " + slug,
		Slug:           slug,
		Active:         true,
		SubscriptionID: &f.Subscription.ID,
	}
	require.NoError(t, db.Create(&f.Restaurant).Error)
	f.Restaurant.Subscription = &f.Subscription

	f.Table = models.RestaurantTable{RestaurantID: f.Restaurant.ID, TableNumber: "T1", Active: true}
	require.NoError(t, db.Create(&f.Table).Error)
	f.Room = models.Room{RestaurantID: f.Restaurant.ID, RoomNumber: "101", Active: true}
	require.NoError(t, db.Create(&f.Room).Error)

	f.Burger = models.MenuItem{RestaurantID: f.Restaurant.ID, Name: "Burger", Price: Price(t, "100.00"), Available: true}
	f.Fries = models.MenuItem{RestaurantID: f.Restaurant.ID, Name: "Fries", Price: Price(t, "50.00"), Available: true}
	f.Water = models.MenuItem{RestaurantID: f.Restaurant.ID, Name: "Water", Price: decimal.Zero, Available: true}
	f.SoldOut = models.MenuItem{RestaurantID: f.Restaurant.ID, Name: "Lobster", Price: Price(t, "900.00"), Available: true}
	for _, item := range []*models.MenuItem{&f.Burger, &f.Fries, &f.Water, &f.SoldOut} {
		require.NoError(t, db.Create(item).Error)
	}
	// gorm skips zero values that carry a default tag on create
	require.NoError(t, db.Model(&f.SoldOut).Update("available", false).Error)
	f.SoldOut.Available = false

	large, cheesy, discount := Price(t, "20.00"), Price(t, "10.00"), Price(t, "-80.00")
	f.Large = models.MenuVariant{MenuItemID: f.Burger.ID, Name: "Large", PriceDifference: &large}
	f.Cheesy = models.MenuVariant{MenuItemID: f.Fries.ID, Name: "Cheesy", PriceDifference: &cheesy}
	f.Discount = models.MenuVariant{MenuItemID: f.Fries.ID, Name: "Discount", PriceDifference: &discount}
	for _, v := range []*models.MenuVariant{&f.Large, &f.Cheesy, &f.Discount} {
		require.NoError(t, db.Create(v).Error)
	}

	f.Owner = models.RestaurantUser{
		AuthUserID:   uuid.New(),
		RestaurantID: f.Restaurant.ID,
		Email:        "owner@" + slug + ".test",
		Role:         models.RoleOwner,
		Active:       true,
	}
	f.Staff = models.RestaurantUser{
		AuthUserID:   uuid.New(),
		RestaurantID: f.Restaurant.ID,
		Email:        "staff@" + slug + ".test",
		Role:         models.RoleStaff,
		Active:       true,
	}
	require.NoError(t, db.Create(&f.Owner).Error)
	require.NoError(t, db.Create(&f.Staff).Error)
	return f
}

// Deactivate flips the active flag of any seeded row to false.
func Deactivate(t testing.TB, db *gorm.DB, model interface{}) {
	t.Helper()
	require.NoError(t, db.Model(model).Update("active", false).Error)
}

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func NewClock() *Clock {
	return &Clock{T: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.T }

func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
