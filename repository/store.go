package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yeremiapane/menux-backend/utils"
	"gorm.io/gorm"
)

// Store groups the repositories that make up the order aggregate so they can
// share one transaction.
type Store struct {
	db      *gorm.DB
	Orders  *OrderRepository
	Tickets *KitchenTicketRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		db:      db,
		Orders:  NewOrderRepository(db),
		Tickets: NewKitchenTicketRepository(db),
	}
}

// Transaction runs fn with repositories bound to a single database
// transaction. Any error returned by fn rolls back every write made through tx.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewStore(tx))
	})
}
