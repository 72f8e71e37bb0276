package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yeremiapane/menux-backend/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderRepository persists orders, their lines, status history and payment
// records. It holds no business rules.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create stores the order, its lines and the initial history row atomically.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order, items []models.OrderItem, history *models.OrderStatusHistory) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return fmt.Errorf("create order items: %w", err)
			}
		}
		history.OrderID = order.ID
		if err := tx.Create(history).Error; err != nil {
			return fmt.Errorf("create status history: %w", err)
		}
		return nil
	})
}

// FindForRestaurant loads an order scoped to its restaurant. Orders of other
// restaurants are reported as not found.
func (r *OrderRepository) FindForRestaurant(ctx context.Context, restaurantID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		First(&order).Error
	if err != nil {
		return nil, translate(err, "Order not found", "find order")
	}
	return &order, nil
}

// LockForRestaurant is FindForRestaurant with a row lock held until the
// surrounding transaction ends.
func (r *OrderRepository) LockForRestaurant(ctx context.Context, restaurantID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND restaurant_id = ?", orderID, restaurantID).
		First(&order).Error
	if err != nil {
		return nil, translate(err, "Order not found", "lock order")
	}
	return &order, nil
}

func (r *OrderRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// FindStale returns orders in the given state created strictly before cutoff, oldest first.
func (r *OrderRepository) FindStale(ctx context.Context, status models.OrderStatus, paymentStatus models.PaymentStatus, before time.Time) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND created_at < ?", status, paymentStatus, before).
		Order("created_at ASC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("find stale orders: %w", err)
	}
	return orders, nil
}

// UpdateState writes the mutable fields of an order.
func (r *OrderRepository) UpdateState(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", order.ID).
		Updates(map[string]interface{}{
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
			"updated_at":     order.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update order %s: %w", order.ID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("update order %s: %d rows affected", order.ID, res.RowsAffected)
	}
	return nil
}

func (r *OrderRepository) AppendHistory(ctx context.Context, entry *models.OrderStatusHistory) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("append status history: %w", err)
	}
	return nil
}

func (r *OrderRepository) CreatePayment(ctx context.Context, payment *models.OrderPayment) error {
	if err := r.db.WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

// HasSuccessfulPayment checks the payment ledger itself rather than the
// denormalized payment status of the order.
func (r *OrderRepository) HasSuccessfulPayment(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OrderPayment{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentRecordSuccess).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("count payments: %w", err)
	}
	return count > 0, nil
}

func (r *OrderRepository) ItemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	var items []models.OrderItem
	if len(orderIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&items).Error; err != nil {
			return nil, fmt.Errorf("load order items: %w", err)
		}
	}
	out := make(map[uuid.UUID][]models.OrderItem, len(orderIDs))
	for _, it := range items {
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, nil
}

// HistoryFor returns history per order, oldest first with insertion order breaking ties.
func (r *OrderRepository) HistoryFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderStatusHistory, error) {
	var rows []models.OrderStatusHistory
	if len(orderIDs) > 0 {
		err := r.db.WithContext(ctx).
			Where("order_id IN ?", orderIDs).
			Order("created_at ASC").
			Order("id ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("load status history: %w", err)
		}
	}
	out := make(map[uuid.UUID][]models.OrderStatusHistory, len(orderIDs))
	for _, h := range rows {
		out[h.OrderID] = append(out[h.OrderID], h)
	}
	return out, nil
}

func (r *OrderRepository) PaymentsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderPayment, error) {
	var rows []models.OrderPayment
	if len(orderIDs) > 0 {
		err := r.db.WithContext(ctx).
			Where("order_id IN ?", orderIDs).
			Order("created_at ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("load payments: %w", err)
		}
	}
	out := make(map[uuid.UUID][]models.OrderPayment, len(orderIDs))
	for _, p := range rows {
		out[p.OrderID] = append(out[p.OrderID], p)
	}
	return out, nil
}
