package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/menux-backend/models"
	"gorm.io/gorm"
)

type KitchenTicketRepository struct {
	db *gorm.DB
}

func NewKitchenTicketRepository(db *gorm.DB) *KitchenTicketRepository {
	return &KitchenTicketRepository{db: db}
}

func (r *KitchenTicketRepository) Create(ctx context.Context, ticket *models.KitchenTicket) error {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return fmt.Errorf("create kitchen ticket: %w", err)
	}
	return nil
}

func (r *KitchenTicketRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.KitchenTicket, error) {
	var ticket models.KitchenTicket
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&ticket).Error
	if err != nil {
		return nil, translate(err, "Kitchen ticket not found", "find kitchen ticket")
	}
	return &ticket, nil
}

func (r *KitchenTicketRepository) FindForRestaurant(ctx context.Context, restaurantID, ticketID uuid.UUID) (*models.KitchenTicket, error) {
	var ticket models.KitchenTicket
	err := r.db.WithContext(ctx).
		Where("id = ? AND restaurant_id = ?", ticketID, restaurantID).
		First(&ticket).Error
	if err != nil {
		return nil, translate(err, "Kitchen ticket not found", "find kitchen ticket")
	}
	return &ticket, nil
}

func (r *KitchenTicketRepository) ListByRestaurant(ctx context.Context, restaurantID uuid.UUID) ([]models.KitchenTicket, error) {
	var tickets []models.KitchenTicket
	err := r.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC").
		Find(&tickets).Error
	if err != nil {
		return nil, fmt.Errorf("list kitchen tickets: %w", err)
	}
	return tickets, nil
}

func (r *KitchenTicketRepository) Update(ctx context.Context, ticket *models.KitchenTicket) error {
	res := r.db.WithContext(ctx).
		Model(&models.KitchenTicket{}).
		Where("id = ?", ticket.ID).
		Updates(map[string]interface{}{
			"status":     ticket.Status,
			"updated_at": ticket.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("update kitchen ticket %s: %w", ticket.ID, res.Error)
	}
	if res.RowsAffected != 1 {
		return fmt.Errorf("update kitchen ticket %s: %d rows affected", ticket.ID, res.RowsAffected)
	}
	return nil
}

func (r *KitchenTicketRepository) ByOrderIDs(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID]models.KitchenTicket, error) {
	var tickets []models.KitchenTicket
	if len(orderIDs) > 0 {
		if err := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Find(&tickets).Error; err != nil {
			return nil, fmt.Errorf("load kitchen tickets: %w", err)
		}
	}
	out := make(map[uuid.UUID]models.KitchenTicket, len(tickets))
	for _, t := range tickets {
		out[t.OrderID] = t
	}
	return out, nil
}
