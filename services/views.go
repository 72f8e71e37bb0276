package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/menux-backend/models"
)

type OrderItemView struct {
	ID           uuid.UUID       `json:"id"`
	MenuItemID   uuid.UUID       `json:"menu_item_id"`
	MenuItemName string          `json:"menu_item_name"`
	VariantID    *uuid.UUID      `json:"variant_id,omitempty"`
	VariantName  *string         `json:"variant_name,omitempty"`
	Quantity     int             `json:"quantity"`
	Price        decimal.Decimal `json:"price"`
	Instruction  string          `json:"instruction,omitempty"`
}

type StatusHistoryView struct {
	Status    models.OrderStatus `json:"status"`
	ChangedAt time.Time          `json:"changed_at"`
}

type PaymentView struct {
	ID            uuid.UUID                  `json:"id"`
	Gateway       models.PaymentGateway      `json:"gateway"`
	TransactionID string                     `json:"transaction_id"`
	Status        models.PaymentRecordStatus `json:"status"`
	CreatedAt     time.Time                  `json:"created_at"`
}

type KitchenTicketView struct {
	ID        uuid.UUID            `json:"id"`
	OrderID   uuid.UUID            `json:"order_id"`
	Status    models.KitchenStatus `json:"status"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// OrderView is the staff-facing order with everything attached to it.
type OrderView struct {
	ID            uuid.UUID            `json:"id"`
	RestaurantID  uuid.UUID            `json:"restaurant_id"`
	TableID       *uuid.UUID           `json:"table_id,omitempty"`
	TableNumber   *string              `json:"table_number,omitempty"`
	RoomID        *uuid.UUID           `json:"room_id,omitempty"`
	RoomNumber    *string              `json:"room_number,omitempty"`
	OrderType     models.OrderType     `json:"order_type"`
	Status        models.OrderStatus   `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	TotalAmount   decimal.Decimal      `json:"total_amount"`
	CreatedAt     time.Time            `json:"created_at"`
	Items         []OrderItemView      `json:"items"`
	StatusHistory []StatusHistoryView  `json:"status_history"`
	Payments      []PaymentView        `json:"payments"`
	KitchenTicket *KitchenTicketView   `json:"kitchen_ticket,omitempty"`
}

// PublicOrderView is what a customer sees when tracking an order.
type PublicOrderView struct {
	OrderID          uuid.UUID            `json:"order_id"`
	RestaurantName   string               `json:"restaurant_name"`
	TableID          *uuid.UUID           `json:"table_id,omitempty"`
	TableNumber      *string              `json:"table_number,omitempty"`
	RoomID           *uuid.UUID           `json:"room_id,omitempty"`
	RoomNumber       *string              `json:"room_number,omitempty"`
	OrderType        models.OrderType     `json:"order_type"`
	Status           models.OrderStatus   `json:"status"`
	PaymentStatus    models.PaymentStatus `json:"payment_status"`
	TotalAmount      decimal.Decimal      `json:"total_amount"`
	CreatedAt        time.Time            `json:"created_at"`
	EstimatedMinutes int                  `json:"estimated_minutes"`
	Items            []OrderItemView      `json:"items"`
	StatusHistory    []StatusHistoryView  `json:"status_history"`
}

type CreateOrderResult struct {
	OrderID         uuid.UUID       `json:"order_id"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	PaymentRequired bool            `json:"payment_required"`
}

type PaymentResult struct {
	OrderID             uuid.UUID                  `json:"order_id"`
	PaymentID           uuid.UUID                  `json:"payment_id"`
	PaymentRecordStatus models.PaymentRecordStatus `json:"payment_record_status"`
	OrderPaymentStatus  models.PaymentStatus       `json:"order_payment_status"`
	OrderStatus         models.OrderStatus         `json:"order_status"`
	TransactionID       string                     `json:"transaction_id"`
}

// estimatedMinutes is the remaining preparation estimate shown to customers.
func estimatedMinutes(s models.OrderStatus) int {
	switch s {
	case models.OrderStatusPending:
		return 25
	case models.OrderStatusAccepted:
		return 20
	case models.OrderStatusCooking:
		return 10
	default:
		return 0
	}
}

func ticketView(t models.KitchenTicket) KitchenTicketView {
	return KitchenTicketView{
		ID:        t.ID,
		OrderID:   t.OrderID,
		Status:    t.Status,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}
}

// orderViews loads lines, history, payments, tickets and display names for a
// batch of orders of one restaurant with a fixed number of queries.
func (s *OrderService) orderViews(ctx context.Context, restaurantID uuid.UUID, orders []models.Order) ([]OrderView, error) {
	views := make([]OrderView, 0, len(orders))
	if len(orders) == 0 {
		return views, nil
	}

	ids := make([]uuid.UUID, 0, len(orders))
	var tableIDs, roomIDs []uuid.UUID
	for _, o := range orders {
		ids = append(ids, o.ID)
		if o.TableID != nil {
			tableIDs = append(tableIDs, *o.TableID)
		}
		if o.RoomID != nil {
			roomIDs = append(roomIDs, *o.RoomID)
		}
	}

	items, err := s.store.Orders.ItemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	history, err := s.store.Orders.HistoryFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	payments, err := s.store.Orders.PaymentsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	tickets, err := s.store.Tickets.ByOrderIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	tables, err := s.sources.TablesByIDs(ctx, restaurantID, tableIDs)
	if err != nil {
		return nil, err
	}
	rooms, err := s.sources.RoomsByIDs(ctx, restaurantID, roomIDs)
	if err != nil {
		return nil, err
	}
	lineViews, err := s.itemViews(ctx, restaurantID, items)
	if err != nil {
		return nil, err
	}

	for _, o := range orders {
		v := OrderView{
			ID:            o.ID,
			RestaurantID:  o.RestaurantID,
			TableID:       o.TableID,
			RoomID:        o.RoomID,
			OrderType:     o.OrderType,
			Status:        o.Status,
			PaymentStatus: o.PaymentStatus,
			TotalAmount:   o.TotalAmount,
			CreatedAt:     o.CreatedAt,
			Items:         lineViews[o.ID],
			StatusHistory: historyViews(history[o.ID]),
			Payments:      []PaymentView{},
		}
		if v.Items == nil {
			v.Items = []OrderItemView{}
		}
		if o.TableID != nil {
			if t, ok := tables[*o.TableID]; ok {
				v.TableNumber = &t.TableNumber
			}
		}
		if o.RoomID != nil {
			if r, ok := rooms[*o.RoomID]; ok {
				v.RoomNumber = &r.RoomNumber
			}
		}
		for _, p := range payments[o.ID] {
			v.Payments = append(v.Payments, PaymentView{
				ID:            p.ID,
				Gateway:       p.Gateway,
				TransactionID: p.TransactionID,
				Status:        p.Status,
				CreatedAt:     p.CreatedAt,
			})
		}
		if t, ok := tickets[o.ID]; ok {
			tv := ticketView(t)
			v.KitchenTicket = &tv
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *OrderService) itemViews(ctx context.Context, restaurantID uuid.UUID, byOrder map[uuid.UUID][]models.OrderItem) (map[uuid.UUID][]OrderItemView, error) {
	var menuIDs, variantIDs []uuid.UUID
	for _, lines := range byOrder {
		for _, l := range lines {
			menuIDs = append(menuIDs, l.MenuItemID)
			if l.VariantID != nil {
				variantIDs = append(variantIDs, *l.VariantID)
			}
		}
	}
	menu, err := s.menu.ItemsByIDs(ctx, restaurantID, menuIDs)
	if err != nil {
		return nil, err
	}
	variants, err := s.menu.VariantsByIDs(ctx, variantIDs)
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID][]OrderItemView, len(byOrder))
	for orderID, lines := range byOrder {
		for _, l := range lines {
			iv := OrderItemView{
				ID:           l.ID,
				MenuItemID:   l.MenuItemID,
				MenuItemName: menu[l.MenuItemID].Name,
				VariantID:    l.VariantID,
				Quantity:     l.Quantity,
				Price:        l.Price,
				Instruction:  l.Instruction,
			}
			if l.VariantID != nil {
				if v, ok := variants[*l.VariantID]; ok {
					name := v.Name
					iv.VariantName = &name
				}
			}
			out[orderID] = append(out[orderID], iv)
		}
	}
	return out, nil
}

func historyViews(rows []models.OrderStatusHistory) []StatusHistoryView {
	out := make([]StatusHistoryView, 0, len(rows))
	for _, h := range rows {
		out = append(out, StatusHistoryView{Status: h.Status, ChangedAt: h.CreatedAt})
	}
	return out
}
