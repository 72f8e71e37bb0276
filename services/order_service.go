package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/menux-backend/kds"
	"github.com/yeremiapane/menux-backend/locks"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/repository"
	"github.com/yeremiapane/menux-backend/utils"
	"gorm.io/gorm"
)

// OrderService is the order lifecycle engine. Every mutation of an existing
// order runs under the order's lock and inside one transaction that re-reads
// the order row FOR UPDATE; events go out only after commit.
type OrderService struct {
	store   *repository.Store
	sources *repository.SourceRepository
	menu    *repository.MenuRepository
	pricer  *Pricer
	locker  locks.Locker
	events  kds.Publisher
	now     func() time.Time
}

type Option func(*OrderService)

// WithClock replaces time.Now, e.g. with a fixed clock in tests.
func WithClock(now func() time.Time) Option {
	return func(s *OrderService) { s.now = now }
}

func NewOrderService(db *gorm.DB, locker locks.Locker, events kds.Publisher, opts ...Option) *OrderService {
	sources := repository.NewSourceRepository(db)
	menu := repository.NewMenuRepository(db)
	s := &OrderService{
		store:   repository.NewStore(db),
		sources: sources,
		menu:    menu,
		pricer:  NewPricer(repository.NewRestaurantRepository(db), sources, menu),
		locker:  locker,
		events:  events,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *OrderService) clock() time.Time {
	return s.now().UTC()
}

// CreateOrder prices the request and stores the order, its lines, the PENDING
// history row and a NEW kitchen ticket atomically.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	priced, err := s.pricer.Price(ctx, req)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	order := &models.Order{
		RestaurantID:  priced.Restaurant.ID,
		TableID:       priced.Source.TableID,
		RoomID:        priced.Source.RoomID,
		OrderType:     priced.Source.Type(),
		Status:        models.OrderStatusPending,
		PaymentStatus: models.PaymentStatusUnpaid,
		TotalAmount:   priced.Total,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	ticket := &models.KitchenTicket{
		RestaurantID: priced.Restaurant.ID,
		Status:       models.KitchenStatusNew,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		history := &models.OrderStatusHistory{Status: models.OrderStatusPending, CreatedAt: now}
		if err := tx.Orders.Create(ctx, order, priced.Lines, history); err != nil {
			return err
		}
		ticket.OrderID = order.ID
		return tx.Tickets.Create(ctx, ticket)
	})
	if err != nil {
		return nil, err
	}

	utils.InfoLogger.WithFields(utils.OrderFields(order.RestaurantID, order.ID)).
		WithFields(logrus.Fields{"total": order.TotalAmount.StringFixed(2), "order_type": order.OrderType}).
		Info("Order created")
	s.events.Publish(ctx, kds.NewEvent(kds.EventOrderCreated, order, ticket, now))

	return &CreateOrderResult{
		OrderID:         order.ID,
		TotalAmount:     order.TotalAmount,
		PaymentRequired: order.TotalAmount.IsPositive(),
	}, nil
}

// ChangeOrderStatus moves an order to next and mirrors the change onto its
// kitchen ticket. A same-status request succeeds without writing anything.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, restaurantID, orderID uuid.UUID, next models.OrderStatus) (*OrderView, error) {
	if !next.Valid() {
		return nil, utils.Validation(fmt.Sprintf("Unknown order status %q", next))
	}
	t, err := s.transitionOrder(ctx, restaurantID, orderID, next)
	if err != nil {
		return nil, err
	}
	s.publishTransition(ctx, kds.EventOrderStatusChanged, t)
	return s.GetOrder(ctx, restaurantID, orderID)
}

func (s *OrderService) transitionOrder(ctx context.Context, restaurantID, orderID uuid.UUID, next models.OrderStatus) (*transition, error) {
	var t *transition
	err := s.withOrder(ctx, restaurantID, orderID, func(tx *repository.Store, order *models.Order, ticket *models.KitchenTicket) error {
		var err error
		t, err = planOrderTransition(*order, *ticket, next, s.clock())
		if err != nil {
			return err
		}
		return applyTransition(ctx, tx, t)
	})
	return t, err
}

// ChangeKitchenStatus is the kitchen-side entry point. The mapped order status
// is applied in the same transaction; if that order edge is illegal nothing is
// written.
func (s *OrderService) ChangeKitchenStatus(ctx context.Context, restaurantID, ticketID uuid.UUID, next models.KitchenStatus) (*KitchenTicketView, error) {
	if !next.Valid() {
		return nil, utils.Validation(fmt.Sprintf("Unknown kitchen status %q", next))
	}
	ticket, err := s.store.Tickets.FindForRestaurant(ctx, restaurantID, ticketID)
	if err != nil {
		return nil, err
	}

	var t *transition
	err = s.withOrder(ctx, restaurantID, ticket.OrderID, func(tx *repository.Store, order *models.Order, current *models.KitchenTicket) error {
		var err error
		t, err = planKitchenTransition(*order, *current, next, s.clock())
		if err != nil {
			return err
		}
		return applyTransition(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}

	s.publishTransition(ctx, kds.EventKitchenTicketChanged, t)
	v := ticketView(t.Ticket)
	return &v, nil
}

// CancelStaleOrder cancels an order only if it is still PENDING and UNPAID
// once its lock is held. It reports whether the order was cancelled.
func (s *OrderService) CancelStaleOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (bool, error) {
	var t *transition
	err := s.withOrder(ctx, restaurantID, orderID, func(tx *repository.Store, order *models.Order, ticket *models.KitchenTicket) error {
		if order.Status != models.OrderStatusPending || order.PaymentStatus != models.PaymentStatusUnpaid {
			return nil
		}
		var err error
		t, err = planOrderTransition(*order, *ticket, models.OrderStatusCancelled, s.clock())
		if err != nil {
			return err
		}
		return applyTransition(ctx, tx, t)
	})
	if err != nil || t == nil {
		return false, err
	}
	s.publishTransition(ctx, kds.EventOrderAutoCancelled, t)
	return true, nil
}

func (s *OrderService) GetOrder(ctx context.Context, restaurantID, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.store.Orders.FindForRestaurant(ctx, restaurantID, orderID)
	if err != nil {
		return nil, err
	}
	views, err := s.orderViews(ctx, restaurantID, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListOrders returns the restaurant's orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, restaurantID uuid.UUID) ([]OrderView, error) {
	orders, err := s.store.Orders.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	return s.orderViews(ctx, restaurantID, orders)
}

func (s *OrderService) ListKitchenTickets(ctx context.Context, restaurantID uuid.UUID) ([]KitchenTicketView, error) {
	tickets, err := s.store.Tickets.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	out := make([]KitchenTicketView, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, ticketView(t))
	}
	return out, nil
}

// GetPublicOrder is the customer order tracker. The caller must present the
// same table or room the order was placed from.
func (s *OrderService) GetPublicOrder(ctx context.Context, slug string, orderID uuid.UUID, source models.OrderSource) (*PublicOrderView, error) {
	restaurant, err := s.pricer.restaurants.FindActiveBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	order, err := s.store.Orders.FindForRestaurant(ctx, restaurant.ID, orderID)
	if err != nil {
		return nil, err
	}
	if !order.PlacedFrom(source) {
		return nil, utils.Forbidden("Order ownership validation failed")
	}

	views, err := s.orderViews(ctx, restaurant.ID, []models.Order{*order})
	if err != nil {
		return nil, err
	}
	v := views[0]
	return &PublicOrderView{
		OrderID:          v.ID,
		RestaurantName:   restaurant.Name,
		TableID:          v.TableID,
		TableNumber:      v.TableNumber,
		RoomID:           v.RoomID,
		RoomNumber:       v.RoomNumber,
		OrderType:        v.OrderType,
		Status:           v.Status,
		PaymentStatus:    v.PaymentStatus,
		TotalAmount:      v.TotalAmount,
		CreatedAt:        v.CreatedAt,
		EstimatedMinutes: estimatedMinutes(v.Status),
		Items:            v.Items,
		StatusHistory:    v.StatusHistory,
	}, nil
}

// withOrder serializes fn against every other mutation of the same order:
// the order lock is taken first, then a transaction that locks the order row
// and loads its ticket.
func (s *OrderService) withOrder(ctx context.Context, restaurantID, orderID uuid.UUID, fn func(tx *repository.Store, order *models.Order, ticket *models.KitchenTicket) error) error {
	unlock, err := s.locker.Lock(ctx, orderID)
	if err != nil {
		return fmt.Errorf("lock order %s: %w", orderID, err)
	}
	defer unlock()

	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		order, err := tx.Orders.LockForRestaurant(ctx, restaurantID, orderID)
		if err != nil {
			return err
		}
		ticket, err := tx.Tickets.FindByOrderID(ctx, orderID)
		if err != nil {
			return fmt.Errorf("order %s has no kitchen ticket: %w", orderID, err)
		}
		return fn(tx, order, ticket)
	})
}

// applyTransition writes a planned transition.
func applyTransition(ctx context.Context, tx *repository.Store, t *transition) error {
	if t.OrderChanged {
		if err := tx.Orders.UpdateState(ctx, &t.Order); err != nil {
			return err
		}
	}
	if t.History != nil {
		if err := tx.Orders.AppendHistory(ctx, t.History); err != nil {
			return err
		}
	}
	if t.TicketChanged {
		if err := tx.Tickets.Update(ctx, &t.Ticket); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) publishTransition(ctx context.Context, eventType string, t *transition) {
	if !t.OrderChanged && !t.TicketChanged {
		return
	}
	utils.InfoLogger.WithFields(utils.OrderFields(t.Order.RestaurantID, t.Order.ID)).
		WithFields(logrus.Fields{
			"from":         t.PrevStatus,
			"to":           t.Order.Status,
			"kitchen_from": t.PrevKitchen,
			"kitchen_to":   t.Ticket.Status,
		}).
		Info("Order transition applied")
	s.events.Publish(ctx, kds.NewEvent(eventType, &t.Order, &t.Ticket, s.clock()))
}
