package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/menux-backend/kds"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/repository"
	"github.com/yeremiapane/menux-backend/utils"
)

// PayOrderRequest is a customer payment attempt. SimulateSuccess defaults to true.
type PayOrderRequest struct {
	Slug            string                `json:"slug"`
	TableID         *uuid.UUID            `json:"table_id"`
	RoomID          *uuid.UUID            `json:"room_id"`
	Gateway         models.PaymentGateway `json:"gateway"`
	SimulateSuccess *bool                 `json:"simulate_success"`
	TransactionID   string                `json:"transaction_id"`
}

// PaymentService reconciles payment attempts against the order lifecycle.
type PaymentService struct {
	orders  *OrderService
	monitor *PaymentMonitor
}

func NewPaymentService(orders *OrderService, monitor *PaymentMonitor) *PaymentService {
	return &PaymentService{orders: orders, monitor: monitor}
}

// RecordPayment records a customer payment for an order placed from the
// given table or room. At most one successful payment is ever accepted.
func (s *PaymentService) RecordPayment(ctx context.Context, orderID uuid.UUID, req PayOrderRequest) (*PaymentResult, error) {
	if !req.Gateway.Valid() {
		return nil, utils.Validation(fmt.Sprintf("Unknown payment gateway %q", req.Gateway))
	}
	restaurant, err := s.orders.pricer.OrderingRestaurant(ctx, req.Slug)
	if err != nil {
		return nil, err
	}
	success := req.SimulateSuccess == nil || *req.SimulateSuccess
	source := models.OrderSource{TableID: req.TableID, RoomID: req.RoomID}

	payment, t, err := s.reconcile(ctx, restaurant.ID, orderID, &source, req.Gateway, success, req.TransactionID)
	if err != nil {
		return nil, err
	}
	return &PaymentResult{
		OrderID:             t.Order.ID,
		PaymentID:           payment.ID,
		PaymentRecordStatus: payment.Status,
		OrderPaymentStatus:  t.Order.PaymentStatus,
		OrderStatus:         t.Order.Status,
		TransactionID:       payment.TransactionID,
	}, nil
}

// MarkOrderPaid records a successful payment taken by staff, e.g. cash at
// the counter. It skips the table/room check.
func (s *PaymentService) MarkOrderPaid(ctx context.Context, restaurantID, orderID uuid.UUID, gateway models.PaymentGateway) (*OrderView, error) {
	if !gateway.Valid() {
		return nil, utils.Validation(fmt.Sprintf("Unknown payment gateway %q", gateway))
	}
	if _, _, err := s.reconcile(ctx, restaurantID, orderID, nil, gateway, true, ""); err != nil {
		return nil, err
	}
	return s.orders.GetOrder(ctx, restaurantID, orderID)
}

func (s *PaymentService) Metrics() PaymentMetrics {
	return s.monitor.GetMetrics()
}

// reconcile runs the payment checks and writes under the order lock. A nil
// source skips the ownership check.
func (s *PaymentService) reconcile(ctx context.Context, restaurantID, orderID uuid.UUID, source *models.OrderSource, gateway models.PaymentGateway, success bool, suppliedTxnID string) (*models.OrderPayment, *transition, error) {
	var (
		payment *models.OrderPayment
		t       *transition
	)
	err := s.orders.withOrder(ctx, restaurantID, orderID, func(tx *repository.Store, order *models.Order, ticket *models.KitchenTicket) error {
		if source != nil && !order.PlacedFrom(*source) {
			return utils.Forbidden("Order ownership validation failed")
		}
		if order.Status == models.OrderStatusCancelled || order.Status == models.OrderStatusServed {
			return utils.InvalidState(fmt.Sprintf("Payment not allowed for %s order", order.Status))
		}
		if order.PaymentStatus == models.PaymentStatusPaid {
			return utils.Conflict("Order is already paid")
		}
		paid, err := tx.Orders.HasSuccessfulPayment(ctx, order.ID)
		if err != nil {
			return err
		}
		if paid {
			return utils.Conflict("Order is already paid")
		}

		now := s.orders.clock()
		payment = &models.OrderPayment{
			OrderID:       order.ID,
			Gateway:       gateway,
			Status:        models.PaymentRecordFailed,
			TransactionID: resolveTransactionID(gateway, suppliedTxnID),
			CreatedAt:     now,
		}
		if success {
			payment.Status = models.PaymentRecordSuccess
		}
		if err := tx.Orders.CreatePayment(ctx, payment); err != nil {
			return err
		}

		if !success {
			t = &transition{Order: *order, Ticket: *ticket, PrevStatus: order.Status, PrevKitchen: ticket.Status}
			return nil
		}

		paidOrder := *order
		paidOrder.PaymentStatus = models.PaymentStatusPaid
		paidOrder.UpdatedAt = now
		next := paidOrder.Status
		if next == models.OrderStatusPending {
			next = models.OrderStatusAccepted
		}
		t, err = planOrderTransition(paidOrder, *ticket, next, now)
		if err != nil {
			return err
		}
		t.OrderChanged = true
		return applyTransition(ctx, tx, t)
	})
	if err != nil {
		if k := utils.KindOf(err); k == utils.KindConflict || k == utils.KindInvalidState || k == utils.KindForbidden {
			s.monitor.Rejected()
		}
		return nil, nil, err
	}

	s.monitor.Recorded(payment.Status)
	utils.InfoLogger.WithFields(utils.OrderFields(restaurantID, orderID)).
		WithFields(logrus.Fields{
			"gateway":        payment.Gateway,
			"payment_status": payment.Status,
			"order_status":   t.Order.Status,
		}).
		Info("Payment recorded")
	s.orders.events.Publish(ctx, kds.NewEvent(kds.EventOrderPaymentRecorded, &t.Order, &t.Ticket, payment.CreatedAt))
	if t.History != nil {
		s.orders.events.Publish(ctx, kds.NewEvent(kds.EventOrderStatusChanged, &t.Order, &t.Ticket, payment.CreatedAt))
	}
	return payment, t, nil
}

// resolveTransactionID keeps a supplied id (trimmed) or synthesizes
// "<gateway-prefix>_<uuid>".
func resolveTransactionID(gateway models.PaymentGateway, supplied string) string {
	if id := strings.TrimSpace(supplied); id != "" {
		return id
	}
	return gateway.TransactionPrefix() + "_" + uuid.NewString()
}
