// Package kds fans order lifecycle events out to the kitchen display system
// and other downstream consumers.
package kds

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
)

// Event types
const (
	EventOrderCreated         = "order.created"
	EventOrderStatusChanged   = "order.status_changed"
	EventKitchenTicketChanged = "kitchen.ticket.status_changed"
	EventOrderPaymentRecorded = "order.payment_recorded"
	EventOrderAutoCancelled   = "order.auto_cancelled"
)

// Event is a snapshot of an order and its kitchen ticket after a committed change.
type Event struct {
	ID            uuid.UUID            `json:"id"`
	Type          string               `json:"event"`
	RestaurantID  uuid.UUID            `json:"restaurant_id"`
	OrderID       uuid.UUID            `json:"order_id"`
	TicketID      uuid.UUID            `json:"ticket_id"`
	OrderStatus   models.OrderStatus   `json:"order_status"`
	KitchenStatus models.KitchenStatus `json:"kitchen_status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewEvent(eventType string, order *models.Order, ticket *models.KitchenTicket, at time.Time) Event {
	evt := Event{
		ID:            uuid.New(),
		Type:          eventType,
		RestaurantID:  order.RestaurantID,
		OrderID:       order.ID,
		OrderStatus:   order.Status,
		PaymentStatus: order.PaymentStatus,
		OccurredAt:    at.UTC(),
	}
	if ticket != nil {
		evt.TicketID = ticket.ID
		evt.KitchenStatus = ticket.Status
	}
	return evt
}

func (e Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// Sink delivers events to one destination.
type Sink interface {
	Name() string
	Publish(ctx context.Context, evt Event) error
}

// Publisher is what the services depend on.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

// Hub broadcasts every event to all sinks. Delivery is best effort: a failing
// sink is logged and never reported back to the caller, whose state change
// has already been committed.
type Hub struct {
	sinks   []Sink
	timeout time.Duration
}

func NewHub(sinks ...Sink) *Hub {
	return &Hub{sinks: sinks, timeout: 5 * time.Second}
}

func (h *Hub) AddSink(s Sink) {
	h.sinks = append(h.sinks, s)
}

func (h *Hub) Publish(ctx context.Context, evt Event) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), h.timeout)
	defer cancel()

	for _, s := range h.sinks {
		if err := s.Publish(ctx, evt); err != nil {
			utils.ErrorLogger.WithFields(logrus.Fields{
				"sink":     s.Name(),
				"event":    evt.Type,
				"order_id": evt.OrderID,
			}).Errorf("publish event: %v", err)
		}
	}
}

// Close closes every sink holding a connection.
func (h *Hub) Close() {
	for _, s := range h.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				utils.ErrorLogger.WithField("sink", s.Name()).Errorf("close sink: %v", err)
			}
		}
	}
}

// LogSink writes events to the info logger.
type LogSink struct{}

func (LogSink) Name() string { return "log" }

func (LogSink) Publish(_ context.Context, evt Event) error {
	utils.InfoLogger.WithFields(utils.OrderFields(evt.RestaurantID, evt.OrderID)).
		WithFields(logrus.Fields{
			"event":          evt.Type,
			"order_status":   evt.OrderStatus,
			"kitchen_status": evt.KitchenStatus,
			"payment_status": evt.PaymentStatus,
		}).
		Info("order event")
	return nil
}
