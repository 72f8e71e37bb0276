package services

import (
	"fmt"
	"time"

	"github.com/yeremiapane/menux-backend/models"
)

// transition is the result of planning a lifecycle step: new copies of the
// order and ticket plus the history row to append. Nothing is written until
// the plan is applied inside the order's transaction.
type transition struct {
	Order         models.Order
	Ticket        models.KitchenTicket
	PrevStatus    models.OrderStatus
	PrevKitchen   models.KitchenStatus
	OrderChanged  bool
	TicketChanged bool
	History       *models.OrderStatusHistory
}

// syncFromOrder mirrors an order status onto the ticket. The ticket edge goes
// through the kitchen guard like any direct kitchen change.
func syncFromOrder(ticket models.KitchenTicket, next models.OrderStatus, now time.Time) (models.KitchenTicket, bool, error) {
	target, ok := models.KitchenStatusFor(next)
	if !ok {
		return ticket, false, fmt.Errorf("no kitchen status for order status %q", next)
	}
	if ticket.Status == target {
		return ticket, false, nil
	}
	if _, err := ValidateKitchenTransition(ticket.Status, target); err != nil {
		return ticket, false, err
	}
	ticket.Status = target
	ticket.UpdatedAt = now
	return ticket, true, nil
}

// mapKitchenToOrder returns the order status a kitchen status drives, if any.
// NEW drives nothing.
func mapKitchenToOrder(s models.KitchenStatus) (models.OrderStatus, bool) {
	return models.OrderStatusFor(s)
}

// planOrderTransition validates next against the order and computes the
// resulting order, ticket and history row.
func planOrderTransition(order models.Order, ticket models.KitchenTicket, next models.OrderStatus, now time.Time) (*transition, error) {
	t := &transition{
		Order:       order,
		Ticket:      ticket,
		PrevStatus:  order.Status,
		PrevKitchen: ticket.Status,
	}
	noop, err := ValidateOrderTransition(order.Status, next)
	if err != nil {
		return nil, err
	}
	if noop {
		return t, nil
	}

	t.Order.Status = next
	t.Order.UpdatedAt = now
	t.OrderChanged = true
	t.History = &models.OrderStatusHistory{OrderID: order.ID, Status: next, CreatedAt: now}

	t.Ticket, t.TicketChanged, err = syncFromOrder(ticket, next, now)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// planKitchenTransition validates the kitchen edge and, when the mapped order
// status differs from the current one, the order edge as well. Either failure
// rejects the whole plan.
func planKitchenTransition(order models.Order, ticket models.KitchenTicket, next models.KitchenStatus, now time.Time) (*transition, error) {
	t := &transition{
		Order:       order,
		Ticket:      ticket,
		PrevStatus:  order.Status,
		PrevKitchen: ticket.Status,
	}
	noop, err := ValidateKitchenTransition(ticket.Status, next)
	if err != nil {
		return nil, err
	}
	if noop {
		return t, nil
	}
	t.Ticket.Status = next
	t.Ticket.UpdatedAt = now
	t.TicketChanged = true

	mapped, ok := mapKitchenToOrder(next)
	if !ok || mapped == order.Status {
		return t, nil
	}
	if _, err := ValidateOrderTransition(order.Status, mapped); err != nil {
		return nil, err
	}
	t.Order.Status = mapped
	t.Order.UpdatedAt = now
	t.OrderChanged = true
	t.History = &models.OrderStatusHistory{OrderID: order.ID, Status: mapped, CreatedAt: now}
	return t, nil
}
