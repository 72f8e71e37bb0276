package services

import (
	"fmt"

	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/utils"
)

// machine is a linear status progression with an absorbing cancelled state.
// The last progression step and the cancelled state are terminal.
type machine[S ~string] struct {
	name        string
	progression []S
	cancelled   S
}

var (
	orderMachine = machine[models.OrderStatus]{
		name:        "order",
		progression: models.OrderProgression,
		cancelled:   models.OrderStatusCancelled,
	}
	kitchenMachine = machine[models.KitchenStatus]{
		name:        "kitchen ticket",
		progression: models.KitchenProgression,
		cancelled:   models.KitchenStatusCancelled,
	}
)

func (m machine[S]) terminal(s S) bool {
	return s == m.cancelled || s == m.progression[len(m.progression)-1]
}

// validate reports whether from -> to is a no-op, or fails with an
// InvalidTransition error when the edge is illegal.
func (m machine[S]) validate(from, to S) (noop bool, err error) {
	if from == to {
		return true, nil
	}
	if m.terminal(from) {
		return false, utils.InvalidTransition(fmt.Sprintf("Cannot change %s status after %s", m.name, from))
	}
	if to == m.cancelled {
		return false, nil
	}
	for i := 0; i+1 < len(m.progression); i++ {
		if m.progression[i] == from && m.progression[i+1] == to {
			return false, nil
		}
	}
	return false, utils.InvalidTransition(fmt.Sprintf("Invalid %s status transition %s -> %s", m.name, from, to))
}

// ValidateOrderTransition is the single guard for order status changes.
func ValidateOrderTransition(from, to models.OrderStatus) (noop bool, err error) {
	return orderMachine.validate(from, to)
}

// ValidateKitchenTransition is the single guard for kitchen ticket status changes.
func ValidateKitchenTransition(from, to models.KitchenStatus) (noop bool, err error) {
	return kitchenMachine.validate(from, to)
}
