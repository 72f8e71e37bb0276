package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/services"
	"github.com/yeremiapane/menux-backend/utils"
)

// KitchenTicketController backs the kitchen display.
type KitchenTicketController struct {
	Orders *services.OrderService
}

func NewKitchenTicketController(orders *services.OrderService) *KitchenTicketController {
	return &KitchenTicketController{Orders: orders}
}

type updateTicketStatusRequest struct {
	Status models.KitchenStatus `json:"status" binding:"required"`
}

func (kc *KitchenTicketController) GetTickets(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	tickets, err := kc.Orders.ListKitchenTickets(c.Request.Context(), restaurantID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of kitchen tickets", tickets)
}

// UpdateTicketStatus moves a ticket and, through it, its order.
func (kc *KitchenTicketController) UpdateTicketStatus(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	ticketID, err := uuidParam(c, "ticket_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req updateTicketStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	ticket, err := kc.Orders.ChangeKitchenStatus(c.Request.Context(), restaurantID, ticketID, req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Kitchen ticket updated", ticket)
}
