package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/services"
	"github.com/yeremiapane/menux-backend/utils"
)

// OrderController is the staff side of order management. Every handler is
// scoped to the restaurant bound by RestaurantAdminAuth.
type OrderController struct {
	Orders   *services.OrderService
	Payments *services.PaymentService
}

func NewOrderController(orders *services.OrderService, payments *services.PaymentService) *OrderController {
	return &OrderController{Orders: orders, Payments: payments}
}

type updateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

type markPaidRequest struct {
	Gateway models.PaymentGateway `json:"gateway"`
}

// GetAllOrders -> list orders, newest first
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	orders, err := oc.Orders.ListOrders(c.Request.Context(), restaurantID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	order, err := oc.Orders.GetOrder(c.Request.Context(), restaurantID, orderID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", order)
}

// UpdateOrderStatus -> PATCH /api/admin/orders/:order_id/status
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req updateOrderStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	order, err := oc.Orders.ChangeOrderStatus(c.Request.Context(), restaurantID, orderID, req.Status)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order status updated", order)
}

// MarkPaid records a payment taken at the counter. Gateway defaults to CASH.
func (oc *OrderController) MarkPaid(c *gin.Context) {
	restaurantID, ok := restaurantScope(c)
	if !ok {
		return
	}
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req markPaidRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	if req.Gateway == "" {
		req.Gateway = models.GatewayCash
	}

	order, err := oc.Payments.MarkOrderPaid(c.Request.Context(), restaurantID, orderID, req.Gateway)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order marked as paid", order)
}
