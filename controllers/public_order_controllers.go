package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/services"
	"github.com/yeremiapane/menux-backend/utils"
)

// PublicOrderController serves the customer ordering flow. Callers are
// anonymous and identified only by restaurant slug and table or room.
type PublicOrderController struct {
	Orders   *services.OrderService
	Payments *services.PaymentService
}

func NewPublicOrderController(orders *services.OrderService, payments *services.PaymentService) *PublicOrderController {
	return &PublicOrderController{Orders: orders, Payments: payments}
}

// CreateOrder -> POST /api/public/orders
func (pc *PublicOrderController) CreateOrder(c *gin.Context) {
	var req services.CreateOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := pc.Orders.CreateOrder(c.Request.Context(), req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Order created", res)
}

// PayOrder -> POST /api/public/orders/:order_id/pay
func (pc *PublicOrderController) PayOrder(c *gin.Context) {
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	var req services.PayOrderRequest
	if !bindJSON(c, &req) {
		return
	}

	res, err := pc.Payments.RecordPayment(c.Request.Context(), orderID, req)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Payment successful"
	if res.PaymentRecordStatus == models.PaymentRecordFailed {
		message = "Payment failed"
	}
	utils.RespondJSON(c, http.StatusOK, message, res)
}

// GetOrder -> GET /api/public/orders/:order_id?slug=&table_id=&room_id=
func (pc *PublicOrderController) GetOrder(c *gin.Context) {
	orderID, err := uuidParam(c, "order_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	tableID, err := optionalUUIDQuery(c, "table_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	roomID, err := optionalUUIDQuery(c, "room_id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	source := models.OrderSource{TableID: tableID, RoomID: roomID}
	view, err := pc.Orders.GetPublicOrder(c.Request.Context(), c.Query("slug"), orderID, source)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order details", view)
}
