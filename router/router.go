package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/menux-backend/controllers"
	"github.com/yeremiapane/menux-backend/middlewares"
	"github.com/yeremiapane/menux-backend/models"
	"github.com/yeremiapane/menux-backend/services"
	"gorm.io/gorm"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	DB             *gorm.DB
	Orders         *services.OrderService
	Payments       *services.PaymentService
	Tokens         middlewares.TokenParser
	Users          middlewares.UserResolver
	RequestTimeout time.Duration
	CORSOrigins    []string
	RateLimiter    *middlewares.RateLimiter
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(d.CORSOrigins))
	r.Use(middlewares.LoggerMiddleware())
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.RateLimit())
	}
	if d.RequestTimeout > 0 {
		r.Use(middlewares.RequestTimeout(d.RequestTimeout))
	}

	healthCtrl := controllers.NewHealthController(d.DB)
	r.GET("/ping", healthCtrl.Ping)
	r.GET("/healthz", healthCtrl.Healthz)

	publicOrderCtrl := controllers.NewPublicOrderController(d.Orders, d.Payments)
	orderCtrl := controllers.NewOrderController(d.Orders, d.Payments)
	ticketCtrl := controllers.NewKitchenTicketController(d.Orders)
	paymentCtrl := controllers.NewPaymentController(d.Payments)

	public := r.Group("/api/public")
	{
		public.POST("/orders", publicOrderCtrl.CreateOrder)
		public.POST("/orders/:order_id/pay", publicOrderCtrl.PayOrder)
		public.GET("/orders/:order_id", publicOrderCtrl.GetOrder)
	}

	admin := r.Group("/api/admin")
	admin.Use(middlewares.RestaurantAdminAuth(d.Tokens, d.Users))
	admin.Use(middlewares.RoleCheck(models.RoleOwner, models.RoleManager))
	{
		orders := admin.Group("/orders")
		{
			orders.GET("", orderCtrl.GetAllOrders)
			orders.GET("/:order_id", orderCtrl.GetOrderByID)
			orders.PATCH("/:order_id/status", orderCtrl.UpdateOrderStatus)
			orders.POST("/:order_id/mark-paid", orderCtrl.MarkPaid)
		}

		tickets := admin.Group("/kitchen-tickets")
		{
			tickets.GET("", ticketCtrl.GetTickets)
			tickets.PATCH("/:ticket_id/status", ticketCtrl.UpdateTicketStatus)
		}

		admin.GET("/payments/metrics", paymentCtrl.GetPaymentMetrics)
	}

	return r
}
