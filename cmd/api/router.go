package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"busticket-backend/internal/shared/middleware"
	"busticket-backend/internal/shared/response"
	"busticket-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.ClientIPMiddleware(),
	)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthCheckHandler(c))

		setupBookingRoutes(v1, c)
		setupCouponRoutes(v1, c)
		setupPaymentRoutes(v1, c)
		setupTicketRoutes(v1, c)
	}

	return router
}

// ========================================
// BOOKING ROUTES
// ========================================
func setupBookingRoutes(v1 *gin.RouterGroup, c *container.Container) {
	bookings := v1.Group("/bookings")
	bookings.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		bookings.POST("", c.BookingHandler.CreateBooking)
		bookings.GET("/:order_id", c.BookingHandler.GetOrderStatus)
	}
}

// ========================================
// COUPON ROUTES
// ========================================
func setupCouponRoutes(v1 *gin.RouterGroup, c *container.Container) {
	coupons := v1.Group("/coupons")
	coupons.Use(middleware.AuthMiddleware(c.JWTManager))
	{
		coupons.POST("/preview", c.CouponHandler.Preview)
	}
}

// ========================================
// PAYMENT CALLBACK ROUTES
// ========================================
// Public: the gateway authenticates itself with the HMAC signature,
// not a bearer token.
func setupPaymentRoutes(v1 *gin.RouterGroup, c *container.Container) {
	payments := v1.Group("/payments")
	{
		payments.GET("/vnpay/return", c.PaymentHandler.VNPayReturn)
		payments.GET("/vnpay/ipn", c.PaymentHandler.VNPayIPN)
	}
}

// ========================================
// TICKET ROUTES
// ========================================
func setupTicketRoutes(v1 *gin.RouterGroup, c *container.Container) {
	tickets := v1.Group("/tickets")
	{
		// Public lookup, gated by the email+phone double match
		tickets.POST("/lookup", c.TicketHandler.Lookup)

		tickets.GET("/mine", middleware.AuthMiddleware(c.JWTManager), c.TicketHandler.MyTickets)
	}
}

// ========================================
// HEALTH CHECK
// ========================================
func healthCheckHandler(c *container.Container) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		checks := gin.H{
			"database": "ok",
			"redis":    "ok",
		}
		healthy := true

		if err := c.DB.HealthCheck(ctx.Request.Context()); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if err := c.Redis.HealthCheck(ctx.Request.Context()); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		}

		if !healthy {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "checks": checks})
			return
		}
		response.Success(ctx, http.StatusOK, gin.H{"status": "ok", "checks": checks})
	}
}
