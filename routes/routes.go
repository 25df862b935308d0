package routes

import (
	"net/http"
	"time"

	"asap/handlers"
	"asap/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCheckoutRoutes sets up the endpoints for the checkout saga.
func RegisterCheckoutRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	checkout := r.Group("/api/checkout")
	{
		checkout.POST("", hb.Checkout.StartCheckout)
		checkout.POST("/:checkoutID/callback", hb.Checkout.GatewayCallback)
		checkout.GET("/:checkoutID", hb.Checkout.GetCheckout)
	}
}

// RegisterOperatorRoutes sets up endpoints for the operator booking console.
func RegisterOperatorRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	operator := r.Group("/api/operator")
	{
		operator.Use(middleware.OperatorAuthMiddleware())
		operator.GET("/bookings", hb.Operator.ListBookings)
		operator.PUT("/bookings/:id/status", hb.Operator.AdvanceBooking)
		operator.PUT("/bookings/:id/cancel", hb.Operator.CancelBooking)
		operator.PUT("/bookings/:id/review", hb.Operator.AttachReview)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm ASAP"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterCheckoutRoutes(r, hb)
	RegisterOperatorRoutes(r, hb)
}
