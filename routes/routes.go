package routes

import (
	"net/http"
	"time"

	"carebook/handlers"
	"carebook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterScheduleRoutes registers the provider-facing schedule endpoints.
func RegisterScheduleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/schedule")
	{
		// All schedule management requires provider authentication.
		api.Use(middleware.JWTAuthProviderMiddleware())
		api.GET("/rule", hb.GetRuleHandler)
		api.PUT("/rule", hb.SetRuleHandler)
		api.GET("/slots", hb.GetMonthSlotsHandler)
		api.GET("/slots/date", hb.GetDateSlotsHandler)
		api.PATCH("/custom-slot", hb.CustomSlotHandler)
		api.PATCH("/custom-slot/cancel", hb.CancelCustomSlotHandler)
		api.POST("/leave", hb.SetLeaveHandler)
		api.DELETE("/leave/:date", hb.RemoveLeaveHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints the booking flow calls to lock
// and release slots.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.POST("/lock", hb.LockSlotHandler)
		bookingGroup.POST("/release", hb.ReleaseSlotHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Carebook"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterScheduleRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterHealthRoute(r)
}
