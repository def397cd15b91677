package routes

import (
	"staynest/handlers"
	"staynest/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the cancellation endpoints on the router.
func RegisterRoutes(router *gin.Engine, cancelHandler *handlers.CancellationHandler) {
	authed := router.Group("/")
	authed.Use(middleware.JWTAuthMiddleware())
	{
		authed.POST("/bookings/:id/cancel", cancelHandler.CancelBooking)
		authed.GET("/listings/:id/availability", cancelHandler.CheckAvailability)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.JWTAuthMiddleware(), middleware.AdminOnlyMiddleware())
	{
		admin.POST("/cancellations/:id/resume", cancelHandler.ResumeCancellation)
	}
}
