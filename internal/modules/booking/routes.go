package booking

import (
	"roombooking/internal/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the booking endpoints on an authenticated group.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup) {
	bookings := protected.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("/my", h.GetMyBookings)
		bookings.GET("/available", h.GetDayView)
		bookings.GET("/:id", h.GetBooking)
		bookings.PATCH("/:id", h.UpdateBooking)
		bookings.DELETE("/:id", h.CancelBooking)
	}

	admin := bookings.Group("", middleware.AdminOnly())
	{
		admin.GET("", h.ListBookings)
		admin.GET("/export", h.Export)
		admin.PATCH("/:id/status", h.UpdateStatus)
	}
}
