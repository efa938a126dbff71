package room

import (
	"roombooking/internal/middleware"

	"github.com/gin-gonic/gin"
)

func (h *Handler) RegisterPublicRoutes(v1 *gin.RouterGroup) {
	rooms := v1.Group("/rooms")
	{
		rooms.GET("", h.List)
		rooms.GET("/:id", h.Get)
	}
}

// RegisterAdminRoutes expects a group that already runs JWTAuth.
func (h *Handler) RegisterAdminRoutes(protected *gin.RouterGroup) {
	rooms := protected.Group("/rooms")
	rooms.Use(middleware.AdminOnly())
	{
		rooms.POST("", h.Create)
		rooms.PUT("/:id", h.Update)
		rooms.DELETE("/:id", h.Delete)
	}
}
