package user

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches user endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticate gin.HandlerFunc) {
	users := router.Group("/users")
	users.Use(authenticate)

	users.GET("", handler.List)
	users.GET("/me", handler.Me)
	users.PUT("/me", handler.UpdateMe)
	users.PATCH("/me", handler.UpdateMe)
	users.GET("/:userId", handler.GetByID)
	users.PUT("/:userId", handler.Update)
	users.PATCH("/:userId", handler.Update)
	users.DELETE("/:userId", handler.Delete)
}
