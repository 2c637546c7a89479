package course

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches course endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticate gin.HandlerFunc) {
	courses := router.Group("/courses")
	courses.Use(authenticate)

	courses.GET("", handler.List)
	courses.POST("", handler.Create)
	courses.GET("/:courseId", handler.GetByID)
	courses.PUT("/:courseId", handler.Update)
	courses.PATCH("/:courseId", handler.Update)
	courses.DELETE("/:courseId", handler.Delete)
}
