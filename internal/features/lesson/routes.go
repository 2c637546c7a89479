package lesson

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches lesson endpoints to the router. Collection routes
// nest under the owning course; item routes are flat.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticate gin.HandlerFunc) {
	courseLessons := router.Group("/courses/:courseId/lessons")
	courseLessons.Use(authenticate)
	courseLessons.GET("", handler.ListByCourse)
	courseLessons.POST("", handler.Create)

	lessons := router.Group("/lessons")
	lessons.Use(authenticate)
	lessons.GET("/:lessonId", handler.GetByID)
	lessons.PUT("/:lessonId", handler.Update)
	lessons.PATCH("/:lessonId", handler.Update)
	lessons.DELETE("/:lessonId", handler.Delete)
}
