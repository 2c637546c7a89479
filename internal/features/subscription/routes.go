package subscription

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches subscription endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticate gin.HandlerFunc) {
	subscribe := router.Group("/courses/:courseId/subscribe")
	subscribe.Use(authenticate)
	subscribe.POST("", handler.Subscribe)
	subscribe.DELETE("", handler.Unsubscribe)

	subs := router.Group("/subscriptions")
	subs.Use(authenticate)
	subs.GET("", handler.List)
}
