package payment

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches payment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authenticate gin.HandlerFunc) {
	payments := router.Group("/payments")
	payments.Use(authenticate)

	payments.GET("", handler.List)
	payments.POST("", handler.Create)
	payments.GET("/:paymentId", handler.GetByID)
	payments.PUT("/:paymentId", handler.Update)
	payments.PATCH("/:paymentId", handler.Update)
	payments.DELETE("/:paymentId", handler.Delete)
}
