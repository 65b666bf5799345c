package routes

import (
	controller "go-hookah-management/controllers"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/api/order", controller.CreateOrder())
	incomingRoutes.GET("/api/order", controller.GetOrders())
	incomingRoutes.GET("/api/order/count", controller.GetOrderStatusCounts())
	incomingRoutes.GET("/api/order/by-uuid/:uuid", controller.GetOrdersByStaffUuid())
	incomingRoutes.GET("/api/order/:id", controller.GetOrder())
	incomingRoutes.PUT("/api/order/:id/status", controller.UpdateOrderStatus())
	incomingRoutes.POST("/api/order/startOrder", controller.StartOrder())
	incomingRoutes.POST("/api/order/updateOrder", controller.UpdateOrder())
}
