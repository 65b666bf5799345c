package routes

import (
	controller "go-hookah-management/controllers"

	"github.com/gin-gonic/gin"
)

func CustomerRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/api/customer/add", controller.CreateCustomer())
	incomingRoutes.GET("/api/customer", controller.GetCustomers())
	incomingRoutes.GET("/api/customer/:id", controller.GetCustomer())
	incomingRoutes.PUT("/api/customer/:id", controller.UpdateCustomer())
	incomingRoutes.DELETE("/api/customer/:id", controller.DeleteCustomer())
}
