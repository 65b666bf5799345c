package routes

import (
	controller "go-hookah-management/controllers"

	"github.com/gin-gonic/gin"
)

func UserRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/api/user/add", controller.AddUser())
	incomingRoutes.GET("/api/user", controller.GetUsers())
	incomingRoutes.GET("/api/user/:uuid", controller.GetUser())
	incomingRoutes.PUT("/api/user/:uuid", controller.UpdateUser())
	incomingRoutes.DELETE("/api/user/:uuid", controller.DeleteUser())
}
