package routes

import (
	controller "go-hookah-management/controllers"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(incomingRoutes *gin.Engine) {
	incomingRoutes.POST("/api/auth/signup", controller.SignUp())
	incomingRoutes.POST("/api/auth/login", controller.Login())
	incomingRoutes.GET("/api/auth/getlist", controller.GetList())
}
