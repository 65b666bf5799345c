package main

import (
	"log"
	"os"
	"time"

	"go-hookah-management/controllers"
	middleware "go-hookah-management/middleware"
	routes "go-hookah-management/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	err := godotenv.Load(".env")
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	router := gin.New()
	router.Use(gin.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// The order feed socket and auth endpoints stay outside the token check.
	router.GET("/ws", controllers.HandleWebSocket())
	routes.AuthRoutes(router)

	router.Use(middleware.Authentication())
	routes.UserRoutes(router)
	routes.CustomerRoutes(router)
	routes.OrderRoutes(router)

	router.Run(":" + port)
}
