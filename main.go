package main

import (
	"log"
	"net/http"
	"os"

	"restaurant-pos/config"
	"restaurant-pos/middleware"
	"restaurant-pos/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	// Set Gin mode
	mode := os.Getenv("GIN_MODE")
	if mode == "" {
		gin.SetMode(gin.DebugMode)
	}

	cfg := config.Load()
	db := config.OpenDB(cfg)

	// Create Gin router with default middleware (logger + recovery)
	r := gin.Default()
	r.Use(middleware.CORS())

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Restaurant POS",
			"version": "1.0.0",
		})
	})

	// Register all routes and start the broadcast hub
	hub := routes.SetupRoutes(r, db)
	go hub.Run()

	log.Printf("Server running on http://localhost:%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
