package routes

import (
	"log/slog"
	"net/http"

	"hospital-meal-api/handlers"
	"hospital-meal-api/metrics"
	"hospital-meal-api/middleware"

	"github.com/gin-gonic/gin"
)

// NewEngine assembles the router with the full middleware stack.
func NewEngine(h *handlers.Handler, auth *middleware.Auth, m *metrics.Metrics, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger), m.Middleware())

	// CORS middleware for frontend integration
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Request-ID")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "Hospital Meal Ordering API",
			"version": Version,
		})
	})
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// Welcome
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the Hospital Meal Ordering API",
			"docs":    "/api/state-machine",
			"health":  "/health",
			"roles":   []string{"customer", "doctor", "catering", "waiter", "cashier", "admin"},
		})
	})

	SetupRoutes(r, h, auth)
	return r
}

// Version is reported by /health and the version command.
var Version = "1.0.0"
