package http

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go.ngs.io/geomag-api/internal/logger"
	"go.ngs.io/geomag-api/internal/metrics"
	"go.ngs.io/geomag-api/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(fieldUC *usecase.FieldUseCase) *gin.Engine {

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.AccessMiddleware(logger.L()))
	router.Use(requestMetrics())

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()

	// Get allowed origins from environment variable.
	// Default to allow all origins if not specified.
	allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
	if allowedOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(allowedOrigins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}

	router.Use(cors.New(corsConfig))

	// Create handler.
	handler := NewHandler(fieldUC)

	// API v1 routes.
	v1 := router.Group("/v1")
	v1.GET("/models", handler.GetModels)

	field := v1.Group("/field")
	field.GET("", handler.GetField)
	field.GET("/series", handler.GetSeries)
	field.GET("/grid", handler.GetGrid)

	// Health check.
	router.GET("/health", handler.HealthCheck)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	return router
}

// requestMetrics counts requests per route and status class.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		if endpoint == "/metrics" {
			return
		}
		status := strconv.Itoa(c.Writer.Status()/100) + "xx"
		metrics.RequestsTotal.WithLabelValues(endpoint, status).Inc()
		metrics.RequestDurationMs.WithLabelValues(endpoint).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}
