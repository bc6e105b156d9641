package api

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewServer creates the HTTP server with all routes configured
func NewServer(handler *Handler, apiAccessKey string, version string) *gin.Engine {
	// Set Gin mode (can be controlled via GIN_MODE environment variable)
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// Middleware
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware for API endpoints
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey, version)

	return r
}

// setupRoutes configures all the application routes
func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string, version string) {
	r.GET("/health", handler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	// Read endpoints are always available
	api.GET("/discover", handler.GetDiscover)
	api.GET("/recent", handler.GetRecent)
	api.GET("/batch-progress/:batch_id", handler.GetBatchProgress)
	api.GET("/results/:video_id", handler.GetResults)
	api.GET("/analyses", handler.GetAnalyses)
	api.GET("/analyses/recent", handler.GetRecentAnalyses)

	// Mutating endpoints sit behind the API key when one is configured
	mutating := api.Group("")
	if apiAccessKey != "" {
		mutating.Use(authMiddleware(apiAccessKey))
		log.Printf("API authentication enabled for analysis endpoints")
	} else {
		log.Printf("API authentication disabled (API_ACCESS_KEY not set)")
	}
	mutating.POST("/batch-analyze", handler.PostBatchAnalyze)
	mutating.POST("/batch-analyze/videos", handler.PostBatchAnalyzeVideos)
	mutating.POST("/analyze", handler.PostAnalyze)
	mutating.POST("/reanalyze/:video_id", handler.PostReanalyze)
	mutating.POST("/reanalyze-failed", handler.PostReanalyzeFailed)
	mutating.POST("/analyze-unanalyzed", handler.PostAnalyzeUnanalyzed)

	// Root endpoint with basic information
	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "PodLens",
			"version":     version,
			"description": "Batch YouTube video analysis with AI-generated summaries",
			"endpoints": map[string]string{
				"discover":         "/api/discover?days_back=<n>",
				"recent":           "/api/recent?limit=<n>",
				"batch_analyze":    "/api/batch-analyze (POST)",
				"batch_videos":     "/api/batch-analyze/videos (POST)",
				"batch_progress":   "/api/batch-progress/<batch_id>",
				"analyze":          "/api/analyze (POST)",
				"results":          "/api/results/<video_id>",
				"analyses":         "/api/analyses?channel_id=&page=&page_size=",
				"analyses_recent":  "/api/analyses/recent?days=<n>",
				"reanalyze":        "/api/reanalyze/<video_id> (POST)",
				"reanalyze_failed": "/api/reanalyze-failed (POST)",
				"health":           "/health",
				"metrics":          "/metrics",
			},
			"api_status": map[string]interface{}{
				"auth_required": apiAccessKey != "",
				"header":        "X-API-Key",
			},
		})
	})

	// Favicon handler (return 204 to avoid 404s)
	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}

// authMiddleware creates authentication middleware for analysis endpoints
func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

		// Also check Authorization header with Bearer prefix
		if providedKey == "" {
			authHeader := c.GetHeader("Authorization")
			if strings.HasPrefix(authHeader, "Bearer ") {
				providedKey = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if providedKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "API key required",
				"message": "Provide API key in X-API-Key header or Authorization: Bearer <key>",
			})
			c.Abort()
			return
		}

		if providedKey != apiAccessKey {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid API key",
				"message": "The provided API key is not valid",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
