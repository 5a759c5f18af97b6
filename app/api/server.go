package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// NewServer builds the gin engine with all routes configured. Management
// endpoints live under /api and require the access key when one is set.
func NewServer(handler *Handler, apiAccessKey string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

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

	// CORS for the host UI
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, X-API-Key, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	setupRoutes(r, handler, apiAccessKey)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler, apiAccessKey string) {
	// Widget data endpoints consumed by the host UI
	r.GET("/news", handler.GetNews)
	r.GET("/news/status", handler.GetNewsStatus)
	r.GET("/weather/current", handler.GetCurrentWeather)
	r.GET("/weather/forecast", handler.GetForecast)
	r.GET("/weather/geocode", handler.Geocode)
	r.GET("/widgets", handler.ListWidgets)
	r.GET("/widgets/:id", handler.GetWidgetData)

	// Health and status
	r.GET("/health", handler.HealthCheck)
	r.GET("/stats", handler.GetStats)

	// Management endpoints
	api := r.Group("/api")
	if apiAccessKey != "" {
		api.Use(authMiddleware(apiAccessKey))
	}
	{
		api.GET("/feeds", handler.ListFeeds)
		api.POST("/feeds", handler.AddFeed)
		api.DELETE("/feeds", handler.RemoveFeed)
		api.POST("/news/refresh", handler.RefreshNews)
		api.POST("/news/cache/clear", handler.ClearNewsCache)
		api.PUT("/news/cache/ttl", handler.SetNewsCacheTTL)

		api.GET("/todos", handler.ListTodos)
		api.POST("/todos", handler.AddTodo)
		api.GET("/todos/stats", handler.GetTodoStats)
		api.GET("/todos/categories", handler.GetTodoCategories)
		api.GET("/todos/:id", handler.GetTodo)
		api.PUT("/todos/:id", handler.UpdateTodo)
		api.DELETE("/todos/:id", handler.DeleteTodo)
		api.POST("/todos/:id/complete", handler.CompleteTodo)

		api.POST("/widgets/:id/config", handler.SetWidgetConfig)
	}
}

func authMiddleware(apiAccessKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		providedKey := c.GetHeader("X-API-Key")

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
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			c.Abort()
			return
		}

		c.Next()
	}
}
