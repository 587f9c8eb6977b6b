package api

import (
	"github.com/gin-gonic/gin"
	"github.com/liliang-cn/chatspark/internal/api/middleware"
	"github.com/liliang-cn/chatspark/internal/api/widget"
)

// RouterConfig holds configuration for the router
type RouterConfig struct {
	APIKey       string
	AllowOrigins []string
}

// SetupRouter sets up the Gin router
func SetupRouter(widgetHandler *widget.Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(middleware.CORS(cfg.AllowOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Widget API; API key auth is a no-op when unconfigured
	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.Auth(cfg.APIKey))
	widgetHandler.RegisterRoutes(apiGroup)

	return r
}
