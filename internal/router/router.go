package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/dig"

	"hotel-faq/internal/handler"
	"hotel-faq/internal/middleware"
)

// RouterParams collects the handlers the router wires routes to.
type RouterParams struct {
	dig.In

	ChatHandler   *handler.ChatHandler
	SystemHandler *handler.SystemHandler
}

// NewRouter builds the gin engine: CORS, request-ID/logging/recovery/error
// middleware, tracing, then the chat/hotels/system/health surface.
func NewRouter(params RouterParams) *gin.Engine {
	r := gin.New()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.TracingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/api/v1")
	{
		RegisterChatRoutes(v1, params.ChatHandler)
		RegisterSystemRoutes(v1, params.SystemHandler)
	}

	return r
}

// RegisterChatRoutes registers the hotel-FAQ chat surface.
func RegisterChatRoutes(r *gin.RouterGroup, h *handler.ChatHandler) {
	r.POST("/chat", h.Chat)
	r.GET("/hotels", h.ListHotels)
}

// RegisterSystemRoutes registers system information routes.
func RegisterSystemRoutes(r *gin.RouterGroup, h *handler.SystemHandler) {
	systemRoutes := r.Group("/system")
	{
		systemRoutes.GET("/info", h.GetSystemInfo)
	}
}
