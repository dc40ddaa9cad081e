package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/stemsi/clinsim-backend/internal/config"
	"github.com/stemsi/clinsim-backend/internal/handler"
	"github.com/stemsi/clinsim-backend/internal/middleware"
	"github.com/stemsi/clinsim-backend/internal/response"
)

// scenarioCacheSeconds is how long clients may cache the scenario catalog.
const scenarioCacheSeconds = 300

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Simulation   *handler.SimulationHandler
	Notification *handler.NotificationHandler
	WS           *handler.WSHandler
	System       *handler.SystemHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// limiter may be nil to disable rate limiting.
func SetupRouter(handlers *Handlers, limiter *middleware.RateLimiter, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Only mutations are rate limited.
	mutate := []gin.HandlerFunc{}
	if limiter != nil {
		mutate = append(mutate, limiter.Middleware())
	}
	limited := func(h gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, mutate...), h)
	}

	// ─── 1. Simulation API ─────────────────────────────────────────────
	api := router.Group("/api/v1/simulations")
	api.Use(middleware.Brotli())
	{
		api.GET("/health", handlers.System.Health)
		api.GET("/scenarios", middleware.CacheControl(scenarioCacheSeconds), handlers.Simulation.ListScenarios)

		api.POST("/start", limited(handlers.Simulation.StartSimulation)...)
		api.POST("/action", limited(handlers.Simulation.TakeAction)...)
		api.POST("/decision", limited(handlers.Simulation.MakeDecision)...)
		api.POST("/complete", limited(handlers.Simulation.CompleteSimulation)...)

		students := api.Group("/students/:student_id")
		{
			students.GET("/active", handlers.Simulation.GetActiveSession)
			students.GET("/history", handlers.Simulation.GetHistory)
			students.GET("/notifications", handlers.Notification.ListNotifications)
			students.POST("/notifications/:notification_id/read", limited(handlers.Notification.MarkRead)...)
		}
	}

	// ─── 2. WebSocket Group ────────────────────────────────────────────
	// Brotli is not applied here; it would wrap the hijacked connection.
	ws := router.Group("/ws/v1")
	{
		ws.GET("/simulations/:student_id/stream", handlers.WS.SimulationStream)
	}

	router.NoRoute(func(c *gin.Context) {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	})

	return router
}
