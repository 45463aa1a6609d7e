package routes

import (
	"net/http"
	"os"

	"github.com/alimranakash/visor-selection-api/internal/handlers"
	"github.com/alimranakash/visor-selection-api/internal/middleware"
	"github.com/gin-gonic/gin"
)

// CORSMiddleware allows the storefront frontend to call the selector API.
// The allowed origin is configurable so staging and production storefronts
// can share the build.
func CORSMiddleware() gin.HandlerFunc {
	origin := os.Getenv("CORS_ALLOW_ORIGIN")
	if origin == "" {
		origin = "http://localhost:5173"
	}

	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// SetupRouter wires all routes.
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()
	router.Use(CORSMiddleware())

	v1 := router.Group("/v1")
	{
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		v1.POST("/login", h.AdminLogin)

		// --- Selector Routes (Public) ---
		selector := v1.Group("/selector")
		{
			selector.GET("/catalog", h.GetCatalog)
			selector.POST("/sessions", h.CreateSession)
			selector.GET("/sessions/:id", h.GetSession)
			selector.POST("/sessions/:id/make", h.ChooseMake)
			selector.POST("/sessions/:id/model", h.ChooseModel)
			selector.POST("/sessions/:id/pack", h.ChoosePack)
			selector.POST("/sessions/:id/battery-colour", h.ChooseBatteryColour)
			selector.POST("/sessions/:id/extras", h.ToggleExtra)
			selector.DELETE("/sessions/:id/extras", h.ClearExtras)
			selector.POST("/sessions/:id/reset", h.ResetSession)
			selector.POST("/sessions/:id/submit", h.Submit)
		}

		// --- Admin Routes (JWT Required) ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AdminAuthMiddleware())
		{
			admin.GET("/settings", h.GetSettings)
			admin.PATCH("/settings", h.UpdateSettings)
			admin.GET("/catalog/cache", h.GetCacheStatus)
			admin.DELETE("/catalog/cache", h.ClearCache)
		}
	}

	return router
}
