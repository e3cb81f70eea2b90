package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/middleware"
)

// Handlers groups the API handlers mounted under /api
type Handlers struct {
	Auth    *api.AuthHandler
	Users   *api.UserHandler
	Catalog *api.CatalogHandler
	Recipes *api.RecipeHandler
	Health  *api.HealthHandler
}

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	if cfg.Env.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.RequestLogger(),
		middleware.Metrics(),
		middleware.CORS(cfg.AllowedOrigins),
	)

	// Operational endpoints
	router.GET("/health", h.Health.Health)
	router.GET("/api/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if cfg.MediaBackend == "local" {
		router.Static("/media", cfg.MediaRoot)
	}

	v := router.Group("/api")
	h.Auth.RegisterRoutes(v)
	h.Users.RegisterRoutes(v)
	h.Catalog.RegisterRoutes(v)
	h.Recipes.RegisterRoutes(v)

	return router
}
