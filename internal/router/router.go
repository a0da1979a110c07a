package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pakodev28/foodgram-project-react/config"
	"github.com/pakodev28/foodgram-project-react/internal/api"
	"github.com/pakodev28/foodgram-project-react/internal/middleware"
)

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, deps api.Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), middleware.Recovery())
	router.Use(middleware.CORS(cfg.CORSOrigins))

	// uploaded images are served from disk unless they live in S3
	if cfg.S3BucketName == "" && cfg.MediaDir != "" {
		router.Static(cfg.MediaURL, cfg.MediaDir)
	}

	api.RegisterRoutes(router, deps)
	router.NoRoute(middleware.NotFound())

	return router
}
