package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/pakodev28/foodgram-project-react/config"
	"github.com/pakodev28/foodgram-project-react/internal/api"
	"github.com/pakodev28/foodgram-project-react/internal/database"
	"github.com/pakodev28/foodgram-project-react/internal/middleware"
	"github.com/pakodev28/foodgram-project-react/internal/router"
	"github.com/pakodev28/foodgram-project-react/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *gorm.DB
	redis  *redis.Client
}

// New wires services and handlers. Redis is optional: without it there is
// no rate limiting and logout does not revoke tokens.
func New(ctx context.Context, cfg *config.Config, db *gorm.DB) (*Server, error) {
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis, rate limiting and token revocation are disabled: %v", err)
		redisClient = nil
	}

	var denylist service.TokenDenylist
	var creationLimiter, modificationLimiter *middleware.RateLimiter
	if redisClient != nil {
		denylist = service.NewRedisTokenDenylist(redisClient, cfg.RedisKeyPrefix)
		creationLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RedisKeyPrefix, cfg.RecipeCreateLimit)
		modificationLimiter = middleware.NewRecipeModificationRateLimiter(redisClient, cfg.RedisKeyPrefix, cfg.RecipeUpdateLimit)
	}

	store, err := service.NewImageStore(ctx, cfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		return nil, fmt.Errorf("failed to configure image storage: %w", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, denylist)
	deps := api.Dependencies{
		DB:            db,
		Auth:          authService,
		Users:         service.NewUserService(db),
		Recipes:       service.NewRecipeService(db, service.NewImageService(store)),
		Tags:          service.NewTagService(db),
		Ingredients:   service.NewIngredientService(db),
		CreateLimiter: creationLimiter,
		UpdateLimiter: modificationLimiter,
		PageSize:      cfg.PageSize,
	}

	r := router.SetupRouter(cfg, deps)
	return &Server{
		router: r,
		db:     db,
		redis:  redisClient,
		http: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	log.Printf("Listening on %s", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases connections
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	if s.redis != nil {
		if cerr := s.redis.Close(); cerr != nil {
			log.Printf("Failed to close Redis client: %v", cerr)
		}
	}
	if sqlDB, derr := s.db.DB(); derr == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("Failed to close database: %v", cerr)
		}
	}
	return err
}
