package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/middleware"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/migrations"
)

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
	logging.Info().Msg("server stopped")
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: os.Stdout})
	logging.Info().Str("env", string(cfg.Env)).Str("db_driver", cfg.DBDriver).Msg("starting foodgram api")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg)
	if err != nil {
		return err
	}
	if err := database.RunMigrations(db, migrations.FS); err != nil {
		return err
	}

	// Redis is optional; without it tokens cannot be revoked and recipe
	// creation is not rate limited.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg)
		if err != nil {
			logging.Warn().Err(err).Msg("continuing without redis")
			redisClient = nil
		} else {
			defer redisClient.Close()
		}
	}

	images, err := newImageStore(ctx, cfg)
	if err != nil {
		return err
	}

	if err := api.SetupValidator(); err != nil {
		return fmt.Errorf("failed to register validators: %w", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret, cfg.TokenTTL, redisClient)
	userService := service.NewUserService(db, images)
	catalogService := service.NewCatalogService(db)
	recipeService := service.NewRecipeService(db, images, cfg.BaseURL)

	var createLimiter *middleware.RateLimiter
	if redisClient != nil && cfg.RecipeRateLimit > 0 {
		createLimiter = middleware.NewRecipeCreationRateLimiter(redisClient, cfg.RecipeRateLimit)
	}

	handler := router.SetupRouter(cfg, router.Handlers{
		Auth:    api.NewAuthHandler(authService),
		Users:   api.NewUserHandler(authService, userService, cfg.PageSize),
		Catalog: api.NewCatalogHandler(catalogService),
		Recipes: api.NewRecipeHandler(recipeService, authService, createLimiter, cfg.PageSize),
		Health:  api.NewHealthHandler(db),
	})

	return server.New(cfg, handler).Start(ctx)
}

func newImageStore(ctx context.Context, cfg *config.Config) (service.ImageStore, error) {
	if cfg.MediaBackend == "s3" {
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("bucket", s3cfg.BucketName).Msg("storing images in s3")
		return service.NewS3ImageStore(s3cfg), nil
	}
	logging.Info().Str("root", cfg.MediaRoot).Msg("storing images on local disk")
	return service.NewLocalImageStore(cfg.MediaRoot, cfg.BaseURL), nil
}
