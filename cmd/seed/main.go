// Command seed fills a development database with demo users and recipes.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/seed"
	"github.com/pageza/foodgram/backend/migrations"
)

func main() {
	defaults := seed.DefaultOptions()

	// Parse command line flags
	users := flag.Int("users", defaults.Users, "Number of users to create")
	recipes := flag.Int("recipes", defaults.RecipesPerUser, "Recipes to create per user")
	ingredients := flag.Int("ingredients", defaults.Ingredients, "Minimum number of ingredients")
	clean := flag.Bool("clean", false, "Delete all data before seeding")
	seedValue := flag.Int64("seed", 0, "Random seed, 0 for random data")
	fast := flag.Bool("fast", false, "Hash demo passwords with the minimum bcrypt cost")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console", Output: os.Stderr})

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	if cfg.Env.IsProduction() {
		logging.Fatal().Msg("refusing to seed a production database")
	}

	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, migrations.FS); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	_, err = seed.NewSeeder(db).Run(context.Background(), seed.Options{
		Users:          *users,
		RecipesPerUser: *recipes,
		Ingredients:    *ingredients,
		Clean:          *clean,
		Seed:           *seedValue,
		FastHash:       *fast,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("seeding failed")
	}
	logging.Info().Str("password", seed.DemoPassword).Msg("demo users can log in with this password")
}
