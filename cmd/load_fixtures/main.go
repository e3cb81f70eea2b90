// Command load_fixtures imports ingredient or tag fixtures from a JSON file.
//
//	load_fixtures -kind ingredients data/ingredients.json
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
	kind := flag.String("kind", "ingredients", "Fixture kind: ingredients or tags")
	flag.Parse()

	logging.Init(logging.Config{Level: "info", Format: "console", Output: os.Stderr})

	if flag.NArg() != 1 {
		logging.Fatal().Msg("usage: load_fixtures [-kind ingredients|tags] <file.json>")
	}
	path := flag.Arg(0)

	load := seed.LoadIngredients
	switch *kind {
	case "ingredients":
	case "tags":
		load = seed.LoadTags
	default:
		logging.Fatal().Str("kind", *kind).Msg("unknown fixture kind")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	db, err := database.New(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, migrations.FS); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	f, err := os.Open(path)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open fixture file")
	}
	defer f.Close()

	created, err := load(context.Background(), db, f)
	if err != nil {
		logging.Fatal().Err(err).Str("file", path).Msg("failed to load fixtures")
	}
	logging.Info().Int64("created", created).Str("kind", *kind).Str("file", path).Msg("fixtures loaded")
}
