// Command seed loads the development fixtures or wipes them.
//
//	seed --import
//	seed --delete
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"tours-backend/internal/config"
	"tours-backend/internal/infrastructure/database"
	"tours-backend/pkg/logger"
)

// passwordCost matches the bcrypt cost the auth service hashes with.
const passwordCost = 12

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	doImport := pflag.Bool("import", false, "insert users, tours and reviews")
	doDelete := pflag.Bool("delete", false, "delete all users, tours and reviews")
	pflag.Parse()

	if *doImport == *doDelete {
		pflag.Usage()
		os.Exit(2)
	}

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load database config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if *doDelete {
		if err := deleteData(ctx, db.Pool); err != nil {
			log.Fatal().Err(err).Msg("delete failed")
		}
		log.Info().Msg("Data successfully deleted.")
		return
	}

	ds, err := load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid seed data")
	}
	if err := importData(ctx, db.Pool, ds, passwordCost); err != nil {
		log.Fatal().Err(err).Msg("import failed")
	}
	log.Info().
		Int("users", len(ds.users)).
		Int("tours", len(ds.tours)).
		Int("reviews", len(ds.reviews)).
		Msg("Data successfully loaded.")
}
