// Command migrate applies the embedded goose migrations.
//
//	migrate [--verbose] [up|down|status|redo|version|reset]
package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"tours-backend/internal/config"
	"tours-backend/internal/infrastructure/database/migrations"
	"tours-backend/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"))

	verbose := pflag.BoolP("verbose", "v", false, "log every statement goose runs")
	pflag.Parse()

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("goose: failed to load database config")
	}

	db, err := sql.Open("postgres", dbConfig.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("goose: failed to open DB")
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error().Err(err).Msg("goose: failed to close DB")
		}
	}()

	goose.SetBaseFS(migrations.FS)
	goose.SetVerbose(*verbose)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal().Err(err).Msg("goose: dialect")
	}

	arguments := pflag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := goose.Run(command, db, ".", args...); err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("goose failed")
	}

	fmt.Printf("goose %s success\n", command)
}
