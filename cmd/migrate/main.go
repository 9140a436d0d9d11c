package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/tempoworks/tempo-backend/pkg/config"
	"github.com/tempoworks/tempo-backend/pkg/logger"
)

func main() {
	dir := flag.String("dir", "./migrations", "migrations directory")
	command := flag.String("command", "up", "goose command: up, down, status")
	flag.Parse()

	cfg, err := config.Load("timesheet-service")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New("migrate", cfg.Server.Environment)

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	switch *command {
	case "up":
		err = goose.Up(db, *dir)
	case "down":
		err = goose.Down(db, *dir)
	case "status":
		err = goose.Status(db, *dir)
	default:
		log.Fatal().Str("command", *command).Msg("unknown command")
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", *command).Msg("migration failed")
	}

	log.Info().Str("command", *command).Msg("migrations complete")
}
