package main

import (
	"flag"
	"fmt"
	"os"

	"calcio-stop/internal/config"
	"calcio-stop/internal/database"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	format := flag.String("log-format", "console", "log format (json or console)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		return fmt.Errorf("usage: migrate <up|down|version>")
	}

	_ = godotenv.Load()
	logger := config.NewLogger(config.LoggerConfig{Level: "info", Format: *format}, "migrate")

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}

	mg, err := database.NewMigrator(databaseURL, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := mg.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close migrator")
		}
	}()

	switch args[0] {
	case "up":
		return mg.Up()
	case "down":
		return mg.Down()
	case "version":
		version, dirty, ok, err := mg.Version()
		if err != nil {
			return err
		}
		if !ok {
			logger.Info().Msg("no migrations applied yet")
			return nil
		}
		logger.Info().Uint("version", version).Bool("dirty", dirty).Msg("current migration version")
		return nil
	default:
		return fmt.Errorf("unknown command %q (must be up, down, or version)", args[0])
	}
}
