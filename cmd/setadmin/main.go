package main

import (
	"context"
	"flag"
	"os"

	"github.com/alimikegami/astromart/config"
	postgresDriver "github.com/alimikegami/astromart/internal/infrastructure/database/postgres"
	"github.com/alimikegami/astromart/internal/repository"
	"github.com/alimikegami/astromart/internal/service"
	"github.com/alimikegami/astromart/migrations"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	email := flag.String("email", "", "email of the account to promote")
	flag.Parse()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger
	ctx := logger.WithContext(context.Background())

	if *email == "" {
		logger.Fatal().Msg("-email is required")
	}

	config := config.CreateNewConfig()

	db, err := postgresDriver.GetDBInstance(config.PostgreSQLConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()

	if err := postgresDriver.Migrate(db, migrations.FS); err != nil {
		logger.Fatal().Err(err).Msg("Failed to migrate the database")
	}

	svc := service.CreateUserService(repository.CreateUserRepository(db), *config)
	if err := svc.GrantAdminByEmail(ctx, *email); err != nil {
		logger.Fatal().Err(err).Str("email", *email).Msg("Failed to grant the admin role")
	}

	logger.Info().Str("email", *email).Msg("admin role granted, the user must log in again for it to take effect")
}
