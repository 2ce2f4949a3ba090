package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alimikegami/astromart/config"
	"github.com/alimikegami/astromart/internal/app"
	"github.com/alimikegami/astromart/internal/infrastructure/database/mongodb"
	postgresDriver "github.com/alimikegami/astromart/internal/infrastructure/database/postgres"
	"github.com/alimikegami/astromart/migrations"
	"github.com/rs/zerolog/log"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := config.CreateNewConfig()

	mongoDB, err := mongodb.ConnectToMongoDB(ctx, config.MongoDBConfig.URI, config.MongoDBConfig.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer mongoDB.Client().Disconnect(context.Background())

	if err := mongodb.EnsureSchema(ctx, mongoDB); err != nil {
		log.Fatal().Err(err).Msg("Failed to prepare MongoDB collections")
	}

	db, err := postgresDriver.GetDBInstance(config.PostgreSQLConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to the database")
	}
	defer db.Close()

	if err := postgresDriver.Migrate(db, migrations.FS); err != nil {
		log.Fatal().Err(err).Msg("Failed to migrate the database")
	}

	server := app.App{
		Mongo:  mongoDB,
		DB:     db,
		Config: config,
	}

	server.Start(ctx)
}
