package main

import (
	"context"
	"os"

	"github.com/alimikegami/astromart/config"
	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/infrastructure/database/mongodb"
	"github.com/alimikegami/astromart/internal/infrastructure/markup"
	"github.com/alimikegami/astromart/internal/infrastructure/message-queue/kafka"
	"github.com/alimikegami/astromart/internal/repository"
	"github.com/alimikegami/astromart/internal/seed"
	"github.com/alimikegami/astromart/internal/service"
	"github.com/alimikegami/astromart/internal/store"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	log.Logger = logger
	ctx := logger.WithContext(context.Background())

	config := config.CreateNewConfig()

	db, err := mongodb.ConnectToMongoDB(ctx, config.MongoDBConfig.URI, config.MongoDBConfig.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer db.Client().Disconnect(context.Background())

	if err := mongodb.EnsureSchema(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("Failed to prepare MongoDB collections")
	}

	imageRepo, err := repository.CreateImageRepository(db)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open the image bucket")
	}

	var publisher service.EventPublisher = kafka.DiscardPublisher{}
	if config.KafkaConfig.BrokerAddress != "" {
		conn, err := kafka.CreateKafkaProducer(ctx, config.KafkaConfig)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to connect to the broker")
		}
		kafkaPublisher := kafka.CreatePublisher(conn)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	catalog := store.CreateStore[domain.Product]()
	defer catalog.Close()

	productSvc := service.CreateProductService(repository.CreateProductRepository(db), imageRepo, catalog, publisher, markup.CreateClient(config.MarkupConfig))
	discountSvc := service.CreateDiscountService(repository.CreateDiscountRepository(db))

	if err := seed.Run(ctx, productSvc, discountSvc); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed the database")
	}
}
