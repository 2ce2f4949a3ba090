package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
)

const (
	ProductsCollection  = "products"
	CartsCollection     = "carts"
	DiscountsCollection = "discounts"
	OrdersCollection    = "orders"
	ImagesBucket        = "images"
)

const writeConflictCode = 112

// ConnectToMongoDB connects with driver retries disabled. Order placement
// conflicts are reported to the caller instead of being replayed.
func ConnectToMongoDB(ctx context.Context, uri string, dbName string) (*mongo.Database, error) {
	clientOptions := options.Client().
		ApplyURI(uri).
		SetMonitor(otelmongo.NewMonitor()).
		SetRetryWrites(false).
		SetRetryReads(false).
		SetConnectTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return nil, err
	}

	return client.Database(dbName), nil
}

// EnsureSchema creates the collections and indexes the service relies on.
// Collections cannot be created implicitly inside a transaction.
func EnsureSchema(ctx context.Context, db *mongo.Database) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return err
	}

	present := make(map[string]bool, len(existing))
	for _, name := range existing {
		present[name] = true
	}

	for _, name := range []string{ProductsCollection, CartsCollection, DiscountsCollection, OrdersCollection} {
		if present[name] {
			continue
		}

		if err := db.CreateCollection(ctx, name); err != nil {
			return err
		}
		log.Info().Str("component", "EnsureSchema").Str("collection", name).Msg("created collection")
	}

	_, err = db.Collection(OrdersCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "number", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	})

	return err
}

// IsWriteConflict reports whether err is the server rejecting a transaction
// because another writer touched the same document.
func IsWriteConflict(err error) bool {
	var serverErr mongo.ServerError
	if !errors.As(err, &serverErr) {
		return false
	}

	return serverErr.HasErrorCode(writeConflictCode) || serverErr.HasErrorLabel("TransientTransactionError")
}
