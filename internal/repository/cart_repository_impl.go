package repository

import (
	"context"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/infrastructure/database/mongodb"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBCartRepositoryImpl struct {
	db *mongo.Database
}

func CreateCartRepository(db *mongo.Database) CartRepository {
	return &MongoDBCartRepositoryImpl{db: db}
}

// GetCart returns an empty cart for users that have never added anything.
func (r *MongoDBCartRepositoryImpl) GetCart(ctx context.Context, userID string) (cart domain.Cart, err error) {
	err = r.db.Collection(mongodb.CartsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&cart)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return domain.Cart{UserID: userID, Items: []domain.CartItem{}}, nil
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetCart").Msg("")
		return
	}

	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	return cart, nil
}

// UpsertCart replaces the stored item list wholesale.
func (r *MongoDBCartRepositoryImpl) UpsertCart(ctx context.Context, cart domain.Cart) (err error) {
	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}

	_, err = r.db.Collection(mongodb.CartsCollection).ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: cart.UserID}},
		cart,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpsertCart").Msg("")
	}

	return
}
