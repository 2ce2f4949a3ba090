package repository

import (
	"context"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/infrastructure/database/mongodb"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBDiscountRepositoryImpl struct {
	db *mongo.Database
}

func CreateDiscountRepository(db *mongo.Database) DiscountRepository {
	return &MongoDBDiscountRepositoryImpl{db: db}
}

func (r *MongoDBDiscountRepositoryImpl) AddDiscount(ctx context.Context, data domain.Discount) (err error) {
	_, err = r.db.Collection(mongodb.DiscountsCollection).InsertOne(ctx, data)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errs.ErrConflict
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "AddDiscount").Msg("")
	}

	return
}

func (r *MongoDBDiscountRepositoryImpl) GetDiscountByCode(ctx context.Context, code string) (data domain.Discount, err error) {
	err = r.db.Collection(mongodb.DiscountsCollection).FindOne(ctx, bson.D{{Key: "_id", Value: code}}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return data, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetDiscountByCode").Msg("")
	}

	return
}

func (r *MongoDBDiscountRepositoryImpl) GetDiscounts(ctx context.Context) (data []domain.Discount, err error) {
	cursor, err := r.db.Collection(mongodb.DiscountsCollection).Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetDiscounts").Msg("")
		return
	}

	data = []domain.Discount{}
	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetDiscounts").Msg("")
	}

	return
}

func (r *MongoDBDiscountRepositoryImpl) DeleteDiscount(ctx context.Context, code string) (err error) {
	result, err := r.db.Collection(mongodb.DiscountsCollection).DeleteOne(ctx, bson.D{{Key: "_id", Value: code}})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteDiscount").Msg("")
		return
	}

	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return
}
