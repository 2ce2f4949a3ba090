package repository

import (
	"context"
	"fmt"
	"regexp"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/infrastructure/database/mongodb"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDBProductRepositoryImpl struct {
	db *mongo.Database
}

func CreateProductRepository(db *mongo.Database) ProductRepository {
	return &MongoDBProductRepositoryImpl{db: db}
}

func (r *MongoDBProductRepositoryImpl) collection() *mongo.Collection {
	return r.db.Collection(mongodb.ProductsCollection)
}

func parseObjectID(id string) (primitive.ObjectID, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return objectID, fmt.Errorf("%w: malformed id %q", errs.ErrNotFound, id)
	}

	return objectID, nil
}

func productFilter(filter pkgdto.Filter) bson.D {
	query := bson.D{}
	if filter.Q != "" {
		query = append(query, bson.E{Key: "name", Value: primitive.Regex{Pattern: regexp.QuoteMeta(filter.Q), Options: "i"}})
	}

	if len(filter.ProductIds) > 0 {
		ids := make([]primitive.ObjectID, 0, len(filter.ProductIds))
		for _, id := range filter.ProductIds {
			if objectID, err := primitive.ObjectIDFromHex(id); err == nil {
				ids = append(ids, objectID)
			}
		}
		query = append(query, bson.E{Key: "_id", Value: bson.D{{Key: "$in", Value: ids}}})
	}

	return query
}

func (r *MongoDBProductRepositoryImpl) AddProduct(ctx context.Context, data domain.Product) (id primitive.ObjectID, err error) {
	result, err := r.collection().InsertOne(ctx, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddProduct").Msg("")
		return
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoDBProductRepositoryImpl) GetProducts(ctx context.Context, filter pkgdto.Filter) (data []domain.Product, err error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	if filter.Limit != 0 && filter.Page != 0 {
		opts = opts.SetSkip(filter.Offset()).SetLimit(int64(filter.Limit))
	}

	cursor, err := r.collection().Find(ctx, productFilter(filter), opts)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return
	}

	data = []domain.Product{}
	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetProducts").Msg("")
		return
	}

	return data, nil
}

func (r *MongoDBProductRepositoryImpl) CountProducts(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	count, err = r.collection().CountDocuments(ctx, productFilter(filter))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "CountProducts").Msg("")
	}

	return
}

func (r *MongoDBProductRepositoryImpl) GetProductByID(ctx context.Context, id string) (product domain.Product, err error) {
	productID, err := parseObjectID(id)
	if err != nil {
		return
	}

	err = r.collection().FindOne(ctx, bson.D{{Key: "_id", Value: productID}}).Decode(&product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return product, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetProductByID").Msg("")
		return product, err
	}

	return product, nil
}

func (r *MongoDBProductRepositoryImpl) UpdateProduct(ctx context.Context, data domain.Product) (err error) {
	filter := bson.D{{Key: "_id", Value: data.ID}}

	set := bson.D{
		{Key: "name", Value: data.Name},
		{Key: "price", Value: data.Price},
		{Key: "description", Value: data.Description},
		{Key: "quantity_in_stock", Value: data.QuantityInStock},
		{Key: "is_available", Value: data.IsAvailable},
		{Key: "sale_percentage", Value: data.SalePercentage},
		{Key: "body", Value: data.Body},
		{Key: "updated_at", Value: data.UpdatedAt},
	}
	update := bson.D{
		{Key: "$set", Value: set},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateProduct").Msg("Failed to update product")
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *MongoDBProductRepositoryImpl) DeleteProduct(ctx context.Context, id string) (err error) {
	productID, err := parseObjectID(id)
	if err != nil {
		return
	}

	result, err := r.collection().DeleteOne(ctx, bson.D{{Key: "_id", Value: productID}})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteProduct").Msg("")
		return
	}

	if result.DeletedCount == 0 {
		return errs.ErrNotFound
	}

	return
}

func (r *MongoDBProductRepositoryImpl) SetProductQuantity(ctx context.Context, data domain.Product) (err error) {
	filter := bson.D{{Key: "_id", Value: data.ID}, {Key: "version", Value: data.Version}}

	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "quantity_in_stock", Value: data.QuantityInStock},
			{Key: "updated_at", Value: data.UpdatedAt},
		}},
		{Key: "$inc", Value: bson.D{{Key: "version", Value: 1}}},
	}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "SetProductQuantity").Msg("Failed to update product")
		if mongodb.IsWriteConflict(err) {
			return fmt.Errorf("%w: %v", errs.ErrTransactionConflict, err)
		}
		return
	}

	if result.MatchedCount == 0 {
		log.Ctx(ctx).Warn().Str("component", "SetProductQuantity").Str("product_id", data.ID.Hex()).Msg("product version changed")
		return errs.ErrTransactionConflict
	}

	return
}

func (r *MongoDBProductRepositoryImpl) AddProductImage(ctx context.Context, id string, name string, updatedAt int64) (err error) {
	productID, err := parseObjectID(id)
	if err != nil {
		return
	}

	update := bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "images", Value: name}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: updatedAt}}},
	}

	result, err := r.collection().UpdateOne(ctx, bson.D{{Key: "_id", Value: productID}}, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddProductImage").Msg("")
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrNotFound
	}

	return
}
