package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/infrastructure/database/mongodb"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

type MongoDBOrderRepositoryImpl struct {
	db *mongo.Database
}

func CreateOrderRepository(db *mongo.Database) OrderRepository {
	return &MongoDBOrderRepositoryImpl{db: db}
}

func (r *MongoDBOrderRepositoryImpl) collection() *mongo.Collection {
	return r.db.Collection(mongodb.OrdersCollection)
}

// HandleTrx commits or aborts exactly once. Unlike session.WithTransaction it
// never replays fn after a transient error.
func (r *MongoDBOrderRepositoryImpl) HandleTrx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := r.db.Client().StartSession()
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("")
		return err
	}
	defer session.EndSession(ctx)

	trxOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	return mongo.WithSession(ctx, session, func(sessionCtx mongo.SessionContext) error {
		if err := sessionCtx.StartTransaction(trxOpts); err != nil {
			return err
		}

		if err := fn(sessionCtx); err != nil {
			if abortErr := sessionCtx.AbortTransaction(context.Background()); abortErr != nil {
				log.Ctx(ctx).Error().Err(abortErr).Str("component", "HandleTrx").Msg("abort failed")
			}
			return translateTrxError(err)
		}

		if err := sessionCtx.CommitTransaction(sessionCtx); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "HandleTrx").Msg("commit failed")
			return translateTrxError(err)
		}

		return nil
	})
}

func translateTrxError(err error) error {
	if errors.Is(err, errs.ErrTransactionConflict) {
		return err
	}

	if mongodb.IsWriteConflict(err) {
		return fmt.Errorf("%w: %v", errs.ErrTransactionConflict, err)
	}

	return err
}

func orderFilter(filter pkgdto.Filter) bson.D {
	query := bson.D{}
	if filter.Status != "" {
		query = append(query, bson.E{Key: "status", Value: filter.Status})
	}

	return query
}

func findOptions(filter pkgdto.Filter) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if filter.Limit != 0 && filter.Page != 0 {
		opts = opts.SetSkip(filter.Offset()).SetLimit(int64(filter.Limit))
	}

	return opts
}

func (r *MongoDBOrderRepositoryImpl) AddOrder(ctx context.Context, data domain.Order) (id primitive.ObjectID, err error) {
	result, err := r.collection().InsertOne(ctx, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddOrder").Msg("")
		return
	}

	return result.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoDBOrderRepositoryImpl) GetOrderByID(ctx context.Context, id string) (data domain.Order, err error) {
	orderID, err := parseObjectID(id)
	if err != nil {
		return
	}

	err = r.collection().FindOne(ctx, bson.D{{Key: "_id", Value: orderID}}).Decode(&data)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return data, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrderByID").Msg("")
	}

	return
}

func (r *MongoDBOrderRepositoryImpl) GetOrdersByUserID(ctx context.Context, userID string, filter pkgdto.Filter) (data []domain.Order, err error) {
	query := append(orderFilter(filter), bson.E{Key: "user_id", Value: userID})

	cursor, err := r.collection().Find(ctx, query, findOptions(filter))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrdersByUserID").Msg("")
		return
	}

	data = []domain.Order{}
	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrdersByUserID").Msg("")
	}

	return
}

func (r *MongoDBOrderRepositoryImpl) GetOrders(ctx context.Context, filter pkgdto.Filter) (data []domain.Order, err error) {
	cursor, err := r.collection().Find(ctx, orderFilter(filter), findOptions(filter))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
		return
	}

	data = []domain.Order{}
	if err = cursor.All(ctx, &data); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetOrders").Msg("")
	}

	return
}

func (r *MongoDBOrderRepositoryImpl) CountOrders(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	count, err = r.collection().CountDocuments(ctx, orderFilter(filter))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "CountOrders").Msg("")
	}

	return
}

func (r *MongoDBOrderRepositoryImpl) UpdateOrderStatus(ctx context.Context, data domain.Order, from domain.OrderStatus) (err error) {
	filter := bson.D{{Key: "_id", Value: data.ID}, {Key: "status", Value: from}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "status", Value: data.Status},
		{Key: "updated_at", Value: data.UpdatedAt},
	}}}

	result, err := r.collection().UpdateOne(ctx, filter, update)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateOrderStatus").Msg("")
		if mongodb.IsWriteConflict(err) {
			return fmt.Errorf("%w: %v", errs.ErrTransactionConflict, err)
		}
		return
	}

	if result.MatchedCount == 0 {
		return errs.ErrTransactionConflict
	}

	return
}
