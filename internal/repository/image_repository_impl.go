package repository

import (
	"context"
	"io"
	"regexp"
	"time"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/infrastructure/database/mongodb"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const gridFSTimeout = 30 * time.Second

type gridFSFile struct {
	ID         primitive.ObjectID `bson:"_id"`
	Name       string             `bson:"filename"`
	Length     int64              `bson:"length"`
	UploadDate time.Time          `bson:"uploadDate"`
}

type GridFSImageRepositoryImpl struct {
	db *mongo.Database
}

func CreateImageRepository(db *mongo.Database) (ImageRepository, error) {
	r := &GridFSImageRepositoryImpl{db: db}
	if _, err := r.bucket(); err != nil {
		return nil, err
	}

	return r, nil
}

// bucket opens a handle for a single operation. Read and write deadlines are
// stored on the handle, so handles are never shared between requests.
func (r *GridFSImageRepositoryImpl) bucket() (*gridfs.Bucket, error) {
	return gridfs.NewBucket(r.db, options.GridFSBucket().SetName(mongodb.ImagesBucket))
}

func streamDeadline(ctx context.Context) time.Time {
	deadline := time.Now().Add(gridFSTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		return ctxDeadline
	}

	return deadline
}

func (r *GridFSImageRepositoryImpl) find(ctx context.Context, bucket *gridfs.Bucket, filter interface{}) (files []gridFSFile, err error) {
	cursor, err := bucket.FindContext(ctx, filter)
	if err != nil {
		return
	}

	err = cursor.All(ctx, &files)

	return
}

func prefixFilter(prefix string) bson.D {
	return bson.D{{Key: "filename", Value: primitive.Regex{Pattern: "^" + regexp.QuoteMeta(prefix)}}}
}

// UploadImage stores source at path, replacing any earlier file with that path.
func (r *GridFSImageRepositoryImpl) UploadImage(ctx context.Context, path string, source io.Reader) (err error) {
	bucket, err := r.bucket()
	if err != nil {
		return
	}

	existing, err := r.find(ctx, bucket, bson.D{{Key: "filename", Value: path}})
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UploadImage").Msg("")
		return
	}

	if err = bucket.SetWriteDeadline(streamDeadline(ctx)); err != nil {
		return
	}

	_, err = bucket.UploadFromStream(path, source)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UploadImage").Msg("")
		return
	}

	for _, file := range existing {
		if err := bucket.DeleteContext(ctx, file.ID); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("component", "UploadImage").Str("path", path).Msg("failed to remove replaced image")
		}
	}

	return nil
}

func (r *GridFSImageRepositoryImpl) ListImages(ctx context.Context, prefix string) (data []domain.ProductImage, err error) {
	bucket, err := r.bucket()
	if err != nil {
		return
	}

	files, err := r.find(ctx, bucket, prefixFilter(prefix))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "ListImages").Msg("")
		return
	}

	data = make([]domain.ProductImage, 0, len(files))
	for _, file := range files {
		data = append(data, domain.ProductImage{
			Name:       file.Name[len(prefix):],
			Path:       file.Name,
			Size:       file.Length,
			UploadedAt: file.UploadDate.UnixMilli(),
		})
	}

	return data, nil
}

func (r *GridFSImageRepositoryImpl) OpenImage(ctx context.Context, path string) (reader io.ReadCloser, err error) {
	bucket, err := r.bucket()
	if err != nil {
		return
	}

	if err = bucket.SetReadDeadline(streamDeadline(ctx)); err != nil {
		return
	}

	stream, err := bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if err == gridfs.ErrFileNotFound {
			return nil, errs.ErrNotFound
		}

		log.Ctx(ctx).Error().Err(err).Str("component", "OpenImage").Msg("")
		return nil, err
	}

	return stream, nil
}

func (r *GridFSImageRepositoryImpl) DeleteImages(ctx context.Context, prefix string) (err error) {
	bucket, err := r.bucket()
	if err != nil {
		return
	}

	files, err := r.find(ctx, bucket, prefixFilter(prefix))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "DeleteImages").Msg("")
		return
	}

	for _, file := range files {
		if err = bucket.DeleteContext(ctx, file.ID); err != nil {
			log.Ctx(ctx).Error().Err(err).Str("component", "DeleteImages").Msg("")
			return
		}
	}

	return nil
}
