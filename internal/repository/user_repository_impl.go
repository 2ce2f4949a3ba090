package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/alimikegami/astromart/internal/domain"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

type UserRepositoryImpl struct {
	db *sqlx.DB
}

func CreateUserRepository(db *sqlx.DB) UserRepository {
	return &UserRepositoryImpl{db: db}
}

const userColumns = "id, name, email, external_id, hashed_password, role, created_at, updated_at, deleted_at"

func (r *UserRepositoryImpl) getUser(ctx context.Context, component string, query string, arg interface{}) (res domain.User, err error) {
	row := r.db.QueryRowxContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+query+" AND deleted_at IS NULL", arg)
	err = row.StructScan(&res)
	if err != nil {
		if err == sql.ErrNoRows {
			return res, nil
		}
		log.Ctx(ctx).Error().Err(err).Str("component", component).Msg("")
		return res, errs.ErrInternalServer
	}

	return
}

// GetUserByEmail returns a zero User when nobody has registered the address.
func (r *UserRepositoryImpl) GetUserByEmail(ctx context.Context, email string) (res domain.User, err error) {
	return r.getUser(ctx, "GetUserByEmail", "email = $1", email)
}

func (r *UserRepositoryImpl) GetUserByExternalID(ctx context.Context, externalID string) (data domain.User, err error) {
	return r.getUser(ctx, "GetUserByExternalID", "external_id = $1", externalID)
}

func (r *UserRepositoryImpl) AddUser(ctx context.Context, data domain.User) (id int64, err error) {
	timestamp := time.Now().UnixMilli()
	data.CreatedAt = timestamp
	data.UpdatedAt = timestamp

	nstmt, err := r.db.PrepareNamedContext(ctx, "INSERT INTO users(name, email, external_id, hashed_password, role, created_at, updated_at) VALUES (:name, :email, :external_id, :hashed_password, :role, :created_at, :updated_at) returning id")
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddUser").Msg("")
		return
	}
	defer nstmt.Close()

	err = nstmt.GetContext(ctx, &data.ID, data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "AddUser").Msg("")
		return
	}

	return data.ID, nil
}

func (r *UserRepositoryImpl) UpdateUserRole(ctx context.Context, data domain.User) (err error) {
	result, err := r.db.NamedExecContext(ctx, "UPDATE users SET role=:role, updated_at=:updated_at WHERE external_id=:external_id AND deleted_at IS NULL", data)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "UpdateUserRole").Msg("")
		return
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return
	}

	if affected == 0 {
		return errs.ErrNotFound
	}

	return nil
}

func (r *UserRepositoryImpl) GetUsers(ctx context.Context, filter pkgdto.Filter) (data []domain.User, err error) {
	query := "SELECT " + userColumns + " FROM users WHERE deleted_at IS NULL"

	args := make(map[string]interface{})

	if filter.Q != "" {
		query += " AND (name ILIKE :q OR email ILIKE :q)"
		args["q"] = "%" + filter.Q + "%"
	}

	query += " ORDER BY id"

	if filter.Limit != 0 && filter.Page != 0 {
		query += " LIMIT :limit OFFSET :offset"
		args["limit"] = filter.Limit
		args["offset"] = filter.Offset()
	}

	nstmt, err := r.db.PrepareNamedContext(ctx, query)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetUsers").Msg("")
		return nil, err
	}
	defer nstmt.Close()

	data = []domain.User{}
	err = nstmt.SelectContext(ctx, &data, args)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GetUsers").Msg("")
		return nil, err
	}

	return data, nil
}

func (r *UserRepositoryImpl) CountUsers(ctx context.Context, filter pkgdto.Filter) (count int64, err error) {
	query := "SELECT COUNT(id) FROM users WHERE deleted_at IS NULL"
	args := []interface{}{}

	if filter.Q != "" {
		query += " AND (name ILIKE $1 OR email ILIKE $1)"
		args = append(args, "%"+filter.Q+"%")
	}

	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "CountUsers").Msg("")
		return 0, err
	}

	return
}
