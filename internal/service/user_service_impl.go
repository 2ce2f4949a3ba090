package service

import (
	"context"
	"strings"
	"time"

	"github.com/alimikegami/astromart/config"
	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/repository"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/alimikegami/astromart/pkg/utils"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	repo   repository.UserRepository
	config config.Config
}

func CreateUserService(repo repository.UserRepository, config config.Config) UserService {
	return &UserServiceImpl{repo: repo, config: config}
}

func newUserResponse(user domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:         user.ID,
		ExternalID: user.ExternalID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		CreatedAt:  user.CreatedAt,
	}
}

func (s *UserServiceImpl) AddUser(ctx context.Context, data dto.UserRequest) (err error) {
	data.Email = strings.ToLower(strings.TrimSpace(data.Email))
	if err = utils.ValidateStruct(data); err != nil {
		return
	}

	user, err := s.repo.GetUserByEmail(ctx, data.Email)
	if err != nil {
		return
	}

	if user.ID != 0 {
		return errs.ErrEmailAlreadyUsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(data.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	userEnt := domain.User{
		Name:           data.Name,
		Email:          data.Email,
		HashedPassword: string(hash),
		ExternalID:     ulid.Make().String(),
		Role:           utils.RoleUser,
	}

	_, err = s.repo.AddUser(ctx, userEnt)
	if err != nil {
		return err
	}

	return nil
}

// Login issues a token carrying the role stored at this moment. Role changes
// take effect on the next login.
func (s *UserServiceImpl) Login(ctx context.Context, payload dto.UserRequest) (respPayload dto.LoginResponse, err error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(payload.Email)))
	if err != nil {
		return
	}

	if user.ID == 0 {
		return respPayload, errs.ErrAccountNotFound
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(payload.Password))
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "Login").Msg("")
		return respPayload, errs.ErrInvalidCredentialsEmail
	}

	role := user.Role
	if role == "" {
		role = utils.RoleUser
	}

	token, err := utils.CreateJWTToken(utils.TokenUser{
		UserID:     user.ID,
		ExternalID: user.ExternalID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       role,
	}, s.config.JWTSecret, s.config.JWTTTL)
	if err != nil {
		return
	}

	respPayload.Token = token
	respPayload.UserID = user.ExternalID
	respPayload.Role = role

	return
}

func (s *UserServiceImpl) GetUsers(ctx context.Context, filter pkgdto.Filter) (resp pkgdto.PaginationResponse, err error) {
	if err = filter.Validate(); err != nil {
		return
	}

	users, err := s.repo.GetUsers(ctx, filter)
	if err != nil {
		return
	}

	count, err := s.repo.CountUsers(ctx, filter)
	if err != nil {
		return
	}

	records := make([]dto.UserResponse, 0, len(users))
	for _, user := range users {
		records = append(records, newUserResponse(user))
	}

	resp.Metadata = pkgdto.PaginationMetadata{TotalCount: uint64(count), Page: uint64(filter.Page), Limit: filter.Limit}
	resp.Records = records

	return
}

func (s *UserServiceImpl) GetUser(ctx context.Context, externalID string) (resp dto.UserResponse, err error) {
	user, err := s.repo.GetUserByExternalID(ctx, externalID)
	if err != nil {
		return
	}

	if user.ID == 0 {
		return resp, errs.ErrNotFound
	}

	return newUserResponse(user), nil
}

func (s *UserServiceImpl) SetUserRole(ctx context.Context, req dto.RoleRequest) (err error) {
	if err = utils.ValidateStruct(req); err != nil {
		return
	}

	err = s.repo.UpdateUserRole(ctx, domain.User{
		ExternalID: req.ExternalID,
		Role:       req.Role,
		UpdatedAt:  time.Now().UnixMilli(),
	})
	if err != nil {
		return
	}

	log.Ctx(ctx).Info().Str("component", "SetUserRole").Str("external_id", req.ExternalID).Str("role", req.Role).Msg("role updated")

	return nil
}

func (s *UserServiceImpl) GrantAdminByEmail(ctx context.Context, email string) (err error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return
	}

	if user.ID == 0 {
		return errs.ErrAccountNotFound
	}

	return s.SetUserRole(ctx, dto.RoleRequest{ExternalID: user.ExternalID, Role: utils.RoleAdmin})
}
