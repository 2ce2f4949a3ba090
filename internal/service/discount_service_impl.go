package service

import (
	"context"
	"strings"
	"time"

	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/repository"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/alimikegami/astromart/pkg/utils"
)

type DiscountServiceImpl struct {
	discountRepo repository.DiscountRepository
}

func CreateDiscountService(discountRepo repository.DiscountRepository) DiscountService {
	return &DiscountServiceImpl{discountRepo: discountRepo}
}

func normalizeCode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

func newDiscountResponse(d domain.Discount) dto.DiscountResponse {
	return dto.DiscountResponse{Code: d.Code, Percentage: d.Percentage, CreatedAt: d.CreatedAt}
}

func (s *DiscountServiceImpl) GetDiscount(ctx context.Context, code string) (resp dto.DiscountResponse, err error) {
	code = normalizeCode(code)
	if code == "" {
		return resp, errs.ErrNotFound
	}

	discount, err := s.discountRepo.GetDiscountByCode(ctx, code)
	if err != nil {
		return
	}

	return newDiscountResponse(discount), nil
}

func (s *DiscountServiceImpl) GetDiscounts(ctx context.Context) (resp []dto.DiscountResponse, err error) {
	discounts, err := s.discountRepo.GetDiscounts(ctx)
	if err != nil {
		return
	}

	resp = make([]dto.DiscountResponse, 0, len(discounts))
	for _, discount := range discounts {
		resp = append(resp, newDiscountResponse(discount))
	}

	return
}

func (s *DiscountServiceImpl) CreateDiscount(ctx context.Context, req dto.DiscountRequest) (resp dto.DiscountResponse, err error) {
	if err = utils.ValidateStruct(req); err != nil {
		return
	}

	code := normalizeCode(req.Code)
	if code == "" {
		return resp, errs.ErrClient
	}

	discount := domain.Discount{
		Code:       code,
		Percentage: req.Percentage,
		CreatedAt:  time.Now().UnixMilli(),
	}

	if err = s.discountRepo.AddDiscount(ctx, discount); err != nil {
		return
	}

	return newDiscountResponse(discount), nil
}

func (s *DiscountServiceImpl) DeleteDiscount(ctx context.Context, code string) (err error) {
	return s.discountRepo.DeleteDiscount(ctx, normalizeCode(code))
}
