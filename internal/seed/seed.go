// Package seed fills an empty store with the sample catalog and discount codes.
package seed

import (
	"context"
	"errors"

	"github.com/alimikegami/astromart/internal/dto"
	"github.com/alimikegami/astromart/internal/service"
	pkgdto "github.com/alimikegami/astromart/pkg/dto"
	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/rs/zerolog/log"
)

var Products = []dto.ProductRequest{
	{
		Name:            "Genuine Moon Rock",
		Price:           20.00,
		Description:     "Straight from the Sea of Tranquility. Certified* authentic (*by us).",
		QuantityInStock: 50,
	},
	{
		Name:            "Coende Crunch Alden",
		Price:           5.49,
		Description:     "Snacks that taste like chicken... if chicken were neon green and crunchy.",
		QuantityInStock: 20,
	},
	{
		Name:            "Bottle of Stardust",
		Price:           29.99,
		Description:     "For sprinkling on your cereal or wishing upon. Contains glitter.",
		QuantityInStock: 8,
	},
	{
		Name:            "Pluto's Pet Plushle",
		Price:           12.00,
		Description:     "The fluffiest, coldest dog in the Kuiper Belt. Hypoallergenic*.",
		QuantityInStock: 7,
	},
}

var Discounts = []dto.DiscountRequest{
	{Code: "code", Percentage: 5},
	{Code: "example", Percentage: 10},
	{Code: "another", Percentage: 30},
	{Code: "last", Percentage: 45},
}

// Run adds the sample products when the catalog is empty and every sample
// discount code that does not exist yet.
func Run(ctx context.Context, products service.ProductService, discounts service.DiscountService) error {
	logger := log.Ctx(ctx).With().Str("component", "Seed").Logger()

	existing, err := products.GetProducts(ctx, pkgdto.Filter{Limit: 1, Page: 1})
	if err != nil {
		return err
	}

	if existing.Metadata.TotalCount > 0 {
		logger.Info().Uint64("products", existing.Metadata.TotalCount).Msg("catalog already has data, skipping products")
	} else {
		for _, product := range Products {
			if _, err := products.AddProduct(ctx, product); err != nil {
				return err
			}
		}
		logger.Info().Int("products", len(Products)).Msg("products seeded")
	}

	created := 0
	for _, discount := range Discounts {
		_, err := discounts.CreateDiscount(ctx, discount)
		if errors.Is(err, errs.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
		created++
	}
	logger.Info().Int("discounts", created).Msg("discounts seeded")

	return nil
}
