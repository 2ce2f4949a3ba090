package dto

import (
	"strings"

	"github.com/alimikegami/astromart/pkg/errs"
	"github.com/alimikegami/astromart/pkg/utils"
)

type ProductRequest struct {
	ID              string
	Name            string   `json:"name" validate:"required"`
	Price           float64  `json:"price" validate:"gte=0"`
	Description     string   `json:"description"`
	QuantityInStock int64    `json:"quantity_in_stock" validate:"gte=0"`
	IsAvailable     *bool    `json:"is_available"`
	SalePercentage  *float64 `json:"sale_percentage" validate:"omitempty,gte=0,lte=100"`
	Markdown        string   `json:"markdown"`
}

func (r ProductRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errs.ErrClient
	}

	return utils.ValidateStruct(r)
}

type MarkupRequest struct {
	Markdown string `json:"markdown"`
}
