package dto

import (
	"github.com/alimikegami/astromart/internal/domain"
	"github.com/alimikegami/astromart/internal/pricing"
)

type ProductResponse struct {
	ID              string              `json:"id"`
	Name            string              `json:"name"`
	Price           float64             `json:"price"`
	SalePrice       float64             `json:"sale_price"`
	Description     string              `json:"description"`
	QuantityInStock int64               `json:"quantity_in_stock"`
	IsAvailable     bool                `json:"is_available"`
	SalePercentage  *float64            `json:"sale_percentage,omitempty"`
	Images          []string            `json:"images,omitempty"`
	Body            *domain.ProductBody `json:"body,omitempty"`
	CreatedAt       int64               `json:"created_at"`
	UpdatedAt       int64               `json:"updated_at"`
}

func NewProductResponse(p domain.Product) ProductResponse {
	return ProductResponse{
		ID:              p.ID.Hex(),
		Name:            p.Name,
		Price:           p.Price,
		SalePrice:       pricing.ToFloat(pricing.SalePrice(p.Price, p.SalePercentage)),
		Description:     p.Description,
		QuantityInStock: p.QuantityInStock,
		IsAvailable:     p.IsAvailable,
		SalePercentage:  p.SalePercentage,
		Images:          p.Images,
		Body:            p.Body,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type ProductEvent struct {
	ID        string          `json:"id"`
	Product   *domain.Product `json:"product,omitempty"`
	UpdatedAt int64           `json:"updated_at"`
}

type MarkupResponse struct {
	HTML string `json:"html"`
}

type ImageResponse struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	UploadedAt int64  `json:"uploaded_at"`
}
