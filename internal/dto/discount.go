package dto

type DiscountRequest struct {
	Code       string  `json:"code" validate:"required"`
	Percentage float64 `json:"percentage" validate:"gte=0,lte=100"`
}

type DiscountResponse struct {
	Code       string  `json:"code"`
	Percentage float64 `json:"percentage"`
	CreatedAt  int64   `json:"created_at"`
}
