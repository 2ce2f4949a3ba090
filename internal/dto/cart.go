package dto

type CartItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int64  `json:"quantity"`
}

type CartItemResponse struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int64   `json:"quantity"`
	LineTotal float64 `json:"line_total"`
	InStock   int64   `json:"in_stock"`
	AddedAt   int64   `json:"added_at"`
}

type CartResponse struct {
	UserID    string             `json:"user_id"`
	Items     []CartItemResponse `json:"items"`
	Subtotal  float64            `json:"subtotal"`
	Total     float64            `json:"total"`
	UpdatedAt int64              `json:"updated_at"`
}

type CartTotalResponse struct {
	Total float64 `json:"total"`
}
