package dto

import "github.com/alimikegami/astromart/internal/domain"

type OrderRequest struct {
	DiscountCode string `json:"discount_code"`
}

type OrderStatusRequest struct {
	ID     string
	Status string `json:"status"`
}

type OrderResponse struct {
	ID        string                `json:"id"`
	Number    string                `json:"number"`
	UserID    string                `json:"user_id"`
	Products  []domain.OrderProduct `json:"products"`
	Subtotal  float64               `json:"subtotal"`
	Tax       float64               `json:"tax"`
	Discount  *domain.OrderDiscount `json:"discount"`
	Total     float64               `json:"total"`
	Timestamp int64                 `json:"timestamp"`
	Status    domain.OrderStatus    `json:"status"`
	UpdatedAt int64                 `json:"updated_at"`
}

func NewOrderResponse(o domain.Order) OrderResponse {
	return OrderResponse{
		ID:        o.ID.Hex(),
		Number:    o.Number,
		UserID:    o.UserID,
		Products:  o.Products,
		Subtotal:  o.Subtotal,
		Tax:       o.Tax,
		Discount:  o.Discount,
		Total:     o.Total,
		Timestamp: o.Timestamp,
		Status:    o.Status,
		UpdatedAt: o.UpdatedAt,
	}
}

// OrderCreated is the payload of the order_created event.
type OrderCreated struct {
	OrderID   string                `json:"order_id"`
	Number    string                `json:"number"`
	UserID    string                `json:"user_id"`
	UserEmail string                `json:"user_email"`
	Products  []domain.OrderProduct `json:"products"`
	Total     float64               `json:"total"`
	Timestamp int64                 `json:"timestamp"`
}
