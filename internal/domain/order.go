package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusInProgress OrderStatus = "In Progress"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

var nextOrderStatus = map[OrderStatus]OrderStatus{
	OrderStatusPending:    OrderStatusInProgress,
	OrderStatusInProgress: OrderStatusShipped,
	OrderStatusShipped:    OrderStatusCompleted,
}

func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch status := OrderStatus(s); status {
	case OrderStatusPending, OrderStatusInProgress, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return status, true
	}

	return "", false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// CanTransitionTo allows one step forward along the fulfilment path, or
// cancellation from any non-terminal status.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	if s.IsTerminal() {
		return false
	}

	if next == OrderStatusCancelled {
		return true
	}

	return nextOrderStatus[s] == next
}

// OrderProduct is a copy of the product taken when the order was placed.
type OrderProduct struct {
	ProductID       string   `bson:"product_id" json:"product_id"`
	Name            string   `bson:"name" json:"name"`
	Price           float64  `bson:"price" json:"price"`
	SalePercentage  *float64 `bson:"sale_percentage,omitempty" json:"sale_percentage,omitempty"`
	QuantityOrdered int64    `bson:"quantity_ordered" json:"quantity_ordered"`
}

type OrderDiscount struct {
	Code       string  `bson:"code" json:"code"`
	Percentage float64 `bson:"percentage" json:"percentage"`
	Amount     float64 `bson:"amount" json:"amount"`
}

type Order struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number    string             `bson:"number" json:"number"`
	UserID    string             `bson:"user_id" json:"user_id"`
	UserEmail string             `bson:"user_email" json:"user_email"`
	Products  []OrderProduct     `bson:"products" json:"products"`
	Subtotal  float64            `bson:"subtotal" json:"subtotal"`
	Tax       float64            `bson:"tax" json:"tax"`
	Discount  *OrderDiscount     `bson:"discount" json:"discount"`
	Total     float64            `bson:"total" json:"total"`
	Timestamp int64              `bson:"timestamp" json:"timestamp"`
	Status    OrderStatus        `bson:"status" json:"status"`
	UpdatedAt int64              `bson:"updated_at" json:"updated_at"`
}
