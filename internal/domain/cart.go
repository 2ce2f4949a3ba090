package domain

type CartItem struct {
	ProductID string `bson:"product_id" json:"product_id"`
	Quantity  int64  `bson:"quantity" json:"quantity"`
	AddedAt   int64  `bson:"added_at" json:"added_at"`
}

// Cart is keyed by the owner's external id.
type Cart struct {
	UserID    string     `bson:"_id" json:"user_id"`
	Items     []CartItem `bson:"items" json:"items"`
	UpdatedAt int64      `bson:"updated_at" json:"updated_at"`
}

func (c Cart) IndexOf(productID string) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}

	return -1
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
