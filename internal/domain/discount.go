package domain

type Discount struct {
	Code       string  `bson:"_id" json:"code"`
	Percentage float64 `bson:"percentage" json:"percentage"`
	CreatedAt  int64   `bson:"created_at" json:"created_at"`
}
