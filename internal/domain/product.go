package domain

import "go.mongodb.org/mongo-driver/bson/primitive"

type Product struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name            string             `bson:"name" json:"name"`
	Price           float64            `bson:"price" json:"price"`
	Description     string             `bson:"description" json:"description"`
	QuantityInStock int64              `bson:"quantity_in_stock" json:"quantity_in_stock"`
	IsAvailable     bool               `bson:"is_available" json:"is_available"`
	SalePercentage  *float64           `bson:"sale_percentage,omitempty" json:"sale_percentage,omitempty"`
	Images          []string           `bson:"images,omitempty" json:"images,omitempty"`
	Body            *ProductBody       `bson:"body,omitempty" json:"body,omitempty"`
	Version         int64              `bson:"version" json:"version"`
	CreatedAt       int64              `bson:"created_at" json:"created_at"`
	UpdatedAt       int64              `bson:"updated_at" json:"updated_at"`
}

type ProductBody struct {
	Markdown string `bson:"markdown" json:"markdown"`
	HTML     string `bson:"html" json:"html"`
}

type ProductImage struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Size       int64  `json:"size"`
	UploadedAt int64  `json:"uploaded_at"`
}
