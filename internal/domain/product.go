package domain

import "time"

type Product struct {
	ID          string    `json:"id" bson:"_id"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Price       float64   `json:"price" bson:"price"`
	Image       string    `json:"image" bson:"image"`
	Sizes       []string  `json:"sizes" bson:"sizes"`
	Category    string    `json:"category" bson:"category"`
	InStock     bool      `json:"inStock" bson:"in_stock"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}
