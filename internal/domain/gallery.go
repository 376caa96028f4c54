package domain

import "time"

type GalleryImage struct {
	ID        string    `json:"id" bson:"_id"`
	URL       string    `json:"url" bson:"url"`
	Alt       string    `json:"alt" bson:"alt"`
	Order     int       `json:"order" bson:"order"`
	CreatedAt time.Time `json:"createdAt" bson:"created_at"`
}
