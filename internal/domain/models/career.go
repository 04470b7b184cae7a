package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Career is a job posting.
type Career struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Location    string             `bson:"location" json:"location"`
	Description string             `bson:"description" json:"description"` // sanitized HTML
	Open        bool               `bson:"open" json:"open"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
