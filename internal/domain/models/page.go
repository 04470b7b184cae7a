package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Page is a CMS content block. BodyHTML is sanitized before storage.
type Page struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug      string             `bson:"slug" json:"slug"`
	Title     string             `bson:"title" json:"title"`
	BodyHTML  string             `bson:"body_html" json:"body_html"`
	Published bool               `bson:"published" json:"published"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
