package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Employee is an HR record. Distinct from User: most employees never log
// into the portal.
type Employee struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"`
	Email      string             `bson:"email" json:"email"`
	Title      string             `bson:"title" json:"title"`
	Department string             `bson:"department" json:"department"`
	Status     string             `bson:"status" json:"status"` // active | on_leave | terminated
	HiredAt    time.Time          `bson:"hired_at" json:"hired_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
