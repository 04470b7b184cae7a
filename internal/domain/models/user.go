package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a portal account. Role is a display label; the Permissions set
// is what the authorization gate actually evaluates. Both are copied into
// the bearer credential at login, so changes take effect on the next
// token mint.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"`
	Permissions  []string           `bson:"permissions" json:"permissions"`
	Status       string             `bson:"status" json:"status"` // active | disabled

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
