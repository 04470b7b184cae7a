package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Expense is an office expense entry.
type Expense struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Category    string             `bson:"category" json:"category"` // rent | utilities | supplies | travel | other
	Description string             `bson:"description" json:"description"`
	AmountCents int64              `bson:"amount_cents" json:"amount_cents"`
	Currency    string             `bson:"currency" json:"currency"`
	IncurredAt  time.Time          `bson:"incurred_at" json:"incurred_at"`
	ReceiptRef  string             `bson:"receipt_ref,omitempty" json:"receipt_ref,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
