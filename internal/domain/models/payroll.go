package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PayrollEntry is one employee's pay for one period. Amounts are integer
// cents to keep arithmetic exact.
type PayrollEntry struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EmployeeID primitive.ObjectID `bson:"employee_id" json:"employee_id"`
	Period     string             `bson:"period" json:"period"` // YYYY-MM
	GrossCents int64              `bson:"gross_cents" json:"gross_cents"`
	TaxCents   int64              `bson:"tax_cents" json:"tax_cents"`
	NetCents   int64              `bson:"net_cents" json:"net_cents"`
	Currency   string             `bson:"currency" json:"currency"`
	PaidAt     *time.Time         `bson:"paid_at,omitempty" json:"paid_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
