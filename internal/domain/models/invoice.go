package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Invoice statuses. Draft invoices can be edited; sending freezes the
// line items.
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
)

// InvoiceItem is one line on an invoice.
type InvoiceItem struct {
	Description string `bson:"description" json:"description"`
	Quantity    int    `bson:"quantity" json:"quantity"`
	UnitCents   int64  `bson:"unit_cents" json:"unit_cents"`
}

// Amount is the line total in cents.
func (it InvoiceItem) Amount() int64 {
	return int64(it.Quantity) * it.UnitCents
}

// Invoice is a bill issued to a client. Number is the sequential
// human-facing identifier; ExternalRef is the stable id shared with
// outside systems.
type Invoice struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Number      int64              `bson:"number" json:"number"`
	ExternalRef string             `bson:"external_ref" json:"external_ref"` // UUID
	ClientID    primitive.ObjectID `bson:"client_id" json:"client_id"`
	Items       []InvoiceItem      `bson:"items" json:"items"`
	TotalCents  int64              `bson:"total_cents" json:"total_cents"`
	Currency    string             `bson:"currency" json:"currency"`
	Status      string             `bson:"status" json:"status"`
	IssuedAt    time.Time          `bson:"issued_at" json:"issued_at"`
	DueAt       time.Time          `bson:"due_at" json:"due_at"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Total sums the line items in cents.
func (inv Invoice) Total() int64 {
	var total int64
	for _, it := range inv.Items {
		total += int64(it.Quantity) * it.UnitCents
	}
	return total
}
