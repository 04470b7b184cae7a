// internal/app/store/invoices/invoicestore.go
package invoicestore

import (
	"context"
	"errors"
	"time"

	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotEditable means the invoice has left draft status.
var ErrNotEditable = errors.New("only draft invoices can be edited")

type Store struct {
	c        *mongo.Collection
	counters *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("invoices"),
		counters: db.Collection("counters"),
	}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Invoice, error) {
	var inv models.Invoice
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// List returns invoices newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, status string, skip, limit int64) ([]models.Invoice, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "number", Value: -1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Invoice
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// nextNumber atomically increments the invoice counter.
func (s *Store) nextNumber(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "invoice_number"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, err
	}
	return doc.Seq, nil
}

// Create assigns the sequential number and external reference, computes
// the total, and inserts the invoice as a draft.
func (s *Store) Create(ctx context.Context, inv models.Invoice) (models.Invoice, error) {
	number, err := s.nextNumber(ctx)
	if err != nil {
		return models.Invoice{}, err
	}
	now := time.Now().UTC()
	inv.ID = primitive.NewObjectID()
	inv.Number = number
	inv.ExternalRef = uuid.NewString()
	inv.Status = models.InvoiceDraft
	inv.TotalCents = inv.Total()
	if inv.Currency == "" {
		inv.Currency = "USD"
	}
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		return models.Invoice{}, err
	}
	return inv, nil
}

// UpdateItems replaces the line items of a draft invoice and recomputes
// its total. Non-draft invoices are frozen.
func (s *Store) UpdateItems(ctx context.Context, id primitive.ObjectID, items []models.InvoiceItem, dueAt time.Time) error {
	var total int64
	for _, it := range items {
		total += int64(it.Quantity) * it.UnitCents
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvoiceDraft},
		bson.M{"$set": bson.M{
			"items":       items,
			"total_cents": total,
			"due_at":      dueAt.UTC(),
			"updated_at":  time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotEditable
	}
	return nil
}

// Send moves a draft invoice to sent and stamps the issue instant.
func (s *Store) Send(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvoiceDraft},
		bson.M{"$set": bson.M{
			"status":     models.InvoiceSent,
			"issued_at":  time.Now().UTC(),
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetStatus moves the invoice along draft → sent → paid. Transitions are
// enforced by the expected current status in the filter.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, from, to string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{
			"status":     to,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "status": models.InvoiceDraft})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
