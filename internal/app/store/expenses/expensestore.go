// internal/app/store/expenses/expensestore.go
package expensestore

import (
	"context"
	"time"

	"github.com/corefield/opsdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("expenses")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Expense, error) {
	var e models.Expense
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

// List returns expenses newest first. An empty category matches all.
func (s *Store) List(ctx context.Context, category string, skip, limit int64) ([]models.Expense, error) {
	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "incurred_at", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Expense
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, e models.Expense) (models.Expense, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	if e.Currency == "" {
		e.Currency = "USD"
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Expense{}, err
	}
	return e, nil
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, e models.Expense) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"category":     e.Category,
		"description":  e.Description,
		"amount_cents": e.AmountCents,
		"incurred_at":  e.IncurredAt,
		"receipt_ref":  e.ReceiptRef,
		"updated_at":   time.Now().UTC(),
	}})
	return err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// TotalForMonth sums amount_cents for expenses incurred in [from, to).
func (s *Store) TotalForMonth(ctx context.Context, from, to time.Time) (int64, error) {
	cur, err := s.c.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"incurred_at": bson.M{"$gte": from, "$lt": to}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount_cents"}}}},
	})
	if err != nil {
		return 0, err
	}
	var rows []struct {
		Total int64 `bson:"total"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Total, nil
}
