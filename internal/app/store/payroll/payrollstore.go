// internal/app/store/payroll/payrollstore.go
package payrollstore

import (
	"context"
	"errors"
	"time"

	"github.com/corefield/opsdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDuplicateEntry means the employee already has an entry for the period.
var ErrDuplicateEntry = errors.New("payroll entry already exists for this employee and period")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("payroll_entries")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.PayrollEntry, error) {
	var p models.PayrollEntry
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.PayrollEntry{}, err
	}
	return p, nil
}

// ListByPeriod returns all entries for a YYYY-MM period.
func (s *Store) ListByPeriod(ctx context.Context, period string) ([]models.PayrollEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "employee_id", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"period": period}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.PayrollEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) List(ctx context.Context, skip, limit int64) ([]models.PayrollEntry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "period", Value: -1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.PayrollEntry
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, p models.PayrollEntry) (models.PayrollEntry, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	if p.Currency == "" {
		p.Currency = "USD"
	}
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.PayrollEntry{}, ErrDuplicateEntry
		}
		return models.PayrollEntry{}, err
	}
	return p, nil
}

func (s *Store) UpdateAmounts(ctx context.Context, id primitive.ObjectID, gross, tax, net int64) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"gross_cents": gross,
		"tax_cents":   tax,
		"net_cents":   net,
		"updated_at":  time.Now().UTC(),
	}})
	return err
}

// MarkPaid stamps the entry with the payment instant.
func (s *Store) MarkPaid(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"paid_at":    at.UTC(),
		"updated_at": time.Now().UTC(),
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
