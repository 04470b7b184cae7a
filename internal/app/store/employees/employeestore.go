// internal/app/store/employees/employeestore.go
package employeestore

import (
	"context"
	"errors"
	"time"

	"github.com/corefield/opsdesk/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrDuplicateEmail = errors.New("an employee with this email already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("employees")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Employee, error) {
	var e models.Employee
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		return models.Employee{}, err
	}
	return e, nil
}

// List returns employees ordered by folded name. An empty department
// matches all departments.
func (s *Store) List(ctx context.Context, department string, skip, limit int64) ([]models.Employee, error) {
	filter := bson.M{}
	if department != "" {
		filter["department"] = department
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Employee
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, e models.Employee) (models.Employee, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.FullNameCI = text.Fold(e.FullName)
	e.Email = text.Fold(e.Email)
	if e.Status == "" {
		e.Status = "active"
	}
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Employee{}, ErrDuplicateEmail
		}
		return models.Employee{}, err
	}
	return e, nil
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, e models.Employee) error {
	set := bson.M{
		"title":      e.Title,
		"department": e.Department,
		"status":     e.Status,
		"updated_at": time.Now().UTC(),
	}
	if e.FullName != "" {
		set["full_name"] = e.FullName
		set["full_name_ci"] = text.Fold(e.FullName)
	}
	if e.Email != "" {
		set["email"] = text.Fold(e.Email)
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{})
}
