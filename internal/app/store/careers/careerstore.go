// internal/app/store/careers/careerstore.go
package careerstore

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
	return &Store{c: db.Collection("careers")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Career, error) {
	var c models.Career
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Career{}, err
	}
	return c, nil
}

// List returns postings, optionally only open ones.
func (s *Store) List(ctx context.Context, openOnly bool, skip, limit int64) ([]models.Career, error) {
	filter := bson.M{}
	if openOnly {
		filter["open"] = true
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Career
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, c models.Career) (models.Career, error) {
	now := time.Now().UTC()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		return models.Career{}, err
	}
	return c, nil
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, c models.Career) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":       c.Title,
		"location":    c.Location,
		"description": c.Description,
		"open":        c.Open,
		"updated_at":  time.Now().UTC(),
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
