// internal/app/store/clients/clientstore.go
package clientstore

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

var ErrDuplicateName = errors.New("a client with this name already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clients")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Client, error) {
	var cl models.Client
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&cl); err != nil {
		return models.Client{}, err
	}
	return cl, nil
}

func (s *Store) List(ctx context.Context, skip, limit int64) ([]models.Client, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Client
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, cl models.Client) (models.Client, error) {
	now := time.Now().UTC()
	cl.ID = primitive.NewObjectID()
	cl.NameCI = text.Fold(cl.Name)
	cl.CreatedAt = now
	cl.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, cl); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Client{}, ErrDuplicateName
		}
		return models.Client{}, err
	}
	return cl, nil
}

func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, cl models.Client) error {
	set := bson.M{
		"email":      cl.Email,
		"company":    cl.Company,
		"address":    cl.Address,
		"updated_at": time.Now().UTC(),
	}
	if cl.Name != "" {
		set["name"] = cl.Name
		set["name_ci"] = text.Fold(cl.Name)
	}
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil && wafflemongo.IsDup(err) {
		return ErrDuplicateName
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
