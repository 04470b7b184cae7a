// internal/app/store/pages/pagestore.go
package pagestore

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

var ErrDuplicateSlug = errors.New("a page with this slug already exists")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("pages")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Page, error) {
	var p models.Page
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Page{}, err
	}
	return p, nil
}

func (s *Store) GetBySlug(ctx context.Context, slug string) (models.Page, error) {
	var p models.Page
	if err := s.c.FindOne(ctx, bson.M{"slug": slug}).Decode(&p); err != nil {
		return models.Page{}, err
	}
	return p, nil
}

func (s *Store) List(ctx context.Context, skip, limit int64) ([]models.Page, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "slug", Value: 1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Page
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPublished returns only published pages, for public display.
func (s *Store) ListPublished(ctx context.Context, skip, limit int64) ([]models.Page, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "slug", Value: 1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"published": true}, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Page
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts a page. The caller sanitizes BodyHTML first.
func (s *Store) Create(ctx context.Context, p models.Page) (models.Page, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Page{}, ErrDuplicateSlug
		}
		return models.Page{}, err
	}
	return p, nil
}

func (s *Store) UpdateContent(ctx context.Context, id primitive.ObjectID, title, bodyHTML string) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"title":      title,
		"body_html":  bodyHTML,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error {
	_, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"published":  published,
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
