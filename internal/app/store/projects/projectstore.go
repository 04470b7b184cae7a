// internal/app/store/projects/projectstore.go
package projectstore

import (
	"context"
	"errors"
	"time"

	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrBadTransition means the project is not in the state the operation
// requires (e.g. approving a draft, or submitting twice).
var ErrBadTransition = errors.New("project is not in the required state")

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("projects")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Project, error) {
	var p models.Project
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// List returns projects by name, optionally filtered by status.
func (s *Store) List(ctx context.Context, status string, skip, limit int64) ([]models.Project, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name_ci", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(skip).SetLimit(limit)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []models.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) Create(ctx context.Context, p models.Project) (models.Project, error) {
	now := time.Now().UTC()
	p.ID = primitive.NewObjectID()
	p.NameCI = text.Fold(p.Name)
	p.Status = models.ProjectDraft
	p.CreatedAt = now
	p.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Project{}, err
	}
	return p, nil
}

// UpdateInfo edits name and description. Editing a rejected project
// returns it to draft so it can be resubmitted.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, name, description string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{models.ProjectDraft, models.ProjectRejected}}},
		bson.M{
			"$set": bson.M{
				"name":        name,
				"name_ci":     text.Fold(name),
				"description": description,
				"status":      models.ProjectDraft,
				"updated_at":  time.Now().UTC(),
			},
			"$unset": bson.M{
				"decided_at":    "",
				"decided_by":    "",
				"decision_note": "",
			},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBadTransition
	}
	return nil
}

// Submit moves a draft project into the approval queue.
func (s *Store) Submit(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ProjectDraft},
		bson.M{"$set": bson.M{
			"status":       models.ProjectSubmitted,
			"submitted_at": now,
			"updated_at":   now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBadTransition
	}
	return nil
}

// Decide approves or rejects a submitted project, recording who decided
// and why. The status filter makes the transition race-safe.
func (s *Store) Decide(ctx context.Context, id primitive.ObjectID, approved bool, decidedBy primitive.ObjectID, note string) error {
	status := models.ProjectRejected
	if approved {
		status = models.ProjectApproved
	}
	now := time.Now().UTC()
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.ProjectSubmitted},
		bson.M{"$set": bson.M{
			"status":        status,
			"decided_at":    now,
			"decided_by":    decidedBy,
			"decision_note": note,
			"updated_at":    now,
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBadTransition
	}
	return nil
}

// Delete removes a project unless it is awaiting or past a decision.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{models.ProjectDraft, models.ProjectRejected}}})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
