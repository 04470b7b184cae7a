package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Project workflow states. Transitions: draft → submitted → approved or
// rejected; a rejected project returns to draft on edit.
const (
	ProjectDraft     = "draft"
	ProjectSubmitted = "submitted"
	ProjectApproved  = "approved"
	ProjectRejected  = "rejected"
)

// Project is an approval-workflow item.
type Project struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Status      string             `bson:"status" json:"status"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	SubmittedAt  *time.Time          `bson:"submitted_at,omitempty" json:"submitted_at,omitempty"`
	DecidedAt    *time.Time          `bson:"decided_at,omitempty" json:"decided_at,omitempty"`
	DecidedBy    *primitive.ObjectID `bson:"decided_by,omitempty" json:"decided_by,omitempty"`
	DecisionNote string              `bson:"decision_note,omitempty" json:"decision_note,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
