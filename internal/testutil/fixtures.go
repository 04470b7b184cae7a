package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a portal account with the given permissions and the
// password "test-password".
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email, role string, perms []string) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("test-password"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("failed to hash fixture password: %v", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     fullName,
		FullNameCI:   text.Fold(fullName),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Permissions:  perms,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateAdmin creates a portal account carrying the ADMIN override.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, fullName, email, "admin", []string{"ADMIN"})
}

// CreateEmployee creates an active HR record.
func (f *Fixtures) CreateEmployee(ctx context.Context, fullName, email string) models.Employee {
	f.t.Helper()

	now := time.Now().UTC()
	emp := models.Employee{
		ID:         primitive.NewObjectID(),
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		Title:      "Engineer",
		Department: "Engineering",
		Status:     "active",
		HiredAt:    now.AddDate(-1, 0, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("employees").InsertOne(ctx, emp); err != nil {
		f.t.Fatalf("failed to create test employee: %v", err)
	}
	return emp
}

// CreateClient creates a billing client.
func (f *Fixtures) CreateClient(ctx context.Context, name, email string) models.Client {
	f.t.Helper()

	now := time.Now().UTC()
	cl := models.Client{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Email:     email,
		Company:   name + " LLC",
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("clients").InsertOne(ctx, cl); err != nil {
		f.t.Fatalf("failed to create test client: %v", err)
	}
	return cl
}

// CreateProject creates a project in the given workflow state.
func (f *Fixtures) CreateProject(ctx context.Context, name, status string, ownerID primitive.ObjectID) models.Project {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Project{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		Description: "Test project description",
		Status:      status,
		OwnerID:     ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status != models.ProjectDraft {
		sub := now
		p.SubmittedAt = &sub
	}

	if _, err := f.db.Collection("projects").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test project: %v", err)
	}
	return p
}

// CreatePage creates an unpublished CMS page.
func (f *Fixtures) CreatePage(ctx context.Context, slug, title string) models.Page {
	f.t.Helper()

	now := time.Now().UTC()
	pg := models.Page{
		ID:        primitive.NewObjectID(),
		Slug:      slug,
		Title:     title,
		BodyHTML:  "<p>Test body</p>",
		Published: false,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if _, err := f.db.Collection("pages").InsertOne(ctx, pg); err != nil {
		f.t.Fatalf("failed to create test page: %v", err)
	}
	return pg
}
