package userstore_test

import (
	"testing"

	userstore "github.com/corefield/opsdesk/internal/app/store/users"
	"github.com/corefield/opsdesk/internal/app/system/authz"
	"github.com/corefield/opsdesk/internal/app/system/indexes"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/corefield/opsdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	user := models.User{
		FullName:    "Ada Admin",
		Email:       "Ada@Example.COM",
		Role:        "admin",
		Permissions: []string{authz.Override},
	}

	created, err := store.Create(ctx, user)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Email != "ada@example.com" {
		t.Errorf("Email: got %q, want folded lowercase", created.Email)
	}
	if created.FullNameCI == "" {
		t.Error("expected FullNameCI to be set")
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if created.Status != "active" {
		t.Errorf("expected status 'active', got %q", created.Status)
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// The unique index normally comes from startup; create it here so the
	// duplicate insert actually collides.
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	if _, err := store.Create(ctx, models.User{FullName: "User One", Email: "dup@example.com", Role: "staff"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	second := models.User{FullName: "User Two", Email: "dup@example.com", Role: "staff"}
	if _, err := store.Create(ctx, second); err != userstore.ErrDuplicateEmail {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByEmail_FoldsCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "Casey Case",
		Email:    "FindMe@Example.COM",
		Role:     "staff",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	found, err := store.GetByEmail(ctx, "FINDME@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("ID: got %v, want %v", found.ID, created.ID)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.GetByID(ctx, primitive.NewObjectID())
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments, got %v", err)
	}
}

func TestStore_UpdateInfo(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName:    "Original Name",
		Email:       "update@example.com",
		Role:        "staff",
		Permissions: []string{authz.PermViewInvoices},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	perms := []string{authz.PermViewInvoices, authz.PermManageInvoices}
	if err := store.UpdateInfo(ctx, created.ID, "Updated Name", "billing", "active", perms); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.FullName != "Updated Name" {
		t.Errorf("FullName: got %q, want %q", found.FullName, "Updated Name")
	}
	if found.Role != "billing" {
		t.Errorf("Role: got %q, want %q", found.Role, "billing")
	}
	if len(found.Permissions) != 2 {
		t.Errorf("Permissions: got %v, want 2 entries", found.Permissions)
	}
}

func TestStore_SetPasswordHash(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "Hash User",
		Email:    "hash@example.com",
		Role:     "staff",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.SetPasswordHash(ctx, created.ID, "new-hash"); err != nil {
		t.Fatalf("SetPasswordHash failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.PasswordHash != "new-hash" {
		t.Errorf("PasswordHash: got %q, want %q", found.PasswordHash, "new-hash")
	}
}

func TestStore_Delete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName: "Delete Me",
		Email:    "delete@example.com",
		Role:     "staff",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	count, err := store.Delete(ctx, created.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 deleted, got %d", count)
	}

	_, err = store.GetByID(ctx, created.ID)
	if err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments after delete, got %v", err)
	}
}
