package projectstore_test

import (
	"testing"

	projectstore "github.com/corefield/opsdesk/internal/app/store/projects"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/corefield/opsdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_StartsAsDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Project{
		Name:        "Data Warehouse Rebuild",
		Description: "Replace the nightly batch with streaming.",
		OwnerID:     primitive.NewObjectID(),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.Status != models.ProjectDraft {
		t.Errorf("Status: got %q, want %q", created.Status, models.ProjectDraft)
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
}

func TestStore_Submit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Project{Name: "Submit Me", OwnerID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := store.Submit(ctx, created.ID); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	found, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Status != models.ProjectSubmitted {
		t.Errorf("Status: got %q, want %q", found.Status, models.ProjectSubmitted)
	}
	if found.SubmittedAt == nil {
		t.Error("expected SubmittedAt to be set")
	}

	// Submitting twice must fail.
	if err := store.Submit(ctx, created.ID); err != projectstore.ErrBadTransition {
		t.Errorf("second Submit: expected ErrBadTransition, got %v", err)
	}
}

func TestStore_Decide_Approve(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	project := fixtures.CreateProject(ctx, "Approve Me", models.ProjectSubmitted, owner)
	approver := primitive.NewObjectID()

	if err := store.Decide(ctx, project.ID, true, approver, "looks good"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	found, err := store.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Status != models.ProjectApproved {
		t.Errorf("Status: got %q, want %q", found.Status, models.ProjectApproved)
	}
	if found.DecidedBy == nil || *found.DecidedBy != approver {
		t.Errorf("DecidedBy: got %v, want %v", found.DecidedBy, approver)
	}
	if found.DecisionNote != "looks good" {
		t.Errorf("DecisionNote: got %q", found.DecisionNote)
	}
	if found.DecidedAt == nil {
		t.Error("expected DecidedAt to be set")
	}
}

func TestStore_Decide_RequiresSubmitted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.Project{Name: "Still Draft", OwnerID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	err = store.Decide(ctx, created.ID, true, primitive.NewObjectID(), "")
	if err != projectstore.ErrBadTransition {
		t.Errorf("expected ErrBadTransition deciding a draft, got %v", err)
	}
}

func TestStore_UpdateInfo_RejectedReturnsToDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	project := fixtures.CreateProject(ctx, "Rework Me", models.ProjectSubmitted, owner)

	if err := store.Decide(ctx, project.ID, false, primitive.NewObjectID(), "needs budget detail"); err != nil {
		t.Fatalf("Decide failed: %v", err)
	}

	if err := store.UpdateInfo(ctx, project.ID, "Rework Me v2", "Now with a budget."); err != nil {
		t.Fatalf("UpdateInfo failed: %v", err)
	}

	found, err := store.GetByID(ctx, project.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.Status != models.ProjectDraft {
		t.Errorf("Status: got %q, want %q after editing a rejected project", found.Status, models.ProjectDraft)
	}
	if found.DecisionNote != "" {
		t.Errorf("expected decision note to be cleared, got %q", found.DecisionNote)
	}
	if found.DecidedAt != nil {
		t.Error("expected DecidedAt to be cleared")
	}

	// And it can go around the loop again.
	if err := store.Submit(ctx, project.ID); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
}

func TestStore_UpdateInfo_SubmittedIsFrozen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	project := fixtures.CreateProject(ctx, "Frozen", models.ProjectSubmitted, primitive.NewObjectID())

	err := store.UpdateInfo(ctx, project.ID, "Thawed", "nope")
	if err != projectstore.ErrBadTransition {
		t.Errorf("expected ErrBadTransition editing a submitted project, got %v", err)
	}
}

func TestStore_Delete_OnlyDraftOrRejected(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := projectstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	draft := fixtures.CreateProject(ctx, "Draft Delete", models.ProjectDraft, owner)
	submitted := fixtures.CreateProject(ctx, "Submitted Keep", models.ProjectSubmitted, owner)

	count, err := store.Delete(ctx, draft.ID)
	if err != nil {
		t.Fatalf("Delete draft failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected draft deleted, got count %d", count)
	}

	count, err = store.Delete(ctx, submitted.ID)
	if err != nil {
		t.Fatalf("Delete submitted failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected submitted project to survive, got count %d", count)
	}
}
