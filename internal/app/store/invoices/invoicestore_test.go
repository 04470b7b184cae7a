package invoicestore_test

import (
	"testing"
	"time"

	invoicestore "github.com/corefield/opsdesk/internal/app/store/invoices"
	"github.com/corefield/opsdesk/internal/domain/models"
	"github.com/corefield/opsdesk/internal/testutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_Create_AssignsNumberAndRef(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	first, err := store.Create(ctx, models.Invoice{
		ClientID: primitive.NewObjectID(),
		Items: []models.InvoiceItem{
			{Description: "Consulting", Quantity: 10, UnitCents: 15000},
			{Description: "Travel", Quantity: 1, UnitCents: 42050},
		},
		DueAt: time.Now().AddDate(0, 1, 0),
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if first.Number != 1 {
		t.Errorf("Number: got %d, want 1", first.Number)
	}
	if first.Status != models.InvoiceDraft {
		t.Errorf("Status: got %q, want %q", first.Status, models.InvoiceDraft)
	}
	if first.TotalCents != 10*15000+42050 {
		t.Errorf("TotalCents: got %d, want %d", first.TotalCents, 10*15000+42050)
	}
	if _, err := uuid.Parse(first.ExternalRef); err != nil {
		t.Errorf("ExternalRef %q is not a UUID: %v", first.ExternalRef, err)
	}

	second, err := store.Create(ctx, models.Invoice{ClientID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if second.Number != 2 {
		t.Errorf("second Number: got %d, want 2", second.Number)
	}
	if second.ExternalRef == first.ExternalRef {
		t.Error("external refs must be unique")
	}
}

func TestStore_UpdateItems_DraftOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inv, err := store.Create(ctx, models.Invoice{
		ClientID: primitive.NewObjectID(),
		Items:    []models.InvoiceItem{{Description: "Old", Quantity: 1, UnitCents: 100}},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	due := time.Now().AddDate(0, 0, 30)
	items := []models.InvoiceItem{{Description: "New", Quantity: 3, UnitCents: 500}}
	if err := store.UpdateItems(ctx, inv.ID, items, due); err != nil {
		t.Fatalf("UpdateItems failed: %v", err)
	}

	found, err := store.GetByID(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if found.TotalCents != 1500 {
		t.Errorf("TotalCents: got %d, want 1500", found.TotalCents)
	}

	// Send it, then editing must fail.
	if err := store.SetStatus(ctx, inv.ID, models.InvoiceDraft, models.InvoiceSent); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if err := store.UpdateItems(ctx, inv.ID, items, due); err != invoicestore.ErrNotEditable {
		t.Errorf("expected ErrNotEditable after send, got %v", err)
	}
}

func TestStore_SetStatus_EnforcesTransition(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inv, err := store.Create(ctx, models.Invoice{ClientID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Marking a draft as paid skips "sent" and must be rejected.
	if err := store.SetStatus(ctx, inv.ID, models.InvoiceSent, models.InvoicePaid); err != mongo.ErrNoDocuments {
		t.Errorf("expected mongo.ErrNoDocuments for wrong from-status, got %v", err)
	}

	if err := store.SetStatus(ctx, inv.ID, models.InvoiceDraft, models.InvoiceSent); err != nil {
		t.Fatalf("draft→sent failed: %v", err)
	}
	if err := store.SetStatus(ctx, inv.ID, models.InvoiceSent, models.InvoicePaid); err != nil {
		t.Fatalf("sent→paid failed: %v", err)
	}
}

func TestStore_Delete_DraftOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := invoicestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	inv, err := store.Create(ctx, models.Invoice{ClientID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := store.SetStatus(ctx, inv.ID, models.InvoiceDraft, models.InvoiceSent); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	count, err := store.Delete(ctx, inv.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected sent invoice to survive delete, got count %d", count)
	}

	draft, err := store.Create(ctx, models.Invoice{ClientID: primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	count, err = store.Delete(ctx, draft.ID)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected draft deleted, got count %d", count)
	}
}
