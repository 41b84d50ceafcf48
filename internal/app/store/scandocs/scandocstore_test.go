// internal/app/store/scandocs/scandocstore_test.go
package scandocstore_test

import (
	"errors"
	"testing"

	scandocstore "github.com/caseflowhq/caseflow/internal/app/store/scandocs"
	"github.com/caseflowhq/caseflow/internal/app/system/indexes"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/caseflowhq/caseflow/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func whatsappDoc(orgID primitive.ObjectID, messageID string) models.ScannedDocument {
	return models.ScannedDocument{
		OrganizationID: orgID,
		FileName:       "contract.pdf",
		StoragePath:    "documents/2026/01/ab12cd34-contract.pdf",
		MimeType:       "application/pdf",
		FileSizeBytes:  1024,
		Source:         models.ScanSourceWhatsApp,
		WAChatID:       "972501234567@c.us",
		WAMessageID:    messageID,
	}
}

func TestInsertDefaultsAndDedup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	store := scandocstore.New(db)
	orgID := primitive.NewObjectID()

	saved, err := store.Insert(ctx, whatsappDoc(orgID, "MSG1"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if saved.Status != models.ScanStatusNeedsVerification {
		t.Errorf("status = %q, want default needs_verification", saved.Status)
	}

	// Redelivery of the same provider message id must not create a second
	// record, even for a different organization.
	if _, err := store.Insert(ctx, whatsappDoc(orgID, "MSG1")); !errors.Is(err, scandocstore.ErrDuplicateDocument) {
		t.Errorf("duplicate Insert err = %v, want ErrDuplicateDocument", err)
	}

	docs, err := store.ListByOrganization(ctx, orgID, 0)
	if err != nil {
		t.Fatalf("ListByOrganization: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("got %d documents, want 1", len(docs))
	}
}

func TestWebUploadsNotDeduped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	store := scandocstore.New(db)
	orgID := primitive.NewObjectID()

	// Web uploads carry no provider message id; the partial dedup index
	// must not collide them.
	for i := 0; i < 2; i++ {
		doc := models.ScannedDocument{
			OrganizationID: orgID,
			FileName:       "upload.pdf",
			StoragePath:    "documents/2026/01/x-upload.pdf",
			MimeType:       "application/pdf",
			Source:         models.ScanSourceWeb,
		}
		if _, err := store.Insert(ctx, doc); err != nil {
			t.Fatalf("web Insert %d: %v", i, err)
		}
	}
}

func TestFindByMessageID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := scandocstore.New(db)
	orgID := primitive.NewObjectID()

	if _, err := store.Insert(ctx, whatsappDoc(orgID, "MSG1")); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	got, err := store.FindByMessageID(ctx, "MSG1")
	if err != nil {
		t.Fatalf("FindByMessageID: %v", err)
	}
	if got == nil || got.WAMessageID != "MSG1" {
		t.Errorf("doc = %+v", got)
	}

	missing, err := store.FindByMessageID(ctx, "MSG2")
	if err != nil {
		t.Fatalf("FindByMessageID missing: %v", err)
	}
	if missing != nil {
		t.Errorf("unexpected match: %+v", missing)
	}
}

func TestUpdateReview(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := scandocstore.New(db)
	saved, err := store.Insert(ctx, whatsappDoc(primitive.NewObjectID(), "MSG1"))
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}

	caseID := primitive.NewObjectID()
	if err := store.UpdateReview(ctx, saved.ID, models.ScanStatusVerified, &caseID, nil); err != nil {
		t.Fatalf("UpdateReview: %v", err)
	}

	got, err := store.GetByID(ctx, saved.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.ScanStatusVerified {
		t.Errorf("status = %q, want verified", got.Status)
	}
	if got.LinkedCaseID == nil || *got.LinkedCaseID != caseID {
		t.Errorf("linked_case_id = %v, want %s", got.LinkedCaseID, caseID.Hex())
	}

	if err := store.UpdateReview(ctx, primitive.NewObjectID(), models.ScanStatusVerified, nil, nil); err != mongo.ErrNoDocuments {
		t.Errorf("missing doc err = %v, want mongo.ErrNoDocuments", err)
	}
}
