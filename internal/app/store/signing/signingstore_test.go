// internal/app/store/signing/signingstore_test.go
package signingstore_test

import (
	"errors"
	"testing"
	"time"

	signingstore "github.com/caseflowhq/caseflow/internal/app/store/signing"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/caseflowhq/caseflow/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func draftRequest(companyID primitive.ObjectID) models.SigningRequest {
	return models.SigningRequest{
		CompanyID:      companyID,
		CreatedBy:      primitive.NewObjectID(),
		FileName:       "contract.pdf",
		FileURL:        "signing/2026/01/x-contract.pdf",
		FileType:       "application/pdf",
		RecipientName:  "Dana Cohen",
		RecipientPhone: "972501234567",
		Fields: []models.SigningField{
			{ID: "sig1", Type: models.FieldTypeSignature, X: 0.1, Y: 0.8, Width: 0.3, Height: 0.06, Page: 1, Required: true},
		},
	}
}

func TestCreateIssuesTokenAndDraft(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingstore.New(db)
	created, err := store.Create(ctx, draftRequest(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.SigningStatusDraft {
		t.Errorf("status = %q, want draft", created.Status)
	}
	if len(created.AccessToken) != signingstore.TokenLength*2 {
		t.Errorf("token length = %d, want %d hex chars", len(created.AccessToken), signingstore.TokenLength*2)
	}
	if created.ExpiresAt.Before(time.Now().Add(29 * 24 * time.Hour)) {
		t.Errorf("default expiry %v too soon", created.ExpiresAt)
	}
}

func TestGetByTokenOnly(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingstore.New(db)
	created, err := store.Create(ctx, draftRequest(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByToken(ctx, created.AccessToken)
	if err != nil {
		t.Fatalf("GetByToken: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("got %s, want %s", got.ID.Hex(), created.ID.Hex())
	}

	if _, err := store.GetByToken(ctx, "unknown-token"); !errors.Is(err, signingstore.ErrNotFound) {
		t.Errorf("unknown token err = %v, want ErrNotFound", err)
	}
	if _, err := store.GetByToken(ctx, ""); !errors.Is(err, signingstore.ErrNotFound) {
		t.Errorf("empty token err = %v, want ErrNotFound", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingstore.New(db)
	created, err := store.Create(ctx, draftRequest(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := store.MarkSent(ctx, created.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	flipped, err := store.MarkOpened(ctx, created.ID)
	if err != nil {
		t.Fatalf("MarkOpened: %v", err)
	}
	if !flipped {
		t.Error("first MarkOpened should flip")
	}

	// Second open is a no-op: at-most-once.
	flipped, err = store.MarkOpened(ctx, created.ID)
	if err != nil {
		t.Fatalf("second MarkOpened: %v", err)
	}
	if flipped {
		t.Error("second MarkOpened should not flip")
	}

	values := map[string]string{"sig1": "data:image/png;base64,x"}
	if err := store.MarkSigned(ctx, created.ID, "signing/2026/01/signed/x.pdf", "203.0.113.7", "test-agent", values); err != nil {
		t.Fatalf("MarkSigned: %v", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != models.SigningStatusSigned {
		t.Errorf("status = %q, want signed", got.Status)
	}
	if got.SignedFileURL == "" || got.SignedAt == nil {
		t.Errorf("signed artifact metadata missing: %+v", got)
	}
	if got.SignedFieldValues["sig1"] == "" {
		t.Error("signed field values not stored")
	}
}

func TestTerminalImmutability(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingstore.New(db)
	created, err := store.Create(ctx, draftRequest(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := store.MarkSent(ctx, created.ID); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}
	if err := store.MarkSigned(ctx, created.ID, "signed.pdf", "ip", "ua", nil); err != nil {
		t.Fatalf("MarkSigned: %v", err)
	}

	if err := store.MarkSigned(ctx, created.ID, "other.pdf", "ip", "ua", nil); !errors.Is(err, signingstore.ErrTerminalState) {
		t.Errorf("re-sign err = %v, want ErrTerminalState", err)
	}
	if err := store.Cancel(ctx, created.ID); !errors.Is(err, signingstore.ErrTerminalState) {
		t.Errorf("cancel-after-sign err = %v, want ErrTerminalState", err)
	}
	if err := store.MarkExpired(ctx, created.ID); !errors.Is(err, signingstore.ErrTerminalState) {
		t.Errorf("expire-after-sign err = %v, want ErrTerminalState", err)
	}

	got, err := store.GetByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.SignedFileURL != "signed.pdf" {
		t.Errorf("signed artifact overwritten: %q", got.SignedFileURL)
	}
}

func TestTransitionGuards(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingstore.New(db)
	created, err := store.Create(ctx, draftRequest(primitive.NewObjectID()))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// draft cannot be signed; it was never sent.
	if err := store.MarkSigned(ctx, created.ID, "x.pdf", "ip", "ua", nil); !errors.Is(err, signingstore.ErrTerminalState) {
		t.Errorf("sign-from-draft err = %v, want ErrTerminalState", err)
	}

	// draft can be cancelled.
	if err := store.Cancel(ctx, created.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	// unknown id distinguishes from state conflict.
	if err := store.MarkSent(ctx, primitive.NewObjectID()); !errors.Is(err, signingstore.ErrNotFound) {
		t.Errorf("unknown id err = %v, want ErrNotFound", err)
	}
}

func TestListByCompanyScoped(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingstore.New(db)
	companyA := primitive.NewObjectID()
	companyB := primitive.NewObjectID()

	if _, err := store.Create(ctx, draftRequest(companyA)); err != nil {
		t.Fatalf("Create A: %v", err)
	}
	if _, err := store.Create(ctx, draftRequest(companyB)); err != nil {
		t.Fatalf("Create B: %v", err)
	}

	reqs, err := store.ListByCompany(ctx, companyA)
	if err != nil {
		t.Fatalf("ListByCompany: %v", err)
	}
	if len(reqs) != 1 || reqs[0].CompanyID != companyA {
		t.Errorf("list = %+v, want only company A's request", reqs)
	}
}
