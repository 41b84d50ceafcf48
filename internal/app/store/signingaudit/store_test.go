// internal/app/store/signingaudit/store_test.go
package signingaudit_test

import (
	"testing"

	"github.com/caseflowhq/caseflow/internal/app/store/signingaudit"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/caseflowhq/caseflow/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestAppendAndListInOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingaudit.New(db)
	requestID := primitive.NewObjectID()

	events := []string{
		models.SigningEventSent,
		models.SigningEventOpened,
		models.SigningEventSigned,
	}
	for _, ev := range events {
		if err := store.Append(ctx, requestID, ev, map[string]string{"ip": "203.0.113.7"}); err != nil {
			t.Fatalf("Append(%s): %v", ev, err)
		}
	}

	entries, err := store.ListByRequest(ctx, requestID)
	if err != nil {
		t.Fatalf("ListByRequest: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}
	for i, ev := range events {
		if entries[i].Event != ev {
			t.Errorf("entries[%d].Event = %q, want %q", i, entries[i].Event, ev)
		}
	}
	if entries[1].Metadata["ip"] != "203.0.113.7" {
		t.Errorf("metadata = %v", entries[1].Metadata)
	}
}

func TestListScopedToRequest(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := signingaudit.New(db)
	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	if err := store.Append(ctx, a, models.SigningEventSent, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Append(ctx, b, models.SigningEventSent, nil); err != nil {
		t.Fatalf("Append: %v", err)
	}

	entries, err := store.ListByRequest(ctx, a)
	if err != nil {
		t.Fatalf("ListByRequest: %v", err)
	}
	if len(entries) != 1 || entries[0].SigningRequestID != a {
		t.Errorf("entries = %+v, want only request a's entry", entries)
	}
}
