// internal/app/store/memberships/membershipstore_test.go
package membershipstore_test

import (
	"errors"
	"testing"

	membershipstore "github.com/caseflowhq/caseflow/internal/app/store/memberships"
	"github.com/caseflowhq/caseflow/internal/app/system/indexes"
	"github.com/caseflowhq/caseflow/internal/testutil"
	"go.uber.org/zap"
)

func TestOrganizationsForUserStableOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	user := f.CreateAuthorizedUser(ctx, "Dana Cohen", "0501234567")

	// Inserted out of name order on purpose.
	levi := f.CreateOrganization(ctx, "Levi & Co")
	cohen := f.CreateOrganization(ctx, "Cohen Law")
	f.CreateMembership(ctx, user.ID, levi.ID)
	f.CreateMembership(ctx, user.ID, cohen.ID)

	store := membershipstore.New(db)
	orgs, err := store.OrganizationsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("OrganizationsForUser: %v", err)
	}
	if len(orgs) != 2 {
		t.Fatalf("got %d organizations, want 2", len(orgs))
	}
	if orgs[0].Name != "Cohen Law" || orgs[1].Name != "Levi & Co" {
		t.Errorf("order = [%s, %s], want name order", orgs[0].Name, orgs[1].Name)
	}
}

func TestOrganizationsForUserEmpty(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	user := f.CreateAuthorizedUser(ctx, "Lone User", "0501234567")

	store := membershipstore.New(db)
	orgs, err := store.OrganizationsForUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("OrganizationsForUser: %v", err)
	}
	if len(orgs) != 0 {
		t.Errorf("got %d organizations, want 0", len(orgs))
	}
}

func TestAddRejectsDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}

	f := testutil.NewFixtures(t, db)
	user := f.CreateAuthorizedUser(ctx, "Dana Cohen", "0501234567")
	org := f.CreateOrganization(ctx, "Cohen Law")

	store := membershipstore.New(db)
	if err := store.Add(ctx, user.ID, org.ID); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	if err := store.Add(ctx, user.ID, org.ID); !errors.Is(err, membershipstore.ErrDuplicateMembership) {
		t.Errorf("second Add err = %v, want ErrDuplicateMembership", err)
	}
}
