// internal/app/system/identity/resolver_test.go
package identity_test

import (
	"testing"

	"github.com/caseflowhq/caseflow/internal/app/system/identity"
	"github.com/caseflowhq/caseflow/internal/testutil"
	"go.uber.org/zap"
)

func TestResolveRoutingTotality(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	f := testutil.NewFixtures(t, db)
	resolver := identity.NewResolver(db, "972", zap.NewNop())

	// Unknown phone resolves to nil, not an error.
	sender, err := resolver.Resolve(ctx, "972509999999@c.us")
	if err != nil {
		t.Fatalf("Resolve unknown: %v", err)
	}
	if sender != nil {
		t.Errorf("unknown phone resolved to %+v", sender)
	}

	// Authorized user with zero memberships still resolves.
	zero := f.CreateAuthorizedUser(ctx, "Zero Orgs", "0501111111")
	sender, err = resolver.Resolve(ctx, "972501111111@c.us")
	if err != nil {
		t.Fatalf("Resolve zero-org: %v", err)
	}
	if sender == nil || sender.User.ID != zero.ID {
		t.Fatalf("sender = %+v", sender)
	}
	if len(sender.Organizations) != 0 {
		t.Errorf("organizations = %v, want none", sender.Organizations)
	}

	// Multi-org user gets organizations in name order.
	multi := f.CreateAuthorizedUser(ctx, "Multi Orgs", "0502222222")
	levi := f.CreateOrganization(ctx, "Levi & Co")
	cohen := f.CreateOrganization(ctx, "Cohen Law")
	f.CreateMembership(ctx, multi.ID, levi.ID)
	f.CreateMembership(ctx, multi.ID, cohen.ID)

	sender, err = resolver.Resolve(ctx, "972502222222@c.us")
	if err != nil {
		t.Fatalf("Resolve multi-org: %v", err)
	}
	if sender == nil || len(sender.Organizations) != 2 {
		t.Fatalf("sender = %+v", sender)
	}
	if sender.Organizations[0].Name != "Cohen Law" || sender.Organizations[1].Name != "Levi & Co" {
		t.Errorf("order = [%s, %s], want name order",
			sender.Organizations[0].Name, sender.Organizations[1].Name)
	}

	// Unauthorized users never resolve, even with a matching phone.
	f.CreateUnauthorizedUser(ctx, "No Access", "0503333333")
	sender, err = resolver.Resolve(ctx, "972503333333@c.us")
	if err != nil {
		t.Fatalf("Resolve unauthorized: %v", err)
	}
	if sender != nil {
		t.Errorf("unauthorized phone resolved to %+v", sender)
	}
}
