// internal/app/system/identity/resolver.go
package identity

import (
	"context"

	membershipstore "github.com/caseflowhq/caseflow/internal/app/store/memberships"
	userstore "github.com/caseflowhq/caseflow/internal/app/store/users"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Sender is a resolved inbound phone: the matched authorized user and the
// organizations they may file documents into, in stable menu order.
type Sender struct {
	User          *models.User
	Organizations []models.Organization
}

// Resolver maps a raw inbound phone number to an authorized user and their
// tenant memberships.
type Resolver struct {
	users       *userstore.Store
	memberships *membershipstore.Store
	countryCode string
	log         *zap.Logger
}

func NewResolver(db *mongo.Database, countryCode string, logger *zap.Logger) *Resolver {
	return &Resolver{
		users:       userstore.New(db),
		memberships: membershipstore.New(db),
		countryCode: countryCode,
		log:         logger,
	}
}

// Resolve returns the authorized sender for a raw phone, or nil if no
// authorized user matches. A matched user with zero memberships still
// resolves (callers reject with different copy than an unknown phone, but
// both are rejections).
//
// Organizations come back ordered by name then id; the order is fixed
// between menu rendering and reply parsing by snapshotting it into the
// pending-selection record, so a membership edit mid-conversation cannot
// reshuffle the menu.
func (r *Resolver) Resolve(ctx context.Context, rawPhone string) (*Sender, error) {
	user, err := r.users.FindAuthorizedByPhone(ctx, rawPhone, r.countryCode)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	orgs, err := r.memberships.OrganizationsForUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	r.log.Debug("resolved inbound sender",
		zap.String("user_id", user.ID.Hex()),
		zap.Int("organizations", len(orgs)))

	return &Sender{User: user, Organizations: orgs}, nil
}
