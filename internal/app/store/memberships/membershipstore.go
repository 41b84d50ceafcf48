// internal/app/store/memberships/membershipstore.go
package membershipstore

import (
	"context"
	"errors"
	"time"

	organizationstore "github.com/caseflowhq/caseflow/internal/app/store/organizations"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c    *mongo.Collection
	orgs *organizationstore.Store
}

var ErrDuplicateMembership = errors.New("user is already a member of this organization")

func New(db *mongo.Database) *Store {
	return &Store{
		c:    db.Collection("org_memberships"),
		orgs: organizationstore.New(db),
	}
}

// Add creates a membership linking userID to orgID.
func (s *Store) Add(ctx context.Context, userID, orgID primitive.ObjectID) error {
	doc := bson.M{
		"user_id":    userID,
		"org_id":     orgID,
		"created_at": time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateMembership
		}
		return err
	}
	return nil
}

// Remove deletes the membership document for (userID, orgID).
func (s *Store) Remove(ctx context.Context, userID, orgID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "org_id": orgID})
	return err
}

// OrganizationsForUser returns the organizations a user belongs to, ordered
// by name then id.
func (s *Store) OrganizationsForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Organization, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var memberships []models.OrgMembership
	if err := cur.All(ctx, &memberships); err != nil {
		return nil, err
	}
	if len(memberships) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, 0, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.OrgID)
	}
	return s.orgs.GetByIDs(ctx, ids)
}

// CountByUser returns the number of organizations a user belongs to.
func (s *Store) CountByUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"user_id": userID})
}
