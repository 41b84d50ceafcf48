// internal/testutil/fixtures.go
package testutil

import (
	"context"
	"testing"
	"time"

	organizationstore "github.com/caseflowhq/caseflow/internal/app/store/organizations"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateOrganization creates a test organization with the given name.
func (f *Fixtures) CreateOrganization(ctx context.Context, name string) models.Organization {
	f.t.Helper()

	org, err := organizationstore.New(f.db).Create(ctx, models.Organization{Name: name})
	if err != nil {
		f.t.Fatalf("failed to create test organization: %v", err)
	}
	return org
}

// CreateAuthorizedUser creates a user flagged for WhatsApp intake with the
// given phone (stored as-is; store formats vary on purpose in tests).
func (f *Fixtures) CreateAuthorizedUser(ctx context.Context, fullName, phone string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, phone, true)
}

// CreateUnauthorizedUser creates a user with a phone but no intake access.
func (f *Fixtures) CreateUnauthorizedUser(ctx context.Context, fullName, phone string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, phone, false)
}

func (f *Fixtures) createUser(ctx context.Context, fullName, phone string, authorized bool) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	user := models.User{
		ID:                 primitive.NewObjectID(),
		FullName:           fullName,
		FullNameCI:         text.Fold(fullName),
		Email:              text.Fold(fullName) + "@example.test",
		Phone:              phone,
		WhatsAppAuthorized: authorized,
		Status:             "active",
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, user); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateMembership links a user to an organization.
func (f *Fixtures) CreateMembership(ctx context.Context, userID, orgID primitive.ObjectID) models.OrgMembership {
	f.t.Helper()

	m := models.OrgMembership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		OrgID:     orgID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("org_memberships").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateSigningRequest inserts a signing request in the given status with a
// deterministic token derived from the request id.
func (f *Fixtures) CreateSigningRequest(ctx context.Context, companyID primitive.ObjectID, status string) models.SigningRequest {
	f.t.Helper()

	now := time.Now().UTC()
	id := primitive.NewObjectID()
	req := models.SigningRequest{
		ID:            id,
		CompanyID:     companyID,
		CreatedBy:     primitive.NewObjectID(),
		FileName:      "contract.pdf",
		FileURL:       "signing/2026/01/test-contract.pdf",
		FileType:      "application/pdf",
		RecipientName: "Test Recipient",
		AccessToken:   id.Hex() + id.Hex(), // 48 hex chars, unique per request
		Status:        status,
		ExpiresAt:     now.Add(30 * 24 * time.Hour),
		Fields: []models.SigningField{
			{ID: "sig1", Type: models.FieldTypeSignature, Label: "חתימה", X: 0.1, Y: 0.8, Width: 0.3, Height: 0.06, Page: 1, Required: true},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("signing_requests").InsertOne(ctx, req); err != nil {
		f.t.Fatalf("failed to create test signing request: %v", err)
	}
	return req
}
