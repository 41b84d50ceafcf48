// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Two of these indexes carry correctness, not just performance:
  - scanned_documents (source, wa_message_id) unique: the idempotency key
    that makes provider redelivery safe (insert-and-catch-conflict).
  - pending_selections chat_id unique: at most one staged document per chat.
*/
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureOrganizations(ctx, db); err != nil {
		problems = append(problems, "organizations: "+err.Error())
	}
	if err := ensureOrgMemberships(ctx, db); err != nil {
		problems = append(problems, "org_memberships: "+err.Error())
	}
	if err := ensurePendingSelections(ctx, db); err != nil {
		problems = append(problems, "pending_selections: "+err.Error())
	}
	if err := ensureScannedDocuments(ctx, db); err != nil {
		problems = append(problems, "scanned_documents: "+err.Error())
	}
	if err := ensureSigningRequests(ctx, db); err != nil {
		problems = append(problems, "signing_requests: "+err.Error())
	}
	if err := ensureSigningAuditLog(ctx, db); err != nil {
		problems = append(problems, "signing_audit_log: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	logger.Info("indexes ensured")
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("users").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_users_email"),
		},
		{
			Keys:    bson.D{{Key: "whatsapp_authorized", Value: 1}},
			Options: options.Index().SetName("idx_users_wa_authorized"),
		},
	})
	return err
}

func ensureOrganizations(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("organizations").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_orgs_name_ci"),
		},
	})
	return err
}

func ensureOrgMemberships(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("org_memberships").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "org_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_memberships_user_org"),
		},
		{
			Keys:    bson.D{{Key: "org_id", Value: 1}},
			Options: options.Index().SetName("idx_memberships_org"),
		},
	})
	return err
}

func ensurePendingSelections(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("pending_selections").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "chat_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_pending_chat"),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0).SetName("idx_pending_ttl"),
		},
	})
	return err
}

func ensureScannedDocuments(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("scanned_documents").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			// Dedup key for at-least-once webhook delivery. Partial: only
			// whatsapp-sourced documents carry a provider message id.
			Keys: bson.D{{Key: "source", Value: 1}, {Key: "wa_message_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetName("idx_scandocs_dedup").
				SetPartialFilterExpression(bson.M{"wa_message_id": bson.M{"$exists": true}}),
		},
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_scandocs_org_recent"),
		},
	})
	return err
}

func ensureSigningRequests(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("signing_requests").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "access_token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("idx_signing_token"),
		},
		{
			Keys:    bson.D{{Key: "company_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_signing_company_recent"),
		},
	})
	return err
}

func ensureSigningAuditLog(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("signing_audit_log").Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "signing_request_id", Value: 1}, {Key: "timestamp", Value: 1}},
			Options: options.Index().SetName("idx_signing_audit_request"),
		},
	})
	return err
}
