// internal/app/store/signingaudit/store.go
package signingaudit

import (
	"context"
	"time"

	"github.com/caseflowhq/caseflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store manages the append-only signing audit trail. Entries are written
// once and never mutated.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("signing_audit_log")}
}

// Append records one lifecycle event for a signing request.
func (s *Store) Append(ctx context.Context, requestID primitive.ObjectID, event string, metadata map[string]string) error {
	entry := models.SigningAuditEntry{
		ID:               primitive.NewObjectID(),
		SigningRequestID: requestID,
		Event:            event,
		Metadata:         metadata,
		Timestamp:        time.Now().UTC(),
	}
	_, err := s.c.InsertOne(ctx, entry)
	return err
}

// ListByRequest returns a request's audit entries in chronological order.
func (s *Store) ListByRequest(ctx context.Context, requestID primitive.ObjectID) ([]models.SigningAuditEntry, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"signing_request_id": requestID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var entries []models.SigningAuditEntry
	if err := cur.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}
