// internal/app/store/pendingselect/store.go
package pendingselect

import (
	"context"
	"time"

	"github.com/caseflowhq/caseflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultExpiry is how long a staged document waits for the sender's
// organization choice before it lapses.
const DefaultExpiry = 30 * time.Minute

// Store holds the per-chat pending organization selections. A chat has at
// most one active selection: saving a new one replaces any prior record
// (last-document-wins).
type Store struct {
	c      *mongo.Collection
	expiry time.Duration
}

// New creates a Store with the given expiry window. Zero or negative means
// DefaultExpiry.
func New(db *mongo.Database, expiry time.Duration) *Store {
	if expiry <= 0 {
		expiry = DefaultExpiry
	}
	return &Store{
		c:      db.Collection("pending_selections"),
		expiry: expiry,
	}
}

// Expiry returns the configured selection window.
func (s *Store) Expiry() time.Duration {
	return s.expiry
}

// Save stages a selection for the chat, replacing any existing record. The
// replaced record (if any) is returned so the caller can delete its staged
// bytes, which would otherwise be orphaned until expiry.
func (s *Store) Save(ctx context.Context, sel models.PendingSelection) (*models.PendingSelection, error) {
	var replaced *models.PendingSelection
	var prior models.PendingSelection
	err := s.c.FindOneAndDelete(ctx, bson.M{"chat_id": sel.ChatID}).Decode(&prior)
	switch err {
	case nil:
		replaced = &prior
	case mongo.ErrNoDocuments:
		// first selection for this chat
	default:
		return nil, err
	}

	now := time.Now().UTC()
	sel.ID = primitive.NewObjectID()
	sel.CreatedAt = now
	sel.ExpiresAt = now.Add(s.expiry)
	if _, err := s.c.InsertOne(ctx, sel); err != nil {
		return nil, err
	}
	return replaced, nil
}

// FindActive returns the unexpired selection for the chat, or nil if none
// exists. A row whose expires_at has passed is treated identically to "not
// found" — the TTL index removes it eventually, but correctness never
// depends on that sweep.
func (s *Store) FindActive(ctx context.Context, chatID string) (*models.PendingSelection, error) {
	var sel models.PendingSelection
	err := s.c.FindOne(ctx, bson.M{
		"chat_id":    chatID,
		"expires_at": bson.M{"$gt": time.Now().UTC()},
	}).Decode(&sel)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sel, nil
}

// Delete removes a consumed selection by id.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
