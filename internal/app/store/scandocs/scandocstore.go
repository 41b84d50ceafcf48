// internal/app/store/scandocs/scandocstore.go
package scandocstore

import (
	"context"
	"errors"
	"time"

	"github.com/caseflowhq/caseflow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrDuplicateDocument is returned when a document with the same
// (source, wa_message_id) pair already exists. The unique index is the
// dedup mechanism: callers insert and catch this error rather than checking
// first, so two concurrent redeliveries cannot both succeed.
var ErrDuplicateDocument = errors.New("a document with this message id was already processed")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("scanned_documents")}
}

// Insert persists a scanned document. Returns ErrDuplicateDocument if the
// whatsapp dedup key collides with an existing record.
func (s *Store) Insert(ctx context.Context, doc models.ScannedDocument) (models.ScannedDocument, error) {
	now := time.Now().UTC()
	doc.ID = primitive.NewObjectID()
	if doc.Status == "" {
		doc.Status = models.ScanStatusNeedsVerification
	}
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return models.ScannedDocument{}, ErrDuplicateDocument
		}
		return models.ScannedDocument{}, err
	}
	return doc, nil
}

// FindByMessageID returns the whatsapp-sourced document for a provider
// message id, or nil if it has not been processed.
func (s *Store) FindByMessageID(ctx context.Context, messageID string) (*models.ScannedDocument, error) {
	var doc models.ScannedDocument
	err := s.c.FindOne(ctx, bson.M{
		"source":        models.ScanSourceWhatsApp,
		"wa_message_id": messageID,
	}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// GetByID loads a document by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.ScannedDocument, error) {
	var doc models.ScannedDocument
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		return models.ScannedDocument{}, err
	}
	return doc, nil
}

// ListByOrganization returns an organization's documents, newest first.
func (s *Store) ListByOrganization(ctx context.Context, orgID primitive.ObjectID, limit int64) ([]models.ScannedDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cur, err := s.c.Find(ctx, bson.M{"organization_id": orgID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var docs []models.ScannedDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// UpdateReview applies a manual-review mutation: verification status and
// optional case/client links. Extraction fields are never rewritten here.
func (s *Store) UpdateReview(ctx context.Context, id primitive.ObjectID, status string, caseID, clientID *primitive.ObjectID) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if caseID != nil {
		set["linked_case_id"] = *caseID
	}
	if clientID != nil {
		set["linked_client_id"] = *clientID
	}
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
