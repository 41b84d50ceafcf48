// internal/app/store/signing/signingstore.go
package signingstore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/caseflowhq/caseflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// TokenLength is the access-token length in bytes (24 bytes = 48 hex
	// chars). The token is the sole public identifier of a request.
	TokenLength = 24
	// DefaultExpiry is the signing window applied when the creator does not
	// choose one.
	DefaultExpiry = 30 * 24 * time.Hour
)

var (
	// ErrNotFound is returned when no request matches the given token or id.
	ErrNotFound = errors.New("signing request not found")
	// ErrTerminalState is returned when a transition is attempted on a
	// signed, cancelled, or expired request.
	ErrTerminalState = errors.New("signing request is in a terminal state")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("signing_requests")}
}

// Create inserts a new request in draft with a fresh access token.
func (s *Store) Create(ctx context.Context, req models.SigningRequest) (models.SigningRequest, error) {
	now := time.Now().UTC()
	req.ID = primitive.NewObjectID()
	req.AccessToken = generateToken()
	req.Status = models.SigningStatusDraft
	if req.ExpiresAt.IsZero() {
		req.ExpiresAt = now.Add(DefaultExpiry)
	}
	req.CreatedAt = now
	req.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, req); err != nil {
		return models.SigningRequest{}, err
	}
	return req, nil
}

// GetByToken looks a request up by its public access token. Lookups by token
// only — never by internal id — so public URLs cannot be enumerated.
func (s *Store) GetByToken(ctx context.Context, token string) (*models.SigningRequest, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var req models.SigningRequest
	err := s.c.FindOne(ctx, bson.M{"access_token": token}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// GetByID loads a request by internal id (authenticated org surface only).
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.SigningRequest, error) {
	var req models.SigningRequest
	err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListByCompany returns an organization's requests, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.SigningRequest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var reqs []models.SigningRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, err
	}
	return reqs, nil
}

// MarkSent flips draft → sent.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": id, "status": models.SigningStatusDraft},
		bson.M{"status": models.SigningStatusSent})
}

// MarkOpened flips sent → opened. The status filter makes the transition
// happen at most once even under concurrent first-opens; callers treat a
// no-match as "already opened" and skip the audit entry.
func (s *Store) MarkOpened(ctx context.Context, id primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.SigningStatusSent},
		bson.M{"$set": bson.M{
			"status":     models.SigningStatusOpened,
			"updated_at": time.Now().UTC(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// MarkExpired flips a lapsed sent/opened request to expired. Expiry is
// evaluated lazily at access time; there is no background sweeper.
func (s *Store) MarkExpired(ctx context.Context, id primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{
			models.SigningStatusSent, models.SigningStatusOpened,
		}}},
		bson.M{"status": models.SigningStatusExpired})
}

// Cancel moves any non-terminal request to cancelled.
func (s *Store) Cancel(ctx context.Context, id primitive.ObjectID) error {
	return s.transition(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{
			models.SigningStatusDraft, models.SigningStatusSent, models.SigningStatusOpened,
		}}},
		bson.M{"status": models.SigningStatusCancelled})
}

// MarkSigned records the signed artifact and signer metadata and flips the
// request to signed, in a single update. It must only be called after the
// signed artifact is safely stored: an upload failure leaves the request in
// its prior non-terminal state.
func (s *Store) MarkSigned(ctx context.Context, id primitive.ObjectID, signedFileURL, signerIP, signerUA string, values map[string]string) error {
	now := time.Now().UTC()
	return s.transition(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": bson.A{
			models.SigningStatusSent, models.SigningStatusOpened,
		}}},
		bson.M{
			"status":              models.SigningStatusSigned,
			"signed_file_url":     signedFileURL,
			"signed_at":           now,
			"signer_ip":           signerIP,
			"signer_user_agent":   signerUA,
			"signed_field_values": values,
		})
}

// transition applies $set (plus updated_at) under a guarding filter. A
// no-match means the request either does not exist or is no longer in a
// state the transition is legal from.
func (s *Store) transition(ctx context.Context, filter, set bson.M) error {
	set["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish missing from terminal for callers' error copy.
		id := filter["_id"]
		if err := s.c.FindOne(ctx, bson.M{"_id": id}).Err(); err == mongo.ErrNoDocuments {
			return ErrNotFound
		}
		return ErrTerminalState
	}
	return nil
}

// generateToken returns a high-entropy random hex token. Panics if the
// system's cryptographic random number generator fails.
func generateToken() string {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
