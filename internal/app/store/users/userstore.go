// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/caseflowhq/caseflow/internal/app/system/phone"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

// ErrDuplicateEmail is returned when attempting to create a user with an
// email that already exists.
var ErrDuplicateEmail = errors.New("a user with this email already exists")

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.FullNameCI = text.Fold(u.FullName)
	if u.Status == "" {
		u.Status = "active"
	}
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// FindAuthorizedByPhone returns the WhatsApp-authorized user whose stored
// phone normalizes to the same canonical number as rawPhone, or
// mongo.ErrNoDocuments if none matches.
//
// Stored phone formats are not guaranteed consistent, so the comparison runs
// in Go over the (small) authorized set rather than as a query predicate.
func (s *Store) FindAuthorizedByPhone(ctx context.Context, rawPhone, countryCode string) (*models.User, error) {
	target := phone.Normalize(rawPhone, countryCode)
	if target == "" {
		return nil, mongo.ErrNoDocuments
	}

	cur, err := s.c.Find(ctx, bson.M{
		"whatsapp_authorized": true,
		"phone":               bson.M{"$nin": bson.A{"", nil}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var u models.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		if phone.Normalize(u.Phone, countryCode) == target {
			return &u, nil
		}
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return nil, mongo.ErrNoDocuments
}
