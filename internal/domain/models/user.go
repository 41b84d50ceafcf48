// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account in the legal-office platform. Accounts are
// created and edited by the administrative UI; this service reads them to
// resolve inbound WhatsApp senders.
//
// Phone is stored as entered by an administrator; formats are not guaranteed
// consistent, so every comparison goes through phone.Normalize first.
type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	FullNameCI string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email      string             `bson:"email" json:"email"`
	Phone      string             `bson:"phone,omitempty" json:"phone,omitempty"`

	// WhatsAppAuthorized gates the document-ingestion pipeline. Only users
	// with this flag are considered when resolving an inbound sender.
	WhatsAppAuthorized bool `bson:"whatsapp_authorized" json:"whatsapp_authorized"`

	Status string `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
