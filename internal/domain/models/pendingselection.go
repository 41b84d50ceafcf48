// internal/domain/models/pendingselection.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrgChoice is one numbered entry of the organization-selection menu sent to
// a multi-tenant sender. Order is fixed at staging time: the reply index is
// resolved against the stored slice, never against a fresh query.
type OrgChoice struct {
	ID   primitive.ObjectID `bson:"id" json:"id"`
	Name string             `bson:"name" json:"name"`
}

// PendingSelection stages an inbound WhatsApp document while the sender
// chooses which organization it belongs to. At most one exists per chat;
// a newer document replaces the older record (last-document-wins).
//
// Choices is never empty while the record exists: single-org senders are
// routed immediately and never staged.
type PendingSelection struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	ChatID      string             `bson:"chat_id"`
	PhoneNumber string             `bson:"phone_number"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Choices     []OrgChoice        `bson:"choices"`

	// StagedPath points at the temporarily stored document bytes; it is
	// removed together with this record on consumption.
	StagedPath string `bson:"staged_path"`
	MimeType   string `bson:"mime_type"`
	FileName   string `bson:"file_name"`
	MessageID  string `bson:"message_id"`
	SenderName string `bson:"sender_name,omitempty"`

	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at"` // TTL index field
}
