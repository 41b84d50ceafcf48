// internal/domain/models/signing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Signing-request lifecycle statuses. draft → sent → opened → signed;
// sent/opened may lapse to expired or be cancelled. signed, cancelled and
// expired are terminal.
const (
	SigningStatusDraft     = "draft"
	SigningStatusSent      = "sent"
	SigningStatusOpened    = "opened"
	SigningStatusSigned    = "signed"
	SigningStatusCancelled = "cancelled"
	SigningStatusExpired   = "expired"
)

// Signing field types.
const (
	FieldTypeFirstName = "first_name"
	FieldTypeLastName  = "last_name"
	FieldTypePhone     = "phone"
	FieldTypeEmail     = "email"
	FieldTypeSignature = "signature"
	FieldTypeDate      = "date"
	FieldTypeText      = "text"
	FieldTypeIDNumber  = "id_number"
)

// SigningField is one form-field placement on the document. Coordinates are
// normalized fractions of the page dimensions, measured from the top-left
// corner; Page is 1-based.
type SigningField struct {
	ID       string  `bson:"id" json:"id"`
	Type     string  `bson:"type" json:"type"`
	Label    string  `bson:"label" json:"label"`
	X        float64 `bson:"x" json:"x"`
	Y        float64 `bson:"y" json:"y"`
	Width    float64 `bson:"width" json:"width"`
	Height   float64 `bson:"height" json:"height"`
	Page     int     `bson:"page" json:"page"`
	Required bool    `bson:"required" json:"required"`
}

// SigningRequest asks one recipient to sign one document. The AccessToken is
// the sole public identifier: external signers never see internal ids.
type SigningRequest struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID `bson:"company_id" json:"company_id"`
	CreatedBy primitive.ObjectID `bson:"created_by" json:"created_by"`

	FileName string         `bson:"file_name" json:"file_name"`
	FileURL  string         `bson:"file_url" json:"file_url"` // original document storage path
	FileType string         `bson:"file_type" json:"file_type"`
	Fields   []SigningField `bson:"fields" json:"fields"`

	RecipientName  string `bson:"recipient_name" json:"recipient_name"`
	RecipientPhone string `bson:"recipient_phone" json:"recipient_phone"`

	AccessToken string    `bson:"access_token" json:"-"`
	Status      string    `bson:"status" json:"status"`
	ExpiresAt   time.Time `bson:"expires_at" json:"expires_at"`

	SignedFileURL     string            `bson:"signed_file_url,omitempty" json:"signed_file_url,omitempty"`
	SignedAt          *time.Time        `bson:"signed_at,omitempty" json:"signed_at,omitempty"`
	SignerIP          string            `bson:"signer_ip,omitempty" json:"-"`
	SignerUserAgent   string            `bson:"signer_user_agent,omitempty" json:"-"`
	SignedFieldValues map[string]string `bson:"signed_field_values,omitempty" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Terminal reports whether no further transition may leave the current
// status.
func (r *SigningRequest) Terminal() bool {
	switch r.Status {
	case SigningStatusSigned, SigningStatusCancelled, SigningStatusExpired:
		return true
	}
	return false
}

// Signing audit events.
const (
	SigningEventSent   = "sent"
	SigningEventOpened = "opened"
	SigningEventSigned = "signed"
)

// SigningAuditEntry is one append-only row of a signing request's audit
// trail. Entries are never mutated.
type SigningAuditEntry struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SigningRequestID primitive.ObjectID `bson:"signing_request_id" json:"signing_request_id"`
	Event            string             `bson:"event" json:"event"`
	Metadata         map[string]string  `bson:"metadata,omitempty" json:"metadata,omitempty"`
	Timestamp        time.Time          `bson:"timestamp" json:"timestamp"`
}
