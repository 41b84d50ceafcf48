// internal/domain/models/scanneddocument.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Scanned-document statuses.
const (
	ScanStatusProcessing        = "processing"
	ScanStatusNeedsVerification = "needs_verification"
	ScanStatusVerified          = "verified"
	ScanStatusError             = "error"
)

// Scanned-document sources.
const (
	ScanSourceWeb      = "web"
	ScanSourceWhatsApp = "whatsapp"
)

// ExtractedFields is the structured result of running a document through the
// vision/LLM extraction boundary. All fields are best-effort; Confidence and
// Notes carry the model's own uncertainty.
type ExtractedFields struct {
	DocumentType   string   `bson:"document_type,omitempty" json:"document_type,omitempty"`
	DocumentDate   string   `bson:"document_date,omitempty" json:"document_date,omitempty"`
	CaseNumber     string   `bson:"case_number,omitempty" json:"case_number,omitempty"`
	CourtName      string   `bson:"court_name,omitempty" json:"court_name,omitempty"`
	Parties        []string `bson:"parties,omitempty" json:"parties,omitempty"`
	Title          string   `bson:"title,omitempty" json:"title,omitempty"`
	Summary        string   `bson:"summary,omitempty" json:"summary,omitempty"`
	KeyDates       []string `bson:"key_dates,omitempty" json:"key_dates,omitempty"`
	Amounts        []string `bson:"amounts,omitempty" json:"amounts,omitempty"`
	References     []string `bson:"references,omitempty" json:"references,omitempty"`
	Signatures     []string `bson:"signatures,omitempty" json:"signatures,omitempty"`
	Notes          string   `bson:"notes,omitempty" json:"notes,omitempty"`
	RawTextExcerpt string   `bson:"raw_text_excerpt,omitempty" json:"raw_text_excerpt,omitempty"`
	Confidence     string   `bson:"confidence,omitempty" json:"confidence,omitempty"`
}

// ScannedDocument is one ingested document: uploaded bytes in storage plus
// the extracted fields. Created once per successful upload; mutated later by
// manual review (status → verified, case/client links). Never deleted
// automatically.
//
// The pair (Source, WAMessageID) is unique for whatsapp documents — it is the
// idempotency key that makes provider redelivery a no-op.
type ScannedDocument struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OrganizationID primitive.ObjectID  `bson:"organization_id" json:"organization_id"`
	UploadedBy     *primitive.ObjectID `bson:"uploaded_by,omitempty" json:"uploaded_by,omitempty"`

	FileName      string `bson:"file_name" json:"file_name"`
	StoragePath   string `bson:"storage_path" json:"storage_path"`
	MimeType      string `bson:"mime_type" json:"mime_type"`
	FileSizeBytes int64  `bson:"file_size_bytes" json:"file_size_bytes"`

	Extracted     ExtractedFields `bson:"extracted" json:"extracted"`
	RawExtraction string          `bson:"raw_extraction,omitempty" json:"-"`

	Status string `bson:"status" json:"status"` // processing | needs_verification | verified | error
	Source string `bson:"source" json:"source"` // web | whatsapp

	// WhatsApp provenance, set only for Source == whatsapp.
	WAChatID     string `bson:"wa_chat_id,omitempty" json:"wa_chat_id,omitempty"`
	WAMessageID  string `bson:"wa_message_id,omitempty" json:"wa_message_id,omitempty"`
	WASenderName string `bson:"wa_sender_name,omitempty" json:"wa_sender_name,omitempty"`

	LinkedCaseID   *primitive.ObjectID `bson:"linked_case_id,omitempty" json:"linked_case_id,omitempty"`
	LinkedClientID *primitive.ObjectID `bson:"linked_client_id,omitempty" json:"linked_client_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
