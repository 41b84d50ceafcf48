// internal/app/storage/storage.go

// Package storage abstracts document blob storage behind a small interface
// with local-disk and S3 backends. Paths are opaque keys; callers never see
// backend-specific URLs except through PresignedURL.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the blob backend for original and signed documents.
type Store interface {
	// Put writes data at the given key, creating parent paths as needed.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get returns the bytes stored at key.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes the blob at key. Deleting a missing key is not an
	// error.
	Delete(ctx context.Context, key string) error

	// PresignedURL returns a time-limited URL for direct download.
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// DocumentKey builds a collision-free key for an uploaded document:
// documents/YYYY/MM/<uuid8>-<sanitized-name>.
func DocumentKey(fileName string, now time.Time) string {
	return fmt.Sprintf("documents/%04d/%02d/%s-%s",
		now.Year(), int(now.Month()),
		uuid.NewString()[:8], SanitizeFileName(fileName))
}

// StagedKey builds the key for a document waiting on an organization
// choice, namespaced by chat so concurrent chats cannot collide. Staged
// blobs are deleted when the selection is consumed or replaced.
func StagedKey(chatID, fileName string) string {
	return fmt.Sprintf("staging/%s/%s-%s",
		SanitizeFileName(chatID),
		uuid.NewString()[:8], SanitizeFileName(fileName))
}

// SigningKey builds the key for a signing request's original upload.
func SigningKey(fileName string, now time.Time) string {
	return fmt.Sprintf("signing/%04d/%02d/%s-%s",
		now.Year(), int(now.Month()),
		uuid.NewString()[:8], SanitizeFileName(fileName))
}

// SignedKey derives the key for the burned (signed) PDF from the original
// key: a /signed/ segment is inserted before the file name, the extension
// becomes .pdf, and a timestamp suffix keeps re-signs from colliding.
func SignedKey(originalKey string, now time.Time) string {
	dir, file := path.Split(originalKey)
	ext := path.Ext(file)
	base := strings.TrimSuffix(file, ext)
	return fmt.Sprintf("%ssigned/%s-signed-%d.pdf", dir, base, now.Unix())
}

// SanitizeFileName keeps a conservative character set so keys stay safe on
// every backend. Anything else (including Hebrew file names, which WhatsApp
// uploads often carry) is replaced with underscores.
func SanitizeFileName(name string) string {
	name = path.Base(name)
	if name == "" || name == "." || name == "/" {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "file"
	}
	return out
}

// ExtensionForMime returns the canonical file extension for the document
// types the ingestion pipeline accepts.
func ExtensionForMime(mimeType string) string {
	switch mimeType {
	case "application/pdf":
		return ".pdf"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/bmp":
		return ".bmp"
	}
	return ".bin"
}
