// internal/app/features/signing/internal.go
package signing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/caseflowhq/caseflow/internal/app/storage"
	signingstore "github.com/caseflowhq/caseflow/internal/app/store/signing"
	"github.com/caseflowhq/caseflow/internal/app/system/auth"
	"github.com/caseflowhq/caseflow/internal/app/system/timeouts"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// createPayload is the "data" part of the multipart create request.
type createPayload struct {
	FileName       string                `json:"file_name"`
	Fields         []models.SigningField `json:"fields"`
	RecipientName  string                `json:"recipient_name"`
	RecipientPhone string                `json:"recipient_phone"`
	ExpiresInDays  int                   `json:"expires_in_days"`
}

// acceptedUploadTypes are the original-document types a request may carry.
var acceptedUploadTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// Create handles POST /internal/signing-requests (multipart: file + data).
// The request starts in draft; nothing is sent to the recipient yet.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	principal := auth.CurrentPrincipal(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	var payload createPayload
	if err := json.Unmarshal([]byte(r.FormValue("data")), &payload); err != nil {
		http.Error(w, "invalid data payload", http.StatusBadRequest)
		return
	}
	if err := validateCreate(payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing document file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		http.Error(w, "failed to read document", http.StatusBadRequest)
		return
	}
	if len(data) > maxUploadBytes {
		http.Error(w, "document too large", http.StatusRequestEntityTooLarge)
		return
	}

	fileType := header.Header.Get("Content-Type")
	if !acceptedUploadTypes[fileType] {
		http.Error(w, "unsupported document type", http.StatusUnsupportedMediaType)
		return
	}

	fileName := payload.FileName
	if fileName == "" {
		fileName = header.Filename
	}

	key := storage.SigningKey(fileName, time.Now().UTC())
	if err := h.Storage.Put(r.Context(), key, data, fileType); err != nil {
		h.Log.Error("signing document upload failed", zap.Error(err))
		http.Error(w, "storage failure", http.StatusInternalServerError)
		return
	}

	req := models.SigningRequest{
		CompanyID:      principal.CompanyID,
		CreatedBy:      principal.UserID,
		FileName:       fileName,
		FileURL:        key,
		FileType:       fileType,
		Fields:         payload.Fields,
		RecipientName:  payload.RecipientName,
		RecipientPhone: payload.RecipientPhone,
	}
	if payload.ExpiresInDays > 0 {
		req.ExpiresAt = time.Now().UTC().AddDate(0, 0, payload.ExpiresInDays)
	}

	created, err := h.Requests.Create(r.Context(), req)
	if err != nil {
		h.Log.Error("signing request create failed", zap.Error(err))
		http.Error(w, "database failure", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":         true,
		"signing_request": created,
		"signing_url":     h.signingURL(created.AccessToken),
	})
}

func validateCreate(p createPayload) error {
	if p.RecipientName == "" {
		return errors.New("recipient_name is required")
	}
	if len(p.Fields) == 0 {
		return errors.New("at least one field is required")
	}
	seen := make(map[string]bool, len(p.Fields))
	for _, f := range p.Fields {
		if f.ID == "" {
			return errors.New("every field needs an id")
		}
		if seen[f.ID] {
			return fmt.Errorf("duplicate field id %q", f.ID)
		}
		seen[f.ID] = true
		switch f.Type {
		case models.FieldTypeFirstName, models.FieldTypeLastName, models.FieldTypePhone,
			models.FieldTypeEmail, models.FieldTypeSignature, models.FieldTypeDate,
			models.FieldTypeText, models.FieldTypeIDNumber:
		default:
			return fmt.Errorf("unknown field type %q", f.Type)
		}
		if f.Width <= 0 || f.Height <= 0 {
			return fmt.Errorf("field %q has a degenerate placement", f.ID)
		}
	}
	return nil
}

// List handles GET /internal/signing-requests. Lapsed sent/opened requests
// are flipped to expired on the way out (expiry is lazy; there is no
// sweeper).
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal := auth.CurrentPrincipal(r.Context())

	lctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	reqs, err := h.Requests.ListByCompany(lctx, principal.CompanyID)
	cancel()
	if err != nil {
		h.Log.Error("signing request list failed", zap.Error(err))
		http.Error(w, "database failure", http.StatusInternalServerError)
		return
	}

	now := time.Now().UTC()
	for i := range reqs {
		if h.lapseIfExpired(r.Context(), &reqs[i], now) {
			reqs[i].Status = models.SigningStatusExpired
		}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"signing_requests": reqs,
	})
}

// lapseIfExpired applies lazy expiry to a live request past its window.
func (h *Handler) lapseIfExpired(ctx context.Context, req *models.SigningRequest, now time.Time) bool {
	if req.Terminal() || req.Status == models.SigningStatusDraft {
		return false
	}
	if now.Before(req.ExpiresAt) {
		return false
	}
	if err := h.Requests.MarkExpired(ctx, req.ID); err != nil {
		// Lost race with a concurrent transition; the stored status wins.
		h.Log.Debug("lazy expiry skipped", zap.String("id", req.ID.Hex()), zap.Error(err))
		return false
	}
	return true
}

// requestForCompany loads a request by path id and hides other companies'
// requests behind a 404.
func (h *Handler) requestForCompany(w http.ResponseWriter, r *http.Request) *models.SigningRequest {
	principal := auth.CurrentPrincipal(r.Context())

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}

	req, err := h.Requests.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, signingstore.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
		} else {
			h.Log.Error("signing request fetch failed", zap.Error(err))
			http.Error(w, "database failure", http.StatusInternalServerError)
		}
		return nil
	}
	if req.CompanyID != principal.CompanyID {
		http.Error(w, "not found", http.StatusNotFound)
		return nil
	}
	return req
}

// Get handles GET /internal/signing-requests/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	req := h.requestForCompany(w, r)
	if req == nil {
		return
	}
	if h.lapseIfExpired(r.Context(), req, time.Now().UTC()) {
		req.Status = models.SigningStatusExpired
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"signing_request": req,
		"signing_url":     h.signingURL(req.AccessToken),
	})
}

// Send handles POST /internal/signing-requests/{id}/send: draft → sent,
// audit entry, then a WhatsApp message to the recipient if a phone is on
// file. A missing phone is not an error; the office can deliver the link
// itself.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	req := h.requestForCompany(w, r)
	if req == nil {
		return
	}

	if err := h.Requests.MarkSent(r.Context(), req.ID); err != nil {
		h.transitionError(w, err)
		return
	}
	if err := h.Audit.Append(r.Context(), req.ID, models.SigningEventSent, nil); err != nil {
		h.Log.Error("audit append failed", zap.Error(err))
	}

	if req.RecipientPhone != "" {
		chatID := chatIDForPhone(req.RecipientPhone)
		invite := msgSigningInvite(req.RecipientName, req.FileName, req.ExpiresAt, h.signingURL(req.AccessToken))
		h.WA.Notify(r.Context(), chatID, invite)
	} else {
		h.Log.Debug("signing request sent without recipient phone",
			zap.String("id", req.ID.Hex()))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"signing_url": h.signingURL(req.AccessToken),
	})
}

// Cancel handles POST /internal/signing-requests/{id}/cancel.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	req := h.requestForCompany(w, r)
	if req == nil {
		return
	}
	if err := h.Requests.Cancel(r.Context(), req.ID); err != nil {
		h.transitionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// AuditTrail handles GET /internal/signing-requests/{id}/audit.
func (h *Handler) AuditTrail(w http.ResponseWriter, r *http.Request) {
	req := h.requestForCompany(w, r)
	if req == nil {
		return
	}
	entries, err := h.Audit.ListByRequest(r.Context(), req.ID)
	if err != nil {
		h.Log.Error("audit list failed", zap.Error(err))
		http.Error(w, "database failure", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"entries": entries,
	})
}

func (h *Handler) transitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, signingstore.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.Is(err, signingstore.ErrTerminalState):
		http.Error(w, "request is in a terminal state", http.StatusConflict)
	default:
		h.Log.Error("signing transition failed", zap.Error(err))
		http.Error(w, "database failure", http.StatusInternalServerError)
	}
}
