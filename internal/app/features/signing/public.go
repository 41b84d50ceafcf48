// internal/app/features/signing/public.go
package signing

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/caseflowhq/caseflow/internal/app/storage"
	signingstore "github.com/caseflowhq/caseflow/internal/app/store/signing"
	"github.com/caseflowhq/caseflow/internal/app/system/pdfburn"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"go.uber.org/zap"
)

// publicView is the request shape exposed to the unauthenticated signer.
// Internal company/user ids, signer metadata and the token itself stay out
// of it.
type publicView struct {
	ID            string                `json:"id"`
	FileName      string                `json:"file_name"`
	FileType      string                `json:"file_type"`
	Fields        []models.SigningField `json:"fields"`
	RecipientName string                `json:"recipient_name"`
	Status        string                `json:"status"`
	ExpiresAt     time.Time             `json:"expires_at"`
}

// resolveToken loads the request for a public call and settles its
// effective status. A nil return means the failure envelope was already
// written.
func (h *Handler) resolveToken(w http.ResponseWriter, r *http.Request, token string) *models.SigningRequest {
	req, err := h.Requests.GetByToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, signingstore.ErrNotFound) {
			writeFailure(w, http.StatusNotFound, errNotFound)
		} else {
			h.Log.Error("token lookup failed", zap.Error(err))
			writeFailure(w, http.StatusInternalServerError, errNotFound)
		}
		return nil
	}

	if h.lapseIfExpired(r.Context(), req, time.Now().UTC()) {
		req.Status = models.SigningStatusExpired
	}

	switch req.Status {
	case models.SigningStatusDraft:
		// Drafts have a token but are not public yet.
		writeFailure(w, http.StatusNotFound, errNotFound)
		return nil
	case models.SigningStatusExpired:
		writeFailure(w, http.StatusGone, errExpired)
		return nil
	case models.SigningStatusCancelled:
		writeFailure(w, http.StatusGone, errCancelled)
		return nil
	case models.SigningStatusSigned:
		writeFailure(w, http.StatusConflict, errAlreadySigned)
		return nil
	}
	return req
}

type resolvePayload struct {
	Token string `json:"token"`
}

// Resolve handles POST /public/signing/resolve: the signing page's
// bootstrap call. The first resolve of a sent request flips it to opened
// and records the audit entry exactly once.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	var payload resolvePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, errNotFound)
		return
	}

	req := h.resolveToken(w, r, payload.Token)
	if req == nil {
		return
	}

	if req.Status == models.SigningStatusSent {
		flipped, err := h.Requests.MarkOpened(r.Context(), req.ID)
		if err != nil {
			h.Log.Error("mark opened failed", zap.Error(err))
		} else if flipped {
			req.Status = models.SigningStatusOpened
			if err := h.Audit.Append(r.Context(), req.ID, models.SigningEventOpened, map[string]string{
				"ip":         clientIP(r),
				"user_agent": r.UserAgent(),
			}); err != nil {
				h.Log.Error("audit append failed", zap.Error(err))
			}
		}
	}

	docURL, err := h.Storage.PresignedURL(r.Context(), req.FileURL, presignExpiry)
	if err != nil {
		h.Log.Error("presign failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, errNotFound)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"signing_request": publicView{
			ID:            req.ID.Hex(),
			FileName:      req.FileName,
			FileType:      req.FileType,
			Fields:        req.Fields,
			RecipientName: req.RecipientName,
			Status:        req.Status,
			ExpiresAt:     req.ExpiresAt,
		},
		"document_url": docURL,
	})
}

type completePayload struct {
	Token       string            `json:"token"`
	FieldValues map[string]string `json:"field_values"`
}

// Complete handles POST /public/signing/complete. Ordering is load, burn,
// upload, then flip: the request only becomes signed after the signed
// artifact is durably stored, so a crash can never leave a signed request
// without its document.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var payload completePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeFailure(w, http.StatusBadRequest, errNotFound)
		return
	}

	req := h.resolveToken(w, r, payload.Token)
	if req == nil {
		return
	}

	if missing := missingRequiredFields(req.Fields, payload.FieldValues); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success":        false,
			"error":          "missing_required_fields",
			"missing_fields": missing,
		})
		return
	}

	// Transient failures still answer with the machine-readable envelope;
	// the signing page switches on the error code, not the status text.
	original, err := h.Storage.Get(r.Context(), req.FileURL)
	if err != nil {
		h.Log.Error("original document fetch failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, errProcessing)
		return
	}

	signed, err := pdfburn.Burn(original, req.FileType, req.Fields, payload.FieldValues)
	if err != nil {
		h.Log.Error("document burn failed",
			zap.String("id", req.ID.Hex()), zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, errProcessing)
		return
	}

	signedKey := storage.SignedKey(req.FileURL, time.Now().UTC())
	if err := h.Storage.Put(r.Context(), signedKey, signed, "application/pdf"); err != nil {
		h.Log.Error("signed document upload failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, errProcessing)
		return
	}

	ip, ua := clientIP(r), r.UserAgent()
	if err := h.Requests.MarkSigned(r.Context(), req.ID, signedKey, ip, ua, payload.FieldValues); err != nil {
		if errors.Is(err, signingstore.ErrTerminalState) {
			// Concurrent completion won; the stored signature stands.
			writeFailure(w, http.StatusConflict, errAlreadySigned)
			return
		}
		h.Log.Error("mark signed failed", zap.Error(err))
		writeFailure(w, http.StatusInternalServerError, errProcessing)
		return
	}

	if err := h.Audit.Append(r.Context(), req.ID, models.SigningEventSigned, map[string]string{
		"ip":          ip,
		"user_agent":  ua,
		"field_count": fmt.Sprintf("%d", len(payload.FieldValues)),
	}); err != nil {
		h.Log.Error("audit append failed", zap.Error(err))
	}

	if req.RecipientPhone != "" {
		h.WA.Notify(r.Context(), chatIDForPhone(req.RecipientPhone), msgSigningDone(req.FileName))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// missingRequiredFields lists required field ids with no submitted value.
func missingRequiredFields(fields []models.SigningField, values map[string]string) []string {
	var missing []string
	for _, f := range fields {
		if f.Required && values[f.ID] == "" {
			missing = append(missing, f.ID)
		}
	}
	return missing
}

// chatIDForPhone converts a stored phone number (digits, international
// format) into the provider's chat id form.
func chatIDForPhone(phone string) string {
	return fmt.Sprintf("%s@c.us", phone)
}
