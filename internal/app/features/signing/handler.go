// internal/app/features/signing/handler.go

// Package signing owns the e-signature lifecycle: the authenticated office
// surface that creates and sends requests, and the public token-addressed
// surface the recipient signs through.
package signing

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/caseflowhq/caseflow/internal/app/storage"
	signingstore "github.com/caseflowhq/caseflow/internal/app/store/signing"
	"github.com/caseflowhq/caseflow/internal/app/store/signingaudit"
	"github.com/caseflowhq/caseflow/internal/app/system/greenapi"
	"go.uber.org/zap"
)

// maxUploadBytes bounds the multipart document upload.
const maxUploadBytes = 50 << 20

// presignExpiry is how long public document-download links stay valid.
const presignExpiry = 15 * time.Minute

// Handler holds the dependencies for both signing surfaces.
type Handler struct {
	Requests *signingstore.Store
	Audit    *signingaudit.Store
	Storage  storage.Store
	WA       *greenapi.Client

	// PublicBaseURL is the origin the signing web page is served from;
	// tokens are appended to it to form recipient links.
	PublicBaseURL string
	Log           *zap.Logger
}

// signingURL is the public link for a request's access token.
func (h *Handler) signingURL(token string) string {
	return strings.TrimRight(h.PublicBaseURL, "/") + "/sign/" + token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Public failure envelope. The error field is a stable machine code the
// signing page switches on.
const (
	errNotFound      = "not_found"
	errExpired       = "expired"
	errAlreadySigned = "already_signed"
	errCancelled     = "cancelled"
	errProcessing    = "processing_error"
)

func writeFailure(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]any{
		"success": false,
		"error":   code,
	})
}

// clientIP prefers the first X-Forwarded-For hop (the service runs behind a
// reverse proxy) and falls back to the socket peer.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
