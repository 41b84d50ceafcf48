// internal/app/features/whatsapp/handler.go

// Package whatsapp receives inbound provider webhooks and runs the document
// intake conversation: resolve the sender, stage or ingest the document, and
// answer on the same chat.
package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/caseflowhq/caseflow/internal/app/storage"
	pendingstore "github.com/caseflowhq/caseflow/internal/app/store/pendingselect"
	scandocstore "github.com/caseflowhq/caseflow/internal/app/store/scandocs"
	"github.com/caseflowhq/caseflow/internal/app/system/extract"
	"github.com/caseflowhq/caseflow/internal/app/system/greenapi"
	"github.com/caseflowhq/caseflow/internal/app/system/identity"
	"go.uber.org/zap"
)

// processTimeout bounds one webhook's background work: media download,
// extraction call, storage write.
const processTimeout = 5 * time.Minute

// Messenger is the outbound half of the provider integration: chat
// notifications and inbound-media download.
type Messenger interface {
	Notify(ctx context.Context, chatID, message string)
	DownloadFile(ctx context.Context, downloadURL string) ([]byte, error)
	IDInstance() string
}

// Extractor turns document bytes into structured fields.
type Extractor interface {
	Extract(ctx context.Context, data []byte, mimeType string) (*extract.Result, error)
}

var (
	_ Messenger = (*greenapi.Client)(nil)
	_ Extractor = (*extract.Client)(nil)
)

// Handler holds the dependencies for webhook intake.
type Handler struct {
	WA            Messenger
	Resolver      *identity.Resolver
	Pending       *pendingstore.Store
	Docs          *scandocstore.Store
	Storage       storage.Store
	Extractor     Extractor
	WebhookSecret string
	Log           *zap.Logger
}

// Webhook handles POST /webhooks/whatsapp?token=…
//
// The provider retries non-200 responses, so every accepted event is
// acknowledged immediately and processed in the background. Only an invalid
// shared token gets a 401; anything else the service cannot use (wrong
// instance, wrong event type, group chat) is a 200 no-op.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("token") != h.WebhookSecret {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var payload greenapi.WebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.Log.Warn("undecodable webhook payload", zap.Error(err))
		writeResult(w, "ignored")
		return
	}

	if !h.accepts(payload) {
		writeResult(w, "ignored")
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), processTimeout)
		defer cancel()
		h.dispatch(ctx, payload)
	}()

	writeResult(w, "accepted")
}

// writeResult is the small monitoring body on the 200 acknowledgment. The
// provider ignores it; dashboards don't.
func writeResult(w http.ResponseWriter, result string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"result": result})
}

// accepts filters events down to incoming direct messages for this
// instance.
func (h *Handler) accepts(p greenapi.WebhookPayload) bool {
	if p.TypeWebhook != greenapi.WebhookTypeIncoming {
		return false
	}
	if strconv.FormatInt(p.InstanceData.IDInstance, 10) != h.WA.IDInstance() {
		h.Log.Warn("webhook for unknown instance",
			zap.Int64("id_instance", p.InstanceData.IDInstance))
		return false
	}
	if isGroupChat(p.SenderData.ChatID) {
		return false
	}
	if !p.MessageData.IsText() && !p.MessageData.IsFile() {
		return false
	}
	return true
}
