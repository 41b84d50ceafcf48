// internal/app/features/whatsapp/dispatcher.go
package whatsapp

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/caseflowhq/caseflow/internal/app/storage"
	scandocstore "github.com/caseflowhq/caseflow/internal/app/store/scandocs"
	"github.com/caseflowhq/caseflow/internal/app/system/greenapi"
	"github.com/caseflowhq/caseflow/internal/app/system/identity"
	"github.com/caseflowhq/caseflow/internal/app/system/timeouts"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// supportedMimes are the document types the intake pipeline accepts.
var supportedMimes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/bmp":       true,
}

func isGroupChat(chatID string) bool {
	return strings.HasSuffix(chatID, "@g.us")
}

// dispatch runs the intake conversation for one accepted event.
func (h *Handler) dispatch(ctx context.Context, p greenapi.WebhookPayload) {
	chatID := p.SenderData.ChatID

	sender, err := h.Resolver.Resolve(ctx, p.SenderData.Sender)
	if err != nil {
		h.Log.Error("sender resolution failed",
			zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	if sender == nil {
		h.WA.Notify(ctx, chatID, msgUnauthorized)
		return
	}

	switch {
	case p.MessageData.IsText():
		h.handleText(ctx, chatID, p.MessageData.Text())
	case p.MessageData.IsFile():
		h.handleFile(ctx, chatID, sender, p)
	}
}

// handleText is the reply side of the selection conversation. Text with no
// staged document gets a usage hint; a staged document resolves the reply as
// a menu index.
func (h *Handler) handleText(ctx context.Context, chatID, text string) {
	sctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	pending, err := h.Pending.FindActive(sctx, chatID)
	cancel()
	if err != nil {
		h.Log.Error("pending selection lookup failed",
			zap.String("chat_id", chatID), zap.Error(err))
		return
	}
	if pending == nil {
		h.WA.Notify(ctx, chatID, msgSendDocumentHint)
		return
	}

	idx, ok := parseSelection(text, len(pending.Choices))
	if !ok {
		// Selection stays alive: re-prompt instead of discarding the
		// staged document over a typo.
		h.WA.Notify(ctx, chatID, msgInvalidSelection(pending.Choices))
		return
	}

	choice := pending.Choices[idx-1]
	h.finalizeSelection(ctx, chatID, pending, choice)
}

// finalizeSelection ingests the staged document into the chosen
// organization and consumes the selection record.
func (h *Handler) finalizeSelection(ctx context.Context, chatID string, pending *models.PendingSelection, choice models.OrgChoice) {
	// Same cheap dedup pre-check as the direct-file path: a replayed
	// selection must not re-run extraction for a document already on file.
	if dup, err := h.Docs.FindByMessageID(ctx, pending.MessageID); err != nil {
		h.Log.Error("dedup lookup failed", zap.Error(err))
		return
	} else if dup != nil {
		h.Log.Info("selection reply for an already-filed document ignored",
			zap.String("wa_message_id", pending.MessageID))
		h.consumePending(ctx, pending)
		return
	}

	data, err := h.Storage.Get(ctx, pending.StagedPath)
	if err != nil {
		h.Log.Error("staged document fetch failed",
			zap.String("chat_id", chatID),
			zap.String("staged_path", pending.StagedPath),
			zap.Error(err))
		h.WA.Notify(ctx, chatID, msgProcessingError)
		return
	}

	h.ingest(ctx, ingestRequest{
		chatID:     chatID,
		orgID:      choice.ID,
		userID:     pending.UserID,
		fileName:   pending.FileName,
		mimeType:   pending.MimeType,
		messageID:  pending.MessageID,
		senderName: pending.SenderName,
		data:       data,
	})

	h.consumePending(ctx, pending)
}

// consumePending removes a selection record and its staged bytes.
func (h *Handler) consumePending(ctx context.Context, pending *models.PendingSelection) {
	if err := h.Pending.Delete(ctx, pending.ID); err != nil {
		h.Log.Error("pending selection delete failed", zap.Error(err))
	}
	if err := h.Storage.Delete(ctx, pending.StagedPath); err != nil {
		h.Log.Error("staged bytes delete failed",
			zap.String("staged_path", pending.StagedPath), zap.Error(err))
	}
}

// handleFile downloads inbound media and either ingests it directly
// (single-org sender) or stages it behind an organization menu.
func (h *Handler) handleFile(ctx context.Context, chatID string, sender *identity.Sender, p greenapi.WebhookPayload) {
	file := p.MessageData.FileMessageData
	if file == nil || !supportedMimes[file.MimeType] {
		h.WA.Notify(ctx, chatID, msgUnsupportedType)
		return
	}

	if len(sender.Organizations) == 0 {
		h.WA.Notify(ctx, chatID, msgNoOrganization)
		return
	}

	// Cheap pre-check before downloading; the unique index remains the
	// authoritative guard.
	if dup, err := h.Docs.FindByMessageID(ctx, p.IDMessage); err != nil {
		h.Log.Error("dedup lookup failed", zap.Error(err))
		return
	} else if dup != nil {
		h.Log.Info("duplicate webhook delivery ignored",
			zap.String("wa_message_id", p.IDMessage))
		return
	}

	dctx, cancel := context.WithTimeout(ctx, timeouts.External())
	data, err := h.WA.DownloadFile(dctx, file.DownloadURL)
	cancel()
	if err != nil {
		h.Log.Error("media download failed",
			zap.String("chat_id", chatID), zap.Error(err))
		h.WA.Notify(ctx, chatID, msgProcessingError)
		return
	}

	fileName := file.FileName
	if fileName == "" {
		fileName = "document" + storage.ExtensionForMime(file.MimeType)
	}

	if len(sender.Organizations) == 1 {
		h.ingest(ctx, ingestRequest{
			chatID:     chatID,
			orgID:      sender.Organizations[0].ID,
			userID:     sender.User.ID,
			fileName:   fileName,
			mimeType:   file.MimeType,
			messageID:  p.IDMessage,
			senderName: p.SenderData.SenderName,
			data:       data,
		})
		return
	}

	h.stage(ctx, chatID, sender, p, fileName, data)
}

// stage stores the bytes and opens the organization-selection conversation.
func (h *Handler) stage(ctx context.Context, chatID string, sender *identity.Sender, p greenapi.WebhookPayload, fileName string, data []byte) {
	file := p.MessageData.FileMessageData

	stagedPath := storage.StagedKey(chatID, fileName)
	if err := h.Storage.Put(ctx, stagedPath, data, file.MimeType); err != nil {
		h.Log.Error("staged bytes write failed", zap.Error(err))
		h.WA.Notify(ctx, chatID, msgProcessingError)
		return
	}

	choices := make([]models.OrgChoice, 0, len(sender.Organizations))
	for _, org := range sender.Organizations {
		choices = append(choices, models.OrgChoice{ID: org.ID, Name: org.Name})
	}

	replaced, err := h.Pending.Save(ctx, models.PendingSelection{
		ChatID:      chatID,
		PhoneNumber: p.SenderData.Sender,
		UserID:      sender.User.ID,
		Choices:     choices,
		StagedPath:  stagedPath,
		MimeType:    file.MimeType,
		FileName:    fileName,
		MessageID:   p.IDMessage,
		SenderName:  p.SenderData.SenderName,
	})
	if err != nil {
		h.Log.Error("pending selection save failed", zap.Error(err))
		h.WA.Notify(ctx, chatID, msgProcessingError)
		return
	}
	if replaced != nil && replaced.StagedPath != "" {
		if err := h.Storage.Delete(ctx, replaced.StagedPath); err != nil {
			h.Log.Error("replaced staged bytes delete failed",
				zap.String("staged_path", replaced.StagedPath), zap.Error(err))
		}
	}

	h.WA.Notify(ctx, chatID, msgSelectionMenu(choices))
}

type ingestRequest struct {
	chatID     string
	orgID      primitive.ObjectID
	userID     primitive.ObjectID
	fileName   string
	mimeType   string
	messageID  string
	senderName string
	data       []byte
}

// ingest persists the document bytes, runs extraction, records the scanned
// document, and confirms on the chat. Extraction problems degrade, they do
// not lose the document: a transport failure records status error, a
// malformed model reply records the raw reply for manual review.
func (h *Handler) ingest(ctx context.Context, req ingestRequest) {
	storagePath := storage.DocumentKey(req.fileName, time.Now().UTC())
	pctx, cancel := context.WithTimeout(ctx, timeouts.Long())
	err := h.Storage.Put(pctx, storagePath, req.data, req.mimeType)
	cancel()
	if err != nil {
		h.Log.Error("document write failed",
			zap.String("chat_id", req.chatID), zap.Error(err))
		h.WA.Notify(ctx, req.chatID, msgProcessingError)
		return
	}

	doc := models.ScannedDocument{
		OrganizationID: req.orgID,
		UploadedBy:     &req.userID,
		FileName:       req.fileName,
		StoragePath:    storagePath,
		MimeType:       req.mimeType,
		FileSizeBytes:  int64(len(req.data)),
		Source:         models.ScanSourceWhatsApp,
		WAChatID:       req.chatID,
		WAMessageID:    req.messageID,
		WASenderName:   req.senderName,
	}

	ectx, cancel := context.WithTimeout(ctx, timeouts.External())
	result, err := h.Extractor.Extract(ectx, req.data, req.mimeType)
	cancel()
	switch {
	case err != nil:
		h.Log.Error("extraction failed",
			zap.String("chat_id", req.chatID), zap.Error(err))
		doc.Status = models.ScanStatusError
	case result.ParseError:
		doc.RawExtraction = result.RawResponse
	default:
		doc.Extracted = result.Fields
		doc.RawExtraction = result.RawResponse
	}

	saved, err := h.Docs.Insert(ctx, doc)
	if err != nil {
		if errors.Is(err, scandocstore.ErrDuplicateDocument) {
			h.Log.Info("duplicate document insert ignored",
				zap.String("wa_message_id", req.messageID))
			if delErr := h.Storage.Delete(ctx, storagePath); delErr != nil {
				h.Log.Error("duplicate blob delete failed", zap.Error(delErr))
			}
			return
		}
		h.Log.Error("scanned document insert failed",
			zap.String("chat_id", req.chatID), zap.Error(err))
		h.WA.Notify(ctx, req.chatID, msgProcessingError)
		return
	}

	h.Log.Info("document ingested",
		zap.String("document_id", saved.ID.Hex()),
		zap.String("organization_id", req.orgID.Hex()),
		zap.String("status", saved.Status))

	if saved.Status == models.ScanStatusError {
		h.WA.Notify(ctx, req.chatID, msgReceivedWithErrors)
		return
	}
	h.WA.Notify(ctx, req.chatID, msgReceived(saved.Extracted))
}

// parseSelection resolves a reply as a 1-based menu index. Anything that is
// not a bare in-range number fails.
func parseSelection(text string, n int) (int, bool) {
	idx, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil || idx < 1 || idx > n {
		return 0, false
	}
	return idx, true
}
