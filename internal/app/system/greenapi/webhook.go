// internal/app/system/greenapi/webhook.go
package greenapi

// Webhook payload shapes for inbound notifications. Field names follow the
// provider's JSON exactly; only the subset this service consumes is
// declared.

// WebhookTypeIncoming is the only typeWebhook this service processes;
// everything else is acknowledged as a no-op.
const WebhookTypeIncoming = "incomingMessageReceived"

// Message types within an incoming webhook.
const (
	MessageTypeText     = "textMessage"
	MessageTypeExtText  = "extendedTextMessage"
	MessageTypeImage    = "imageMessage"
	MessageTypeDocument = "documentMessage"
)

// WebhookPayload is one inbound event from the provider.
type WebhookPayload struct {
	TypeWebhook  string       `json:"typeWebhook"`
	InstanceData InstanceData `json:"instanceData"`
	IDMessage    string       `json:"idMessage"`
	SenderData   SenderData   `json:"senderData"`
	MessageData  MessageData  `json:"messageData"`
}

type InstanceData struct {
	IDInstance int64  `json:"idInstance"` // numeric in provider JSON
	Wid        string `json:"wid"`
}

type SenderData struct {
	ChatID     string `json:"chatId"`
	Sender     string `json:"sender"`
	SenderName string `json:"senderName"`
}

type MessageData struct {
	TypeMessage     string           `json:"typeMessage"`
	TextMessageData *TextMessageData `json:"textMessageData,omitempty"`
	ExtendedText    *TextMessageData `json:"extendedTextMessageData,omitempty"`
	FileMessageData *FileMessageData `json:"fileMessageData,omitempty"`
}

type TextMessageData struct {
	TextMessage string `json:"textMessage"`
	Text        string `json:"text"`
}

type FileMessageData struct {
	DownloadURL string `json:"downloadUrl"`
	MimeType    string `json:"mimeType"`
	FileName    string `json:"fileName,omitempty"`
	Caption     string `json:"caption,omitempty"`
}

// Text returns the message body for text-type messages, whichever variant
// the provider used.
func (m MessageData) Text() string {
	if m.TextMessageData != nil {
		if m.TextMessageData.TextMessage != "" {
			return m.TextMessageData.TextMessage
		}
		return m.TextMessageData.Text
	}
	if m.ExtendedText != nil {
		if m.ExtendedText.Text != "" {
			return m.ExtendedText.Text
		}
		return m.ExtendedText.TextMessage
	}
	return ""
}

// IsText reports whether the message is a plain or extended text message.
func (m MessageData) IsText() bool {
	return m.TypeMessage == MessageTypeText || m.TypeMessage == MessageTypeExtText
}

// IsFile reports whether the message carries downloadable media.
func (m MessageData) IsFile() bool {
	return m.TypeMessage == MessageTypeImage || m.TypeMessage == MessageTypeDocument
}
