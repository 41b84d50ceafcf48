// internal/app/system/greenapi/client.go
package greenapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.green-api.com"

// maxDownloadBytes bounds inbound media downloads. The provider caps media
// at 100 MB; anything larger is a protocol violation, not a document.
const maxDownloadBytes = 100 << 20

// Client talks to the Green API WhatsApp gateway for one configured
// instance. Inbound traffic arrives via webhook; this client covers the
// outbound half (send text) and media download.
type Client struct {
	baseURL    string
	idInstance string
	apiToken   string
	httpClient *http.Client
	log        *zap.Logger
}

func NewClient(idInstance, apiToken string, logger *zap.Logger) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		idInstance: idInstance,
		apiToken:   apiToken,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		log:        logger,
	}
}

// IDInstance returns the configured instance id, for webhook validation.
func (c *Client) IDInstance() string {
	return c.idInstance
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

// SendMessage delivers a text message to a chat. Errors are returned so the
// caller can decide; notification paths log and drop them (a failed outbound
// notice must never fail an inbound acknowledgment).
func (c *Client) SendMessage(ctx context.Context, chatID, message string) error {
	url := fmt.Sprintf("%s/waInstance%s/sendMessage/%s", c.baseURL, c.idInstance, c.apiToken)
	body, err := json.Marshal(sendMessageRequest{ChatID: chatID, Message: message})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("send message: provider returned %d: %s", resp.StatusCode, respBody)
	}
	return nil
}

// Notify sends a message and only logs on failure. Use for fire-and-forget
// user notifications.
func (c *Client) Notify(ctx context.Context, chatID, message string) {
	if err := c.SendMessage(ctx, chatID, message); err != nil {
		c.log.Error("whatsapp notification failed",
			zap.String("chat_id", chatID),
			zap.Error(err))
	}
}

// DownloadFile fetches inbound media from the provider's download URL.
func (c *Client) DownloadFile(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download media: provider returned %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read media body: %w", err)
	}
	if len(data) > maxDownloadBytes {
		return nil, fmt.Errorf("media exceeds %d bytes", maxDownloadBytes)
	}
	return data, nil
}
