// internal/app/system/extract/extract.go

// Package extract is the boundary to the vision/LLM model that turns raw
// document bytes into structured legal-document fields. It is the only
// place model-specific prompt text lives; callers treat it as
// extract-or-parse-error and never see transport details.
package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/caseflowhq/caseflow/internal/domain/models"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

const (
	defaultBaseURL = "https://api.anthropic.com/v1/messages"
	defaultModel   = "claude-sonnet-4-20250514"
	apiVersion     = "2023-06-01"
	maxRetries     = 3
	initDelay      = 2 * time.Second
	maxTokens      = 2048
)

const systemPrompt = `You are a legal-document analyst for Israeli law offices. ` +
	`You receive a scanned legal document and return a single JSON object with these keys: ` +
	`document_type, document_date, case_number, court_name, parties (array), title, summary, ` +
	`key_dates (array), amounts (array), references (array), signatures (array), notes, ` +
	`raw_text_excerpt, confidence (high|medium|low). ` +
	`Respond with the JSON object only.`

const userPrompt = `Extract the structured fields from the attached document.`

// Result is the outcome of one extraction call. Exactly one of Fields or
// ParseError is meaningful: on a parse failure the raw model output is kept
// for manual follow-up instead of being discarded.
type Result struct {
	Fields      models.ExtractedFields
	ParseError  bool
	RawResponse string
}

// Client calls the Anthropic Messages API with the document attached as an
// inline base64 block.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
	log        *zap.Logger
}

func NewClient(apiKey, model string, logger *zap.Logger) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 90 * time.Second},
		sanitizer:  bluemonday.StrictPolicy(),
		log:        logger,
	}
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	System    string       `json:"system,omitempty"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *blockSource `json:"source,omitempty"`
}

type blockSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// Extract sends the document to the model and parses the JSON reply.
//
// A malformed reply is not an error: it returns a Result with ParseError
// set and the raw response preserved, and the caller records a
// low-confidence document. Only transport-level failures return err.
func (c *Client) Extract(ctx context.Context, data []byte, mimeType string) (*Result, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("extraction api key not configured")
	}

	block := contentBlock{
		Source: &blockSource{
			Type:      "base64",
			MediaType: mimeType,
			Data:      base64.StdEncoding.EncodeToString(data),
		},
	}
	if mimeType == "application/pdf" {
		block.Type = "document"
	} else {
		block.Type = "image"
	}

	req := apiRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []apiMessage{{
			Role: "user",
			Content: []contentBlock{
				block,
				{Type: "text", Text: userPrompt},
			},
		}},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	text, err := c.call(ctx, body)
	if err != nil {
		return nil, err
	}
	return c.parse(text), nil
}

// call posts the request with exponential backoff on 429/5xx and returns the
// first content block's text.
func (c *Client) call(ctx context.Context, body []byte) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * initDelay
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
		if err != nil {
			return "", fmt.Errorf("create request: %w", err)
		}
		httpReq.Header.Set("x-api-key", c.apiKey)
		httpReq.Header.Set("anthropic-version", apiVersion)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			lastErr = fmt.Errorf("extraction request failed: %w", err)
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = fmt.Errorf("read response: %w", err)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("extraction API error (%d): %s", resp.StatusCode, respBody)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				continue
			}
			return "", lastErr
		}

		var apiResp apiResponse
		if err := json.Unmarshal(respBody, &apiResp); err != nil {
			return "", fmt.Errorf("decode response envelope: %w", err)
		}
		if len(apiResp.Content) == 0 {
			return "", fmt.Errorf("empty response content")
		}
		return apiResp.Content[0].Text, nil
	}
	return "", fmt.Errorf("max retries (%d) exceeded: %w", maxRetries, lastErr)
}

// parse strips a wrapping markdown code fence if present and decodes the
// JSON object. Any parse failure yields the parse-error sentinel, never an
// error.
func (c *Client) parse(text string) *Result {
	cleaned := StripCodeFence(text)

	var fields models.ExtractedFields
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		c.log.Warn("extraction reply was not valid JSON", zap.Error(err))
		return &Result{ParseError: true, RawResponse: text}
	}

	c.sanitizeFields(&fields)
	return &Result{Fields: fields, RawResponse: text}
}

// sanitizeFields strips any markup the model smuggled into free-text fields
// before they reach storage and, later, the review UI.
func (c *Client) sanitizeFields(f *models.ExtractedFields) {
	clean := func(s string) string {
		return strings.TrimSpace(c.sanitizer.Sanitize(s))
	}
	f.DocumentType = clean(f.DocumentType)
	f.DocumentDate = clean(f.DocumentDate)
	f.CaseNumber = clean(f.CaseNumber)
	f.CourtName = clean(f.CourtName)
	f.Title = clean(f.Title)
	f.Summary = clean(f.Summary)
	f.Notes = clean(f.Notes)
	f.RawTextExcerpt = clean(f.RawTextExcerpt)
	f.Confidence = clean(f.Confidence)
	for i, p := range f.Parties {
		f.Parties[i] = clean(p)
	}
	for i, s := range f.Signatures {
		f.Signatures[i] = clean(s)
	}
}

// StripCodeFence removes a wrapping markdown code fence (with optional
// language tag) from a model reply.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	if !strings.HasPrefix(cleaned, "```") {
		return cleaned
	}
	if idx := strings.Index(cleaned, "\n"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	}
	if idx := strings.LastIndex(cleaned, "```"); idx >= 0 {
		cleaned = cleaned[:idx]
	}
	return strings.TrimSpace(cleaned)
}
