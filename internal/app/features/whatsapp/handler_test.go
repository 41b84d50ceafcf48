// internal/app/features/whatsapp/handler_test.go
package whatsapp

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/caseflowhq/caseflow/internal/app/system/greenapi"
	"github.com/caseflowhq/caseflow/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newWebhookHandler() *Handler {
	return &Handler{
		WA:            greenapi.NewClient("7105000001", "token", zap.NewNop()),
		WebhookSecret: "hook-secret",
		Log:           zap.NewNop(),
	}
}

func postWebhook(t *testing.T, h *Handler, url, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, url, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Webhook(rec, req)
	return rec
}

func TestWebhookRejectsBadToken(t *testing.T) {
	h := newWebhookHandler()
	rec := postWebhook(t, h, "/webhooks/whatsapp?token=wrong", `{}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestWebhookIgnoresIrrelevantEvents(t *testing.T) {
	// Each body must be acknowledged with 200 without touching any
	// downstream dependency (the handler has none wired here, so reaching
	// dispatch would panic).
	tests := []struct {
		name string
		body string
	}{
		{"wrong webhook type", `{"typeWebhook":"outgoingMessageStatus","instanceData":{"idInstance":7105000001}}`},
		{"wrong instance", `{"typeWebhook":"incomingMessageReceived","instanceData":{"idInstance":42},"messageData":{"typeMessage":"textMessage"}}`},
		{"group chat", `{"typeWebhook":"incomingMessageReceived","instanceData":{"idInstance":7105000001},"senderData":{"chatId":"1234-5678@g.us"},"messageData":{"typeMessage":"textMessage"}}`},
		{"unhandled message type", `{"typeWebhook":"incomingMessageReceived","instanceData":{"idInstance":7105000001},"senderData":{"chatId":"972501234567@c.us"},"messageData":{"typeMessage":"locationMessage"}}`},
		{"undecodable body", `{not json`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := postWebhook(t, newWebhookHandler(), "/webhooks/whatsapp?token=hook-secret", tc.body)
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", rec.Code)
			}
		})
	}
}

func TestAccepts(t *testing.T) {
	h := newWebhookHandler()
	p := greenapi.WebhookPayload{
		TypeWebhook:  greenapi.WebhookTypeIncoming,
		InstanceData: greenapi.InstanceData{IDInstance: 7105000001},
		SenderData:   greenapi.SenderData{ChatID: "972501234567@c.us"},
		MessageData:  greenapi.MessageData{TypeMessage: greenapi.MessageTypeDocument},
	}
	if !h.accepts(p) {
		t.Error("incoming document message should be accepted")
	}
}

func TestParseSelection(t *testing.T) {
	tests := []struct {
		text   string
		n      int
		want   int
		wantOK bool
	}{
		{"1", 3, 1, true},
		{"3", 3, 3, true},
		{" 2 ", 3, 2, true},
		{"0", 3, 0, false},
		{"4", 3, 0, false},
		{"-1", 3, 0, false},
		{"two", 3, 0, false},
		{"1.5", 3, 0, false},
		{"", 3, 0, false},
	}
	for _, tc := range tests {
		got, ok := parseSelection(tc.text, tc.n)
		if got != tc.want || ok != tc.wantOK {
			t.Errorf("parseSelection(%q, %d) = (%d, %v), want (%d, %v)",
				tc.text, tc.n, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestSelectionMenuNumbering(t *testing.T) {
	choices := []models.OrgChoice{
		{ID: primitive.NewObjectID(), Name: "Cohen Law"},
		{ID: primitive.NewObjectID(), Name: "Levi & Co"},
	}
	menu := msgSelectionMenu(choices)

	if !strings.Contains(menu, "1. Cohen Law\n") {
		t.Errorf("menu missing first entry: %q", menu)
	}
	if !strings.Contains(menu, "2. Levi & Co\n") {
		t.Errorf("menu missing second entry: %q", menu)
	}
}

func TestIsGroupChat(t *testing.T) {
	if !isGroupChat("1234-5678@g.us") {
		t.Error("group suffix not detected")
	}
	if isGroupChat("972501234567@c.us") {
		t.Error("direct chat misclassified as group")
	}
}
