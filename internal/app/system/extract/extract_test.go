// internal/app/system/extract/extract_test.go
package extract

import (
	"testing"

	"go.uber.org/zap"
)

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain json", `{"title":"x"}`, `{"title":"x"}`},
		{"fenced", "```\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"fenced with lang", "```json\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"surrounding whitespace", "  \n```json\n{\"a\":1}\n```\n  ", `{"a":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripCodeFence(tc.in); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestParseValidReply(t *testing.T) {
	c := NewClient("test-key", "", zap.NewNop())

	reply := "```json\n" + `{
		"document_type": "court_decision",
		"case_number": "12345-01-24",
		"parties": ["Cohen", "Levi"],
		"title": "Decision",
		"confidence": "high"
	}` + "\n```"

	res := c.parse(reply)
	if res.ParseError {
		t.Fatalf("unexpected parse error, raw: %s", res.RawResponse)
	}
	if res.Fields.DocumentType != "court_decision" {
		t.Errorf("document_type = %q", res.Fields.DocumentType)
	}
	if res.Fields.CaseNumber != "12345-01-24" {
		t.Errorf("case_number = %q", res.Fields.CaseNumber)
	}
	if len(res.Fields.Parties) != 2 || res.Fields.Parties[0] != "Cohen" {
		t.Errorf("parties = %v", res.Fields.Parties)
	}
	if res.Fields.Confidence != "high" {
		t.Errorf("confidence = %q", res.Fields.Confidence)
	}
}

func TestParseMalformedReplyKeepsRaw(t *testing.T) {
	c := NewClient("test-key", "", zap.NewNop())

	raw := "I could not read the document, sorry."
	res := c.parse(raw)
	if !res.ParseError {
		t.Fatal("expected ParseError for non-JSON reply")
	}
	if res.RawResponse != raw {
		t.Errorf("raw response not preserved: %q", res.RawResponse)
	}
}

func TestParseSanitizesMarkup(t *testing.T) {
	c := NewClient("test-key", "", zap.NewNop())

	res := c.parse(`{"title":"<script>alert(1)</script>Contract","summary":"<b>bold</b> text"}`)
	if res.ParseError {
		t.Fatal("unexpected parse error")
	}
	if res.Fields.Title != "Contract" {
		t.Errorf("title not sanitized: %q", res.Fields.Title)
	}
	if res.Fields.Summary != "bold text" {
		t.Errorf("summary not sanitized: %q", res.Fields.Summary)
	}
}
