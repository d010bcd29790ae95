package google

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

func TestParseSender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantAddr string
	}{
		{"name-and-address", "Jane Doe <jane@example.com>", "Jane Doe", "jane@example.com"},
		{"quoted-name", `"Doe, Jane" <jane@example.com>`, "Doe, Jane", "jane@example.com"},
		{"bare-address", "jane@example.com", "jane", "jane@example.com"},
		{"no-at-sign", "mailer-daemon", "mailer-daemon", "mailer-daemon"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			name, addr := ParseSender(tc.input)
			if name != tc.wantName || addr != tc.wantAddr {
				t.Errorf("ParseSender(%q) = (%q, %q), want (%q, %q)",
					tc.input, name, addr, tc.wantName, tc.wantAddr)
			}
		})
	}
}

func encodeBody(s string) *gmailapi.MessagePartBody {
	return &gmailapi.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte(s))}
}

func TestExtractBodyPrefersPlainText(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Parts: []*gmailapi.MessagePart{
			{MimeType: "text/html", Body: encodeBody("<p>hello</p>")},
			{MimeType: "text/plain", Body: encodeBody("hello")},
		},
	}

	if got := ExtractBody(payload); got != "hello" {
		t.Errorf("ExtractBody = %q, want plain-text part", got)
	}
}

func TestExtractBodyFallsBackToHTML(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Parts: []*gmailapi.MessagePart{
			{MimeType: "text/html", Body: encodeBody("<p>hello</p>")},
		},
	}

	if got := ExtractBody(payload); got != "<p>hello</p>" {
		t.Errorf("ExtractBody = %q, want HTML part", got)
	}
}

func TestExtractBodySimpleMessage(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     encodeBody("just a body"),
	}

	if got := ExtractBody(payload); got != "just a body" {
		t.Errorf("ExtractBody = %q", got)
	}
}

func TestExtractBodyNestedMultipart(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/plain", Body: encodeBody("nested")},
				},
			},
		},
	}

	if got := ExtractBody(payload); got != "nested" {
		t.Errorf("ExtractBody = %q, want nested part", got)
	}
}

func TestExtractBodyMissingIsEmpty(t *testing.T) {
	tests := []struct {
		name    string
		payload *gmailapi.MessagePart
	}{
		{"nil-payload", nil},
		{"no-data", &gmailapi.MessagePart{MimeType: "text/plain", Body: &gmailapi.MessagePartBody{}}},
		{"attachment-only", &gmailapi.MessagePart{
			Parts: []*gmailapi.MessagePart{{MimeType: "application/pdf"}},
		}},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractBody(tc.payload); got != "" {
				t.Errorf("ExtractBody = %q, want empty string", got)
			}
		})
	}
}

func TestWrapAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"timeout", context.DeadlineExceeded, ErrUpstreamUnavailable},
		{"not-found", &googleapi.Error{Code: 404}, ErrNotFound},
		{"bad-token", &googleapi.Error{Code: 401}, ErrUpstreamRejected},
		{"forbidden", &googleapi.Error{Code: 403}, ErrUpstreamRejected},
		{"server-error", &googleapi.Error{Code: 503}, ErrUpstreamUnavailable},
		{"transport", errors.New("connection refused"), ErrUpstreamUnavailable},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got := wrapAPIError("op", tc.err)
			if tc.want == nil {
				if got != nil {
					t.Errorf("wrapAPIError = %v, want nil", got)
				}
				return
			}
			if !errors.Is(got, tc.want) {
				t.Errorf("wrapAPIError(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}

func TestComposeMessage(t *testing.T) {
	raw, err := composeMessage("jane@example.com", "Re: Hello", "thanks for writing")
	if err != nil {
		t.Fatalf("composeMessage: %v", err)
	}

	msg := string(raw)
	for _, want := range []string{"jane@example.com", "Subject: Re: Hello", "thanks for writing"} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q:\n%s", want, msg)
		}
	}
}
