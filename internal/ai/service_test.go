package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot/internal/google"
)

// scriptedCompleter returns a fixed answer, or fails every call
type scriptedCompleter struct {
	answer string
	err    error
}

func (c scriptedCompleter) Complete(_ context.Context, _ string, _ int) (string, error) {
	if c.err != nil {
		return "", c.err
	}
	return c.answer, nil
}

var errDown = errors.New("provider down")

func failingService() *Service {
	return NewServiceWith(scriptedCompleter{err: errDown}, zerolog.Nop())
}

func TestSummarizeFallbackTruncates(t *testing.T) {
	body := strings.Repeat("a", 450)

	got := failingService().Summarize(context.Background(), "subj", body, "sender")
	want := body[:200] + "..."
	if got != want {
		t.Errorf("fallback summary = %d chars %q..., want first 200 chars plus ellipsis", len(got), got[:20])
	}
}

func TestSummarizeFallbackShortBody(t *testing.T) {
	got := failingService().Summarize(context.Background(), "subj", "short body", "sender")
	if got != "short body" {
		t.Errorf("fallback summary = %q, want body unchanged", got)
	}
}

func TestGenerateReplyFallback(t *testing.T) {
	got := failingService().GenerateReply(context.Background(), "Project update", "body", "sender", "")
	if !strings.Contains(got, "'Project update'") {
		t.Errorf("fallback reply %q does not reference the subject", got)
	}
}

func TestCategorizeFallbacks(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		body    string
		want    string
	}{
		{"promo-subject", "Huge sale this weekend", "", "Promotions"},
		{"work-body", "hello", "the project deadline is monday", "Work"},
		{"finance", "Your invoice", "", "Finance"},
		{"default", "hello there", "how are you", "Personal"},
	}

	svc := failingService()
	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			got := svc.Categorize(context.Background(), tc.subject, tc.body)
			if got != tc.want {
				t.Errorf("Categorize(%q, %q) = %q, want %q", tc.subject, tc.body, got, tc.want)
			}
		})
	}
}

func TestCategorizeRejectsUnknownLabel(t *testing.T) {
	svc := NewServiceWith(scriptedCompleter{answer: "Spam"}, zerolog.Nop())

	got := svc.Categorize(context.Background(), "hello", "how are you")
	if got != "Personal" {
		t.Errorf("Categorize with out-of-set answer = %q, want keyword fallback Personal", got)
	}
}

func TestCategorizeAcceptsValidLabel(t *testing.T) {
	svc := NewServiceWith(scriptedCompleter{answer: " urgent \n"}, zerolog.Nop())

	got := svc.Categorize(context.Background(), "hello", "")
	if got != "Urgent" {
		t.Errorf("Categorize = %q, want Urgent", got)
	}
}

func TestDigestFallback(t *testing.T) {
	emails := make([]google.Email, 7)

	got := failingService().Digest(context.Background(), emails)
	if got != "You have 7 emails. Please review them at your convenience." {
		t.Errorf("fallback digest = %q", got)
	}
}

func TestParseIntentFallback(t *testing.T) {
	got := failingService().ParseIntent(context.Background(), "delete email 2")
	if got.Intent != "help" || got.Confidence != "low" {
		t.Errorf("fallback intent = %+v, want help/low", got)
	}
	if got.OriginalMessage != "delete email 2" {
		t.Errorf("original message = %q", got.OriginalMessage)
	}
}

func TestParseIntentLines(t *testing.T) {
	svc := NewServiceWith(scriptedCompleter{answer: `INTENT: delete_email, something
PARAMS: email_id=2, query=amazon
CONFIDENCE: high`}, zerolog.Nop())

	got := svc.ParseIntent(context.Background(), "delete the amazon email 2")
	if got.Intent != "delete_email" {
		t.Errorf("intent = %q, want delete_email", got.Intent)
	}
	if got.Params["email_id"] != "2" || got.Params["query"] != "amazon" {
		t.Errorf("params = %v", got.Params)
	}
	if got.Confidence != "high" {
		t.Errorf("confidence = %q, want high", got.Confidence)
	}
}

func TestParseIntentMalformedOutput(t *testing.T) {
	svc := NewServiceWith(scriptedCompleter{answer: "I think you want to delete something."}, zerolog.Nop())

	got := svc.ParseIntent(context.Background(), "hmm")
	if got.Intent != "help" {
		t.Errorf("intent = %q, want help for unparsable output", got.Intent)
	}
}
