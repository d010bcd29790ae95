// Package ai talks to a generative-text provider for email
// summarization, reply drafting, categorization, digests, and intent
// parsing. Every operation has a deterministic fallback so a provider
// outage never surfaces as an error from this package.
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot/internal/config"
	"github.com/mailpilot/mailpilot/internal/google"
)

// Completer is the single-method provider abstraction. Both the
// Anthropic and OpenAI clients implement it.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Categories an email can be filed under. Categorize never returns a
// value outside this set.
var Categories = []string{"Work", "Personal", "Promotions", "Finance", "Urgent", "Social"}

// Intent is the parsed interpretation of a free-form user command
type Intent struct {
	Intent          string            `json:"intent"`
	Params          map[string]string `json:"params"`
	Confidence      string            `json:"confidence"`
	OriginalMessage string            `json:"original_message"`
}

// Service implements the email AI operations on top of a Completer
type Service struct {
	llm    Completer
	logger zerolog.Logger
}

// NewService builds a Service for the configured provider
func NewService(cfg *config.AIConfig, logger zerolog.Logger) (*Service, error) {
	var llm Completer
	switch cfg.Provider {
	case "anthropic":
		llm = NewAnthropicClient(cfg.AnthropicKey, cfg.AnthropicModel, logger)
	case "openai":
		llm = NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel, logger)
	default:
		return nil, fmt.Errorf("invalid AI provider: %s", cfg.Provider)
	}
	return NewServiceWith(llm, logger), nil
}

// NewServiceWith builds a Service around an existing Completer
func NewServiceWith(llm Completer, logger zerolog.Logger) *Service {
	return &Service{
		llm:    llm,
		logger: logger.With().Str("component", "ai").Logger(),
	}
}

// Summarize produces a short summary of an email. On provider failure
// it falls back to the first 200 characters of the body.
func (s *Service) Summarize(ctx context.Context, subject, body, sender string) string {
	prompt := fmt.Sprintf(`Summarize this email in 2-3 concise sentences. Focus on the main point and any actions needed.

From: %s
Subject: %s

Email content:
%s

Provide a clear, professional summary.`, sender, subject, truncate(body, 1000))

	text, err := s.llm.Complete(ctx, prompt, 200)
	if err != nil {
		s.logger.Error().Err(err).Msg("Summarization failed, using snippet fallback")
		return FallbackSummary(body)
	}
	return text
}

// GenerateReply drafts a reply to an email, optionally steered by
// extra context from the user. On provider failure it falls back to a
// fixed acknowledgment referencing the subject.
func (s *Service) GenerateReply(ctx context.Context, subject, body, sender, extra string) string {
	contextText := ""
	if extra != "" {
		contextText = "\nAdditional context: " + extra
	}

	prompt := fmt.Sprintf(`Generate a professional, helpful email reply to this email. Keep it concise but warm.

From: %s
Subject: %s

Email content:
%s%s

Generate a complete email reply. Do not include subject line or salutation - just the body of the reply.`,
		sender, subject, truncate(body, 1500), contextText)

	text, err := s.llm.Complete(ctx, prompt, 500)
	if err != nil {
		s.logger.Error().Err(err).Msg("Reply generation failed, using acknowledgment fallback")
		return FallbackReply(subject)
	}
	return text
}

// Categorize files an email into one of the fixed Categories. Provider
// failure or an answer outside the set falls back to keyword matching,
// then to "Personal".
func (s *Service) Categorize(ctx context.Context, subject, body string) string {
	prompt := fmt.Sprintf(`Categorize this email into ONE of these categories: %s

Subject: %s
Body: %s

Respond with only the category name.`, strings.Join(Categories, ", "), subject, truncate(body, 500))

	text, err := s.llm.Complete(ctx, prompt, 20)
	if err != nil {
		s.logger.Error().Err(err).Msg("Categorization failed, using keyword fallback")
		return KeywordCategory(subject, body)
	}

	answer := strings.TrimSpace(text)
	for _, cat := range Categories {
		if strings.EqualFold(answer, cat) {
			return cat
		}
	}

	s.logger.Warn().Str("answer", answer).Msg("Unrecognized category, using keyword fallback")
	return KeywordCategory(subject, body)
}

// Digest produces an executive summary of the given emails. Provider
// failure falls back to a count-only sentence.
func (s *Service) Digest(ctx context.Context, emails []google.Email) string {
	lines := make([]string, 0, 10)
	for i, e := range emails {
		if i == 10 {
			break
		}
		lines = append(lines, fmt.Sprintf("- From %s: %s", e.SenderName, e.Subject))
	}

	prompt := fmt.Sprintf(`Create a brief daily digest of these emails. Highlight important ones and suggest priorities.

Emails received:
%s

Provide a concise executive summary.`, strings.Join(lines, "\n"))

	text, err := s.llm.Complete(ctx, prompt, 400)
	if err != nil {
		s.logger.Error().Err(err).Msg("Digest generation failed, using count fallback")
		return FallbackDigest(len(emails))
	}
	return text
}

// ParseIntent interprets a free-form user command. Provider failure or
// unparsable output falls back to the help intent at low confidence.
func (s *Service) ParseIntent(ctx context.Context, userMessage string) Intent {
	prompt := fmt.Sprintf(`Analyze this user command and extract the intent and parameters.

User message: %q

Respond in this exact format:
INTENT: [read_emails | generate_reply | send_reply | delete_email | search_emails | help]
PARAMS: [any relevant parameters like email_id, query, number, etc.]
CONFIDENCE: [high | medium | low]

Examples:
"Show me my latest emails" -> INTENT: read_emails, PARAMS: count=5, CONFIDENCE: high
"Delete email 2" -> INTENT: delete_email, PARAMS: email_id=2, CONFIDENCE: high
"Reply to the Amazon email" -> INTENT: generate_reply, PARAMS: query=Amazon, CONFIDENCE: medium`, userMessage)

	text, err := s.llm.Complete(ctx, prompt, 150)
	if err != nil {
		s.logger.Error().Err(err).Msg("Intent parsing failed, using help fallback")
		return FallbackIntent(userMessage)
	}

	intent := parseIntentLines(text)
	intent.OriginalMessage = userMessage
	return intent
}

// parseIntentLines decodes the INTENT/PARAMS/CONFIDENCE line format
func parseIntentLines(text string) Intent {
	intent := Intent{
		Intent:     "help",
		Params:     map[string]string{},
		Confidence: "medium",
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		switch {
		case strings.HasPrefix(line, "INTENT:"):
			value := strings.TrimSpace(strings.TrimPrefix(line, "INTENT:"))
			if i := strings.Index(value, ","); i >= 0 {
				value = value[:i]
			}
			intent.Intent = strings.TrimSpace(value)
		case strings.HasPrefix(line, "PARAMS:"):
			value := strings.TrimSpace(strings.TrimPrefix(line, "PARAMS:"))
			if value == "" || value == "none" {
				continue
			}
			for _, param := range strings.Split(value, ",") {
				if k, v, ok := strings.Cut(param, "="); ok {
					intent.Params[strings.TrimSpace(k)] = strings.TrimSpace(v)
				}
			}
		case strings.HasPrefix(line, "CONFIDENCE:"):
			intent.Confidence = strings.TrimSpace(strings.TrimPrefix(line, "CONFIDENCE:"))
		}
	}

	return intent
}

// FallbackSummary is the deterministic summary used when the provider
// is unavailable: the first 200 characters of the body, with an
// ellipsis when truncated.
func FallbackSummary(body string) string {
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}

// FallbackReply is the acknowledgment used when reply generation fails
func FallbackReply(subject string) string {
	return fmt.Sprintf("Thank you for your email. I've received your message regarding '%s' and will respond shortly.", subject)
}

// FallbackDigest is the count-only digest used when generation fails
func FallbackDigest(count int) string {
	return fmt.Sprintf("You have %d emails. Please review them at your convenience.", count)
}

// FallbackIntent is the low-confidence help intent used when parsing fails
func FallbackIntent(userMessage string) Intent {
	return Intent{
		Intent:          "help",
		Params:          map[string]string{},
		Confidence:      "low",
		OriginalMessage: userMessage,
	}
}

// KeywordCategory categorizes an email by keyword lists, defaulting to
// Personal when nothing matches.
func KeywordCategory(subject, body string) string {
	subject = strings.ToLower(subject)
	body = strings.ToLower(body)

	contains := func(keywords ...string) bool {
		for _, kw := range keywords {
			if strings.Contains(subject, kw) || strings.Contains(body, kw) {
				return true
			}
		}
		return false
	}

	switch {
	case contains("sale", "offer", "discount", "deal", "promotion", "unsubscribe"):
		return "Promotions"
	case contains("meeting", "deadline", "project", "report", "urgent", "asap"):
		return "Work"
	case contains("invoice", "payment", "receipt", "transaction", "bill"):
		return "Finance"
	}
	return "Personal"
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
