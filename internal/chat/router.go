// Package chat implements the intent router: each turn is a pure
// function of the user's text and the authenticated session, routed
// through an ordered rule list with first-match-wins semantics.
// Destructive actions are never executed from free text alone; deletes
// are proposed here and executed only via ConfirmDelete with an
// explicit message id.
package chat

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot/internal/ai"
	"github.com/mailpilot/mailpilot/internal/google"
)

// Mailbox is the mail gateway surface the router needs
type Mailbox interface {
	ListEmails(ctx context.Context, max int64, query string) ([]google.Email, error)
	Search(ctx context.Context, query string, max int64) ([]google.Email, error)
	Trash(ctx context.Context, id string) error
}

// Assistant is the generative-text surface the router needs
type Assistant interface {
	Summarize(ctx context.Context, subject, body, sender string) string
	Categorize(ctx context.Context, subject, body string) string
	Digest(ctx context.Context, emails []google.Email) string
	ParseIntent(ctx context.Context, userMessage string) ai.Intent
}

// EmailSummary is one entry of a list_emails payload. Number is the
// 1-based display position clients use to refer back to the email.
type EmailSummary struct {
	Number      int    `json:"number"`
	ID          string `json:"id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Summary     string `json:"summary"`
	Date        string `json:"date"`
}

type handlerFunc func(ctx context.Context, t *turn) (*Result, error)

// turn carries one invocation's inputs through the rule handlers
type turn struct {
	text      string
	mailbox   Mailbox
	assistant Assistant
}

// Router evaluates chat turns against the fixed rule order
type Router struct {
	rules  []rule
	logger zerolog.Logger
}

// NewRouter creates a Router with the standard rule chain
func NewRouter(logger zerolog.Logger) *Router {
	r := &Router{
		logger: logger.With().Str("component", "chat").Logger(),
	}

	// Order is significant: "delete my list" matches read before
	// delete because read is checked first.
	r.rules = []rule{
		{
			name:   "read",
			match:  func(s string) bool { return containsAny(s, "read", "show", "list", "get") },
			handle: r.handleRead,
		},
		{
			name:   "delete",
			match:  func(s string) bool { return containsAny(s, "delete") },
			handle: r.handleDelete,
		},
		{
			name:   "reply",
			match:  func(s string) bool { return containsAny(s, "reply", "respond") },
			handle: r.handleReply,
		},
		{
			name:   "digest",
			match:  func(s string) bool { return containsAny(s, "digest", "summary") },
			handle: r.handleDigest,
		},
		{
			name:   "categorize",
			match:  func(s string) bool { return containsAny(s, "categorize", "organize") },
			handle: r.handleCategorize,
		},
		{
			name:   "search",
			match:  func(s string) bool { return containsAny(s, "search", "find") },
			handle: r.handleSearch,
		},
		{
			name:   "help",
			match:  func(s string) bool { return s == "" || containsAny(s, "help") },
			handle: r.handleHelp,
		},
	}

	return r
}

// Handle routes one chat turn. A missed match is never an error; it
// degrades to a clarify response. Gateway failures inside a matched
// rule propagate to the caller.
func (r *Router) Handle(ctx context.Context, message string, mailbox Mailbox, assistant Assistant) (*Result, error) {
	text := normalize(message)
	t := &turn{text: text, mailbox: mailbox, assistant: assistant}

	// Parsed intent is logged for visibility but routing below is
	// purely lexical, matching the reference behavior.
	intent := assistant.ParseIntent(ctx, message)
	r.logger.Debug().
		Str("intent", intent.Intent).
		Str("confidence", intent.Confidence).
		Msg("Parsed intent")

	for _, rule := range r.rules {
		if !rule.match(text) {
			continue
		}
		r.logger.Info().Str("rule", rule.name).Msg("Chat turn routed")
		return rule.handle(ctx, t)
	}

	return &Result{
		Response: "I'm not sure what you'd like to do. Try asking me to 'show emails', 'delete email 2', or 'help' for more options.",
		Action:   ActionClarify,
	}, nil
}

// ConfirmDelete executes a previously proposed deletion. It takes a
// concrete message id, never free text. A gateway failure yields an
// error-action result, not an error to the caller.
func (r *Router) ConfirmDelete(ctx context.Context, mailbox Mailbox, emailID string) *Result {
	if err := mailbox.Trash(ctx, emailID); err != nil {
		r.logger.Error().Err(err).Str("email_id", emailID).Msg("Delete failed")
		return &Result{
			Response: "Failed to delete email. Please try again.",
			Action:   ActionError,
		}
	}
	return &Result{
		Response: "Email deleted successfully!",
		Action:   ActionDeleteSuccess,
		Data:     map[string]any{"email_id": emailID},
	}
}

func (r *Router) handleRead(ctx context.Context, t *turn) (*Result, error) {
	count := requestedCount(t.text)

	emails, err := t.mailbox.ListEmails(ctx, count, "")
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}

	summaries := SummarizeAll(ctx, t.assistant, emails)
	return &Result{
		Response: fmt.Sprintf("I found %d emails in your inbox. Here they are:", len(emails)),
		Action:   ActionListEmails,
		Data:     map[string]any{"emails": summaries},
	}, nil
}

func (r *Router) handleDelete(ctx context.Context, t *turn) (*Result, error) {
	if n, ok := firstNumber(t.text); ok {
		return &Result{
			Response: fmt.Sprintf("Please confirm: Do you want to delete email #%d? Reply 'yes' or 'confirm' to proceed.", n),
			Action:   ActionDeleteConfirm,
			Data:     map[string]any{"email_number": n},
		}, nil
	}

	if containsAny(t.text, "latest", "last") {
		emails, err := t.mailbox.ListEmails(ctx, 1, "")
		if err != nil {
			return nil, fmt.Errorf("list emails: %w", err)
		}
		if len(emails) > 0 {
			return &Result{
				Response: fmt.Sprintf("Please confirm: Do you want to delete the latest email from %s?", emails[0].SenderName),
				Action:   ActionDeleteConfirm,
				Data:     map[string]any{"email_id": emails[0].ID},
			}, nil
		}
	} else if query := stripKeywords(t.text, "delete", "email"); query != "" {
		emails, err := t.mailbox.Search(ctx, query, 3)
		if err != nil {
			return nil, fmt.Errorf("search emails: %w", err)
		}
		if len(emails) > 0 {
			return &Result{
				Response: fmt.Sprintf("I found %d emails matching '%s'. Which one do you want to delete?", len(emails), query),
				Action:   ActionDeleteSelect,
				Data:     map[string]any{"emails": emails},
			}, nil
		}
	}

	return &Result{
		Response: "I couldn't identify which email to delete. Can you be more specific? For example: 'delete email 2' or 'delete latest email from Amazon'",
		Action:   ActionClarify,
	}, nil
}

func (r *Router) handleReply(ctx context.Context, t *turn) (*Result, error) {
	if n, ok := firstNumber(t.text); ok {
		return &Result{
			Response: fmt.Sprintf("I'll generate a reply for email #%d. One moment...", n),
			Action:   ActionGenerateReply,
			Data:     map[string]any{"email_number": n},
		}, nil
	}
	return &Result{
		Response: "Which email would you like to reply to? Please specify the email number.",
		Action:   ActionClarify,
	}, nil
}

func (r *Router) handleDigest(ctx context.Context, t *turn) (*Result, error) {
	emails, err := t.mailbox.ListEmails(ctx, 20, "")
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}

	digest := t.assistant.Digest(ctx, emails)
	return &Result{
		Response: digest,
		Action:   ActionDailyDigest,
		Data:     map[string]any{"email_count": len(emails)},
	}, nil
}

func (r *Router) handleCategorize(ctx context.Context, t *turn) (*Result, error) {
	emails, err := t.mailbox.ListEmails(ctx, 10, "")
	if err != nil {
		return nil, fmt.Errorf("list emails: %w", err)
	}

	categorized := map[string][]map[string]any{}
	for _, e := range emails {
		category := t.assistant.Categorize(ctx, e.Subject, e.Body)
		categorized[category] = append(categorized[category], map[string]any{
			"subject": e.Subject,
			"sender":  e.SenderName,
		})
	}

	return &Result{
		Response: "I've categorized your recent emails:",
		Action:   ActionCategorize,
		Data:     map[string]any{"categories": categorized},
	}, nil
}

func (r *Router) handleSearch(ctx context.Context, t *turn) (*Result, error) {
	query := stripKeywords(t.text, "search", "find", "email")
	if query == "" {
		return &Result{
			Response: "What would you like to search for?",
			Action:   ActionClarify,
		}, nil
	}

	emails, err := t.mailbox.Search(ctx, query, 5)
	if err != nil {
		return nil, fmt.Errorf("search emails: %w", err)
	}

	return &Result{
		Response: fmt.Sprintf("I found %d emails matching '%s':", len(emails), query),
		Action:   ActionSearchResults,
		Data:     map[string]any{"emails": emails, "query": query},
	}, nil
}

func (r *Router) handleHelp(_ context.Context, _ *turn) (*Result, error) {
	return &Result{
		Response: helpText,
		Action:   ActionHelp,
	}, nil
}

// SummarizeAll summarizes emails concurrently. Results are placed by
// index, so output order matches input order regardless of which
// summary finishes first.
func SummarizeAll(ctx context.Context, assistant Assistant, emails []google.Email) []EmailSummary {
	summaries := make([]EmailSummary, len(emails))

	var wg sync.WaitGroup
	for i, e := range emails {
		wg.Add(1)
		go func(i int, e google.Email) {
			defer wg.Done()
			summaries[i] = EmailSummary{
				Number:      i + 1,
				ID:          e.ID,
				SenderName:  e.SenderName,
				SenderEmail: e.SenderEmail,
				Subject:     e.Subject,
				Summary:     assistant.Summarize(ctx, e.Subject, e.Body, e.SenderName),
				Date:        e.Date,
			}
		}(i, e)
	}
	wg.Wait()

	return summaries
}
