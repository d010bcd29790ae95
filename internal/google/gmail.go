package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const callTimeout = 30 * time.Second

// Client wraps the Gmail API for a single authenticated user. One is
// built per request from the session token's Google credentials; there
// is no shared client or cache.
type Client struct {
	svc    *gmailapi.Service
	logger zerolog.Logger
}

// Mailbox builds a Gmail client from the session's token pair. The
// token source refreshes the access token transparently when expired.
func (o *OAuth) Mailbox(ctx context.Context, accessToken, refreshToken string) (*Client, error) {
	src := o.config.TokenSource(ctx, &oauth2.Token{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	})

	svc, err := gmailapi.NewService(ctx, option.WithTokenSource(src))
	if err != nil {
		return nil, wrapAPIError("new gmail service", err)
	}

	return &Client{
		svc:    svc,
		logger: o.logger.With().Str("component", "gmail").Logger(),
	}, nil
}

// ListEmails fetches up to max inbox messages matching the optional
// Gmail query, newest first. Messages that fail to load individually
// are skipped, not fatal.
func (c *Client) ListEmails(ctx context.Context, max int64, query string) ([]Email, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	call := c.svc.Users.Messages.List("me").
		LabelIds("INBOX").
		MaxResults(max).
		Context(ctx)
	if query != "" {
		call = call.Q(query)
	}

	resp, err := call.Do()
	if err != nil {
		return nil, wrapAPIError("list messages", err)
	}

	emails := make([]Email, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		email, err := c.GetEmail(ctx, m.Id)
		if err != nil {
			c.logger.Error().Err(err).Str("id", m.Id).Msg("Failed to load message")
			continue
		}
		emails = append(emails, *email)
	}

	return emails, nil
}

// Search fetches up to max messages matching the query
func (c *Client) Search(ctx context.Context, query string, max int64) ([]Email, error) {
	return c.ListEmails(ctx, max, query)
}

// GetEmail fetches a single message and normalizes it. A missing id
// fails with ErrNotFound.
func (c *Client) GetEmail(ctx context.Context, id string) (*Email, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	msg, err := c.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("get message", err)
	}

	var subject, from, date string
	for _, h := range msg.Payload.Headers {
		switch strings.ToLower(h.Name) {
		case "subject":
			subject = h.Value
		case "from":
			from = h.Value
		case "date":
			date = h.Value
		}
	}
	if subject == "" {
		subject = "No Subject"
	}
	if from == "" {
		from = "Unknown"
	}

	senderName, senderEmail := ParseSender(from)

	return &Email{
		ID:          id,
		ThreadID:    msg.ThreadId,
		SenderName:  senderName,
		SenderEmail: senderEmail,
		Subject:     subject,
		Snippet:     msg.Snippet,
		Body:        ExtractBody(msg.Payload),
		Date:        date,
	}, nil
}

// SendReply sends a plain-text reply, threading it onto threadID when
// given. The subject gains a "Re: " prefix unless it already has one.
func (c *Client) SendReply(ctx context.Context, to, subject, body, threadID string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if !strings.HasPrefix(subject, "Re:") {
		subject = "Re: " + subject
	}

	raw, err := composeMessage(to, subject, body)
	if err != nil {
		return fmt.Errorf("compose reply: %w", err)
	}

	msg := &gmailapi.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}
	if threadID != "" {
		msg.ThreadId = threadID
	}

	if _, err := c.svc.Users.Messages.Send("me", msg).Context(ctx).Do(); err != nil {
		return wrapAPIError("send message", err)
	}

	c.logger.Info().Str("to", to).Msg("Reply sent")
	return nil
}

// Trash moves a message to the trash
func (c *Client) Trash(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	if _, err := c.svc.Users.Messages.Trash("me", id).Context(ctx).Do(); err != nil {
		return wrapAPIError("trash message", err)
	}

	c.logger.Info().Str("id", id).Msg("Message moved to trash")
	return nil
}

// ExtractBody pulls the message body out of a Gmail payload,
// preferring a text/plain part over text/html. Missing bodies yield
// an empty string, never an error.
func ExtractBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if part.MimeType == "text/plain" {
				if s := decodePartBody(part); s != "" {
					return s
				}
			}
		}
		for _, part := range payload.Parts {
			if part.MimeType == "text/html" {
				if s := decodePartBody(part); s != "" {
					return s
				}
			}
		}
		// multipart/alternative nested one level down
		for _, part := range payload.Parts {
			if len(part.Parts) > 0 {
				if s := ExtractBody(part); s != "" {
					return s
				}
			}
		}
		return ""
	}

	return decodePartBody(payload)
}

func decodePartBody(part *gmailapi.MessagePart) string {
	if part.Body == nil || part.Body.Data == "" {
		return ""
	}
	data, err := base64.URLEncoding.DecodeString(part.Body.Data)
	if err != nil {
		data, err = base64.RawURLEncoding.DecodeString(part.Body.Data)
		if err != nil {
			return ""
		}
	}
	return string(data)
}

// composeMessage builds an RFC 5322 plain-text message
func composeMessage(to, subject, body string) ([]byte, error) {
	var buf bytes.Buffer

	var h mail.Header
	h.SetDate(time.Now())
	h.SetAddressList("To", []*mail.Address{{Address: to}})
	h.SetSubject(subject)

	mw, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, err
	}
	if _, err := io.WriteString(mw, body); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
