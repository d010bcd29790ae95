package server

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mailpilot/mailpilot/internal/google"
	"github.com/mailpilot/mailpilot/internal/token"
)

// emailSummary is a normalized record plus its generated summary
type emailSummary struct {
	ID          string `json:"id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Summary     string `json:"summary"`
	Snippet     string `json:"snippet"`
	Date        string `json:"date"`
}

type generateReplyRequest struct {
	EmailID string `json:"email_id"`
	Context string `json:"context"`
}

type sendReplyRequest struct {
	EmailID      string `json:"email_id"`
	ReplyContent string `json:"reply_content"`
}

func maxResultsParam(r *http.Request, fallback int64) int64 {
	v := r.URL.Query().Get("max_results")
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

// handleListEmails lists inbox messages with generated summaries
func (s *Server) handleListEmails(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	emails, err := mb.ListEmails(r.Context(), maxResultsParam(r, 5), r.URL.Query().Get("query"))
	if err != nil {
		writeError(w, err)
		return
	}

	// Summaries run concurrently but land by index, so the response
	// order matches the fetch order.
	summaries := make([]emailSummary, len(emails))
	var wg sync.WaitGroup
	for i, e := range emails {
		wg.Add(1)
		go func(i int, e google.Email) {
			defer wg.Done()
			summaries[i] = emailSummary{
				ID:          e.ID,
				SenderName:  e.SenderName,
				SenderEmail: e.SenderEmail,
				Subject:     e.Subject,
				Summary:     s.assistant.Summarize(r.Context(), e.Subject, e.Body, e.SenderName),
				Snippet:     e.Snippet,
				Date:        e.Date,
			}
		}(i, e)
	}
	wg.Wait()

	writeJSON(w, http.StatusOK, map[string]any{
		"emails": summaries,
		"total":  len(summaries),
	})
}

// handleGetEmail returns the full normalized record for one message
func (s *Server) handleGetEmail(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	email, err := mb.GetEmail(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, email)
}

// handleGenerateReply drafts a reply for an email without sending it
func (s *Server) handleGenerateReply(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	var req generateReplyRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.EmailID == "" {
		writeDetail(w, http.StatusBadRequest, "email_id is required")
		return
	}

	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	email, err := mb.GetEmail(r.Context(), req.EmailID)
	if err != nil {
		writeError(w, err)
		return
	}

	reply := s.assistant.GenerateReply(r.Context(), email.Subject, email.Body, email.SenderName, req.Context)
	writeJSON(w, http.StatusOK, map[string]string{
		"reply":    reply,
		"email_id": req.EmailID,
	})
}

// handleSendReply sends reply content on the original email's thread.
// Parameters are accepted as query values or a JSON body.
func (s *Server) handleSendReply(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	req := sendReplyRequest{
		EmailID:      r.URL.Query().Get("email_id"),
		ReplyContent: r.URL.Query().Get("reply_content"),
	}
	if req.EmailID == "" {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.EmailID == "" || req.ReplyContent == "" {
		writeDetail(w, http.StatusBadRequest, "email_id and reply_content are required")
		return
	}

	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	email, err := mb.GetEmail(r.Context(), req.EmailID)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := mb.SendReply(r.Context(), email.SenderEmail, email.Subject, req.ReplyContent, email.ThreadID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Reply sent successfully",
		"email_id": req.EmailID,
	})
}

// handleDeleteEmail trashes a message by id
func (s *Server) handleDeleteEmail(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	id := r.PathValue("id")
	if err := mb.Trash(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Email deleted successfully",
		"email_id": id,
	})
}

// handleSearchEmails searches the mailbox with a free-form query
func (s *Server) handleSearchEmails(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	query := r.PathValue("query")
	emails, err := mb.Search(r.Context(), query, maxResultsParam(r, 10))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"emails": emails,
		"total":  len(emails),
		"query":  query,
	})
}

// handleCategorize groups recent emails by generated category
func (s *Server) handleCategorize(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	emails, err := mb.ListEmails(r.Context(), 10, "")
	if err != nil {
		writeError(w, err)
		return
	}

	categorized := map[string][]map[string]string{}
	for _, e := range emails {
		category := s.assistant.Categorize(r.Context(), e.Subject, e.Body)
		categorized[category] = append(categorized[category], map[string]string{
			"id":      e.ID,
			"subject": e.Subject,
			"sender":  e.SenderName,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"categories": categorized})
}

// handleDailyDigest summarizes the day's inbox in one narrative
func (s *Server) handleDailyDigest(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	emails, err := mb.ListEmails(r.Context(), 20, "")
	if err != nil {
		writeError(w, err)
		return
	}

	digest := s.assistant.Digest(r.Context(), emails)
	writeJSON(w, http.StatusOK, map[string]any{
		"digest":      digest,
		"email_count": len(emails),
		"timestamp":   time.Now().Format(time.RFC3339),
	})
}
