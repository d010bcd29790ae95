package server

import (
	"net/http"

	"github.com/mailpilot/mailpilot/internal/token"
)

type chatMessageRequest struct {
	Message string `json:"message"`
}

type confirmDeleteRequest struct {
	EmailID string `json:"email_id"`
}

// handleChatMessage routes one natural-language turn through the
// intent router.
func (s *Server) handleChatMessage(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	var req chatMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	result, err := s.router.Handle(r.Context(), req.Message, mb, s.assistant)
	if err != nil {
		s.logger.Error().Err(err).Msg("Chat processing failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleConfirmDelete executes a deletion the client explicitly
// confirmed. The id is accepted as a query value or a JSON body.
func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	req := confirmDeleteRequest{EmailID: r.URL.Query().Get("email_id")}
	if req.EmailID == "" {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.EmailID == "" {
		writeDetail(w, http.StatusBadRequest, "email_id is required")
		return
	}

	mb, ok := s.mailbox(w, r, claims)
	if !ok {
		return
	}

	result := s.router.ConfirmDelete(r.Context(), mb, req.EmailID)
	writeJSON(w, http.StatusOK, result)
}
