// Package server is the stateless HTTP surface. Every authenticated
// request rebuilds its gateways from the bearer token's claims; no
// session or message state survives the request.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/mailpilot/mailpilot/internal/ai"
	"github.com/mailpilot/mailpilot/internal/chat"
	"github.com/mailpilot/mailpilot/internal/config"
	"github.com/mailpilot/mailpilot/internal/google"
	"github.com/mailpilot/mailpilot/internal/token"
)

// Mailbox is the mail gateway surface the handlers need
type Mailbox interface {
	ListEmails(ctx context.Context, max int64, query string) ([]google.Email, error)
	Search(ctx context.Context, query string, max int64) ([]google.Email, error)
	GetEmail(ctx context.Context, id string) (*google.Email, error)
	SendReply(ctx context.Context, to, subject, body, threadID string) error
	Trash(ctx context.Context, id string) error
}

// MailboxBuilder constructs a per-request Mailbox from the session's
// Google token pair.
type MailboxBuilder func(ctx context.Context, accessToken, refreshToken string) (Mailbox, error)

// Authenticator is the OAuth surface the handlers need
type Authenticator interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*google.Tokens, *google.UserInfo, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Revoke(ctx context.Context, accessToken string) bool
}

// Assistant is the generative-text surface the handlers need
type Assistant interface {
	Summarize(ctx context.Context, subject, body, sender string) string
	GenerateReply(ctx context.Context, subject, body, sender, extra string) string
	Categorize(ctx context.Context, subject, body string) string
	Digest(ctx context.Context, emails []google.Email) string
	ParseIntent(ctx context.Context, userMessage string) ai.Intent
}

// Server holds the process-wide, read-only collaborators
type Server struct {
	codec       *token.Codec
	oauth       Authenticator
	assistant   Assistant
	mailboxes   MailboxBuilder
	router      *chat.Router
	frontendURL string
	logger      zerolog.Logger
	httpServer  *http.Server
}

// NewServer wires the handlers onto a mux and prepares the HTTP server
func NewServer(
	cfg *config.ServerConfig,
	codec *token.Codec,
	oauth Authenticator,
	assistant Assistant,
	mailboxes MailboxBuilder,
	router *chat.Router,
	logger zerolog.Logger,
) *Server {
	s := &Server{
		codec:       codec,
		oauth:       oauth,
		assistant:   assistant,
		mailboxes:   mailboxes,
		router:      router,
		frontendURL: cfg.FrontendURL,
		logger:      logger.With().Str("component", "http").Logger(),
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	return s
}

// Handler builds the full middleware-wrapped route table
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/auth/login", s.handleLogin)
	mux.HandleFunc("GET /api/auth/callback", s.handleCallback)
	mux.HandleFunc("POST /api/auth/callback", s.handleCallbackPost)
	mux.HandleFunc("GET /api/auth/user", s.authenticated(s.handleCurrentUser))
	mux.HandleFunc("POST /api/auth/logout", s.authenticated(s.handleLogout))
	mux.HandleFunc("POST /api/auth/refresh", s.authenticated(s.handleRefresh))

	mux.HandleFunc("POST /api/chat/message", s.authenticated(s.handleChatMessage))
	mux.HandleFunc("POST /api/chat/confirm-delete", s.authenticated(s.handleConfirmDelete))

	mux.HandleFunc("GET /api/emails/list", s.authenticated(s.handleListEmails))
	mux.HandleFunc("GET /api/emails/{id}", s.authenticated(s.handleGetEmail))
	mux.HandleFunc("POST /api/emails/generate-reply", s.authenticated(s.handleGenerateReply))
	mux.HandleFunc("POST /api/emails/send-reply", s.authenticated(s.handleSendReply))
	mux.HandleFunc("DELETE /api/emails/{id}", s.authenticated(s.handleDeleteEmail))
	mux.HandleFunc("GET /api/emails/search/{query}", s.authenticated(s.handleSearchEmails))
	mux.HandleFunc("POST /api/emails/categorize", s.authenticated(s.handleCategorize))
	mux.HandleFunc("GET /api/emails/digest/daily", s.authenticated(s.handleDailyDigest))

	return s.recovered(s.logged(s.cors(mux)))
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("Starting HTTP server")
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info().Msg("Stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Mailpilot API",
		"version": "1.0.0",
		"status":  "running",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// mailbox builds the per-request Gmail client from verified claims
func (s *Server) mailbox(w http.ResponseWriter, r *http.Request, claims token.Claims) (Mailbox, bool) {
	mb, err := s.mailboxes(r.Context(), claims.AccessToken, claims.RefreshToken)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return mb, true
}
