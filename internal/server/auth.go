package server

import (
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/mailpilot/mailpilot/internal/token"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type callbackRequest struct {
	Code string `json:"code"`
}

// handleLogin returns the Google consent URL for the frontend to open
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	writeJSON(w, http.StatusOK, map[string]string{
		"auth_url": s.oauth.AuthCodeURL(state),
	})
}

// handleCallback completes the OAuth flow and redirects back to the
// frontend with a freshly issued session token. Failures redirect to
// the frontend error page instead of rendering JSON.
func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if state := r.URL.Query().Get("state"); state != "" {
		s.logger.Debug().Str("state", state).Msg("OAuth callback state")
	}

	signed, err := s.exchangeAndIssue(r, code)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth callback failed")
		errorURL := s.frontendURL + "/auth/error?message=" + url.QueryEscape(err.Error())
		http.Redirect(w, r, errorURL, http.StatusTemporaryRedirect)
		return
	}

	redirectURL := s.frontendURL + "/auth/callback?token=" + url.QueryEscape(signed)
	http.Redirect(w, r, redirectURL, http.StatusTemporaryRedirect)
}

// handleCallbackPost is the JSON variant of the OAuth callback
func (s *Server) handleCallbackPost(w http.ResponseWriter, r *http.Request) {
	var req callbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	signed, err := s.exchangeAndIssue(r, req.Code)
	if err != nil {
		s.logger.Error().Err(err).Msg("OAuth callback failed")
		writeDetail(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: signed, TokenType: "bearer"})
}

func (s *Server) exchangeAndIssue(r *http.Request, code string) (string, error) {
	if code == "" {
		return "", errInvalidRequest
	}

	tokens, info, err := s.oauth.Exchange(r.Context(), code)
	if err != nil {
		return "", err
	}

	return s.codec.Issue(token.Claims{
		Email:        info.Email,
		Name:         info.Name,
		Picture:      info.Picture,
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	})
}

// handleCurrentUser returns the identity embedded in the session token
func (s *Server) handleCurrentUser(w http.ResponseWriter, _ *http.Request, claims token.Claims) {
	writeJSON(w, http.StatusOK, map[string]string{
		"email":   claims.Email,
		"name":    claims.Name,
		"picture": claims.Picture,
	})
}

// handleLogout best-effort revokes the Google access token. Revocation
// failure never fails the logout.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	if claims.AccessToken != "" {
		if !s.oauth.Revoke(r.Context(), claims.AccessToken) {
			s.logger.Warn().Str("email", claims.Email).Msg("Google token revocation failed")
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// handleRefresh swaps the Google access token for a fresh one and
// re-issues the whole session token; the credential is never mutated
// in place.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request, claims token.Claims) {
	if claims.RefreshToken == "" {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return
	}

	accessToken, err := s.oauth.Refresh(r.Context(), claims.RefreshToken)
	if err != nil {
		s.logger.Error().Err(err).Msg("Token refresh failed")
		writeDetail(w, http.StatusUnauthorized, "Token refresh failed")
		return
	}

	claims.AccessToken = accessToken
	signed, err := s.codec.Issue(claims)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: signed, TokenType: "bearer"})
}
