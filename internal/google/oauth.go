package google

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

const revokeURL = "https://oauth2.googleapis.com/revoke"

// Scopes requested from Google. Gmail read/send/modify for mailbox
// operations, userinfo for the identity embedded in the session token.
var scopes = []string{
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/userinfo.email",
	"https://www.googleapis.com/auth/userinfo.profile",
	"openid",
}

// OAuth performs the Google OAuth2 flow: authorization URL generation,
// code exchange, token refresh, and revocation.
type OAuth struct {
	config *oauth2.Config
	http   *http.Client
	logger zerolog.Logger
}

// NewOAuth creates an OAuth service for the given client credentials
func NewOAuth(clientID, clientSecret, redirectURI string, logger zerolog.Logger) *OAuth {
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     googleoauth.Endpoint,
		},
		http:   &http.Client{Timeout: 15 * time.Second},
		logger: logger.With().Str("component", "oauth").Logger(),
	}
}

// AuthCodeURL returns the Google consent page URL for the given state
// nonce. Offline access is requested so a refresh token is issued.
func (o *OAuth) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange trades an authorization code for the Google token pair and
// the authenticated identity. Userinfo failure degrades to an empty
// identity rather than failing the exchange.
func (o *OAuth) Exchange(ctx context.Context, code string) (*Tokens, *UserInfo, error) {
	tok, err := o.config.Exchange(ctx, code)
	if err != nil {
		return nil, nil, wrapAPIError("exchange code", err)
	}

	tokens := &Tokens{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}

	info, err := o.fetchUserInfo(ctx, tok)
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to fetch user info")
		info = &UserInfo{}
	}

	return tokens, info, nil
}

// Refresh obtains a new access token from a refresh token
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (string, error) {
	src := o.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return "", wrapAPIError("refresh token", err)
	}
	return tok.AccessToken, nil
}

// Revoke invalidates an access token at Google. Failures are logged
// and reported as false, never as an error; logout must not fail.
func (o *OAuth) Revoke(ctx context.Context, accessToken string) bool {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		o.logger.Error().Err(err).Msg("Failed to build revoke request")
		return false
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.http.Do(req)
	if err != nil {
		o.logger.Error().Err(err).Msg("Token revocation failed")
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		o.logger.Warn().Int("status", resp.StatusCode).Msg("Token revocation rejected")
		return false
	}
	return true
}

func (o *OAuth) fetchUserInfo(ctx context.Context, tok *oauth2.Token) (*UserInfo, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(oauth2.StaticTokenSource(tok)))
	if err != nil {
		return nil, wrapAPIError("userinfo service", err)
	}
	ui, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("get userinfo", err)
	}
	return &UserInfo{
		Email:   ui.Email,
		Name:    ui.Name,
		Picture: ui.Picture,
	}, nil
}
