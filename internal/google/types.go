package google

import "strings"

// Email is the provider-agnostic projection of a Gmail message used
// throughout the router and the HTTP surface.
type Email struct {
	ID          string `json:"id"`
	ThreadID    string `json:"thread_id"`
	SenderName  string `json:"sender_name"`
	SenderEmail string `json:"sender_email"`
	Subject     string `json:"subject"`
	Snippet     string `json:"snippet"`
	Body        string `json:"body"`
	Date        string `json:"date"`
}

// Tokens is the Google access/refresh token pair obtained from the
// OAuth code exchange.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// UserInfo is the authenticated Google identity
type UserInfo struct {
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

// ParseSender splits a From header into display name and address.
// "Name <a@b.c>" yields ("Name", "a@b.c"); a bare address uses its
// local part as the name.
func ParseSender(sender string) (name, addr string) {
	if i := strings.Index(sender, "<"); i >= 0 {
		if j := strings.Index(sender[i:], ">"); j > 0 {
			name = strings.Trim(strings.TrimSpace(sender[:i]), `"`)
			addr = strings.TrimSpace(sender[i+1 : i+j])
			return name, addr
		}
	}
	addr = strings.TrimSpace(sender)
	name = addr
	if i := strings.Index(addr, "@"); i > 0 {
		name = addr[:i]
	}
	return name, addr
}
