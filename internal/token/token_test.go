package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func testCodec() *Codec {
	return NewCodec("test-secret", time.Hour)
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := testCodec()

	claims := Claims{
		Email:        "user@example.com",
		Name:         "Test User",
		Picture:      "https://example.com/p.png",
		AccessToken:  "ya29.access",
		RefreshToken: "1//refresh",
	}

	signed, err := codec.Issue(claims)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	got, err := codec.Verify(signed)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if got != claims {
		t.Errorf("round-trip mismatch: got %+v, want %+v", got, claims)
	}
}

func TestVerifyExpired(t *testing.T) {
	codec := testCodec()

	signed, err := codec.Issue(Claims{Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	codec.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := codec.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	codec := testCodec()

	signed, err := codec.Issue(Claims{Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(signed, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape: %q", signed)
	}
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	if _, err := codec.Verify(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	codec := testCodec()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not-a-jwt", "hello world"},
		{"two-segments", "abc.def"},
	}

	for _, tt := range tests {
		tc := tt
		t.Run(tc.name, func(t *testing.T) {
			if _, err := codec.Verify(tc.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signed, err := testCodec().Issue(Claims{Email: "user@example.com"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other := NewCodec("different-secret", time.Hour)
	if _, err := other.Verify(signed); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}
