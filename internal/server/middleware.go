package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/mailpilot/mailpilot/internal/token"
)

// authedHandler is a handler that requires a verified session
type authedHandler func(w http.ResponseWriter, r *http.Request, claims token.Claims)

// authenticated wraps a handler with bearer-token verification. A
// missing or malformed Authorization header is a 401 before any other
// work happens; verification itself never touches the network.
func (s *Server) authenticated(next authedHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := s.bearerClaims(w, r)
		if !ok {
			return
		}
		next(w, r, claims)
	}
}

// bearerClaims extracts and verifies the bearer token, writing the 401
// itself when verification fails.
func (s *Server) bearerClaims(w http.ResponseWriter, r *http.Request) (token.Claims, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return token.Claims{}, false
	}

	claims, err := s.codec.Verify(strings.TrimPrefix(header, "Bearer "))
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid token")
		return token.Claims{}, false
	}
	return claims, true
}

// cors allows the configured frontend plus localhost dev origins
func (s *Server) cors(next http.Handler) http.Handler {
	allowed := map[string]bool{
		s.frontendURL:           true,
		"http://localhost:3000": true,
		"http://localhost:3001": true,
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowed[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusWriter records the response status for request logging
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// logged emits one structured log line per request
func (s *Server) logged(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("duration", time.Since(start)).
			Msg("Request handled")
	})
}

// recovered turns handler panics into plain 500s
func (s *Server) recovered(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("Handler panicked")
				writeDetail(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
