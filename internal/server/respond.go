package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mailpilot/mailpilot/internal/google"
	"github.com/mailpilot/mailpilot/internal/token"
)

// errInvalidRequest marks a malformed request body or missing parameter
var errInvalidRequest = errors.New("invalid request")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error onto the HTTP taxonomy: 401 for credential
// failures, 404 for missing messages, 400 for malformed requests, and
// 500 for upstream failures and anything unrecognized. The error text
// is surfaced to the caller as-is.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, token.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, google.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errInvalidRequest):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"detail": err.Error()})
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidRequest
	}
	return nil
}
