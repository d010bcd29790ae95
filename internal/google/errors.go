package google

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// Sentinel errors distinguishing transient upstream failures from
// permanent rejections. Callers decide retryability with errors.Is.
var (
	// ErrUpstreamUnavailable marks a transient failure (5xx, timeout,
	// transport error).
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrUpstreamRejected marks a permanent rejection (bad token,
	// malformed request).
	ErrUpstreamRejected = errors.New("upstream rejected request")

	// ErrNotFound is returned when a message id does not exist.
	ErrNotFound = errors.New("not found")
)

// wrapAPIError classifies a Gmail/OAuth call failure into the error
// taxonomy, preserving the underlying message.
func wrapAPIError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w: %v", op, ErrUpstreamUnavailable, err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 404:
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case apiErr.Code >= 400 && apiErr.Code < 500:
			return fmt.Errorf("%s: %w: %v", op, ErrUpstreamRejected, err)
		default:
			return fmt.Errorf("%s: %w: %v", op, ErrUpstreamUnavailable, err)
		}
	}

	return fmt.Errorf("%s: %w: %v", op, ErrUpstreamUnavailable, err)
}
