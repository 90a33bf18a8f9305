package chancache

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

var (
	// ErrStaleChannel is returned for any operation on a channel that the
	// platform has reported as deleted.
	ErrStaleChannel = errors.New("channel has been deleted")

	// ErrUnknownChannel is returned when the channel was never loaded into
	// the cache.
	ErrUnknownChannel = errors.New("unknown channel")
)

// TransportError is a network or HTTP failure talking to the platform.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying failure.
func (e *TransportError) Unwrap() error { return e.Err }

// RateLimitError means the platform refused the call until RetryAfter has
// passed.
type RateLimitError struct {
	Op         string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s: rate limited, retry after %v", e.Op, e.RetryAfter)
}

// MissingPermissionsError lists the flags a principal lacked for an action.
type MissingPermissionsError struct {
	Missing Permissions
}

func (e *MissingPermissionsError) Error() string {
	return fmt.Sprintf("missing permissions: %v", e.Missing)
}

// IsRateLimited reports whether err carries a *RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsTransport reports whether err carries a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsStale reports whether err means the channel no longer exists.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleChannel)
}
