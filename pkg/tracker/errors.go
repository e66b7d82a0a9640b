package tracker

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when an identifier resolves to no record of any
	// probed resource type.
	ErrNotFound = errors.New("ticket not found")

	// ErrInvalidConfiguration is returned when a platform config is malformed
	// or incomplete at construction time.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// TransportError wraps a failure reported by a platform transport. The
// underlying SDK error is kept intact and reachable through Unwrap.
type TransportError struct {
	Platform   Platform
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s failed (status %d): %v", e.Platform, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Platform, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// TransportFailure classifies a failed remote call. A 404 becomes an error
// wrapping ErrNotFound; everything else becomes a *TransportError.
func TransportFailure(platform Platform, op string, statusCode int, err error) error {
	if err == nil {
		err = errors.New(http.StatusText(statusCode))
	}
	if statusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s %s: %v", ErrNotFound, platform, op, err)
	}
	return &TransportError{
		Platform:   platform,
		Op:         op,
		StatusCode: statusCode,
		Err:        err,
	}
}

// NotFound builds the error returned once every candidate resource type missed.
func NotFound(platform Platform, id string) error {
	return fmt.Errorf("%w: %s has no record %q", ErrNotFound, platform, id)
}

// IsNotFound reports whether err wraps ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
