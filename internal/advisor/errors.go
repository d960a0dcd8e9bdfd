package advisor

import (
	"errors"
	"fmt"
)

var (
	ErrMissingAPIKey  = errors.New("advisor: api key is required")
	ErrMalformedReply = errors.New("malformed reply")
	ErrUpstreamStatus = errors.New("unexpected upstream status")
)

// Error is returned for every failed advisory round trip: transport
// failures, non-success statuses and replies without text.
type Error struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("advisor: %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("advisor: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsAdvisoryError reports whether err came from a failed round trip.
func IsAdvisoryError(err error) bool {
	var ae *Error
	return errors.As(err, &ae)
}
