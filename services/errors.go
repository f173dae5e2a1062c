package services

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEndpoint     = errors.New("invalid endpoint")
	ErrEndpointNotAllowed  = errors.New("endpoint host not allowed")
	ErrInsecureEndpoint    = errors.New("endpoint must use https")
	ErrUpstreamAuth        = errors.New("failed to obtain client credentials token")
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	ErrUpstreamTimeout     = errors.New("upstream timed out")
	ErrUpstreamTooLarge    = errors.New("upstream body too large")
	ErrRateLimited         = errors.New("rate limited")
)

// UpstreamStatusError is returned when the forwarded call answers with a
// non-2xx status.
type UpstreamStatusError struct {
	StatusCode int
}

func (e *UpstreamStatusError) Error() string {
	return fmt.Sprintf("upstream responded with status %d", e.StatusCode)
}
