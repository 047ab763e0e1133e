package connector

import (
	"errors"
	"fmt"
)

var (
	// ErrNoServerConfigured is returned when no base URL is stored
	ErrNoServerConfigured = errors.New("server is not set")
	// ErrUnauthorized is returned on HTTP 401 or an envelope with code 401
	ErrUnauthorized = errors.New("server is not authorized")
)

// APIError is a request the server rejected with a message
type APIError struct {
	Action   string
	Message  string
	Envelope *Envelope
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Action, e.Message)
}

// HTTPError is a non-2xx response other than 401
type HTTPError struct {
	Action string
	Status int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s: unexpected HTTP status %d", e.Action, e.Status)
}

// IsAPIError reports whether err carries a server message and returns it
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
